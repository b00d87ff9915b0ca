package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/fashion_shop/internal/db"
	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func seedProduct(t *testing.T, r *GormRepo, name string, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    domain.CategoryCasual,
		SizeOptions: domain.DefaultSizeOptions,
		Stock:       stock,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func orderFor(userID uuid.UUID, items ...models.OrderItem) *models.Order {
	return &models.Order{
		UserID:        userID,
		OrderItems:    items,
		PaymentMethod: "card",
		ItemsPrice:    decimal.Zero,
		ShippingPrice: decimal.Zero,
		TaxPrice:      decimal.Zero,
		TotalPrice:    decimal.Zero,
		Status:        domain.StatusPending,
	}
}

func TestCreateProduct_DuplicateSlugIsConflict(t *testing.T) {
	r := newTestRepo(t)
	seedProduct(t, r, "Elegant Kurta", "10", 1)

	dup := &models.Product{Name: "elegant kurta!", Slug: "elegant-kurta", Price: decimal.NewFromInt(1), Category: domain.CategoryCasual}
	err := r.CreateProduct(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetProduct_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.GetProductBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProducts_Filters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	cheap := seedProduct(t, r, "Cotton Tee", "15", 5)
	mid := seedProduct(t, r, "Linen Shirt", "45.50", 5)
	seedProduct(t, r, "Silk Saree", "120", 5)

	mid.IsFeatured = true
	mid.Category = domain.CategorySummer
	require.NoError(t, r.UpdateProduct(ctx, mid, "IsFeatured", "Category"))

	minP := decimal.NewFromInt(20)
	maxP := decimal.NewFromInt(100)
	total, items, err := r.ListProducts(ctx, ProductFilter{MinPrice: &minP, MaxPrice: &maxP}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, mid.ID, items[0].ID)

	total, _, err = r.ListProducts(ctx, ProductFilter{Category: domain.CategorySummer}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	featured := true
	_, items, err = r.ListProducts(ctx, ProductFilter{Featured: &featured}, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mid.ID, items[0].ID)

	_, items, err = r.ListProducts(ctx, ProductFilter{Search: "COTTON"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cheap.ID, items[0].ID)

	total, items, err = r.ListProducts(ctx, ProductFilter{}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	_, items, err = r.ListProducts(ctx, ProductFilter{Search: "100%"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSlugTaken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Wool Coat", "99", 1)

	taken, err := r.SlugTaken(ctx, "wool-coat", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.SlugTaken(ctx, "wool-coat", p.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestPlaceOrder_DecrementsStockAndClearsCart(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Linen Kurta", "89", 50)
	user := uuid.New()

	require.NoError(t, r.ReplaceCart(ctx, user, []models.CartItem{{ProductID: p.ID, Size: domain.SizeM, Quantity: 2}}))

	o := orderFor(user,
		models.OrderItem{ProductID: p.ID, Name: p.Name, Size: domain.SizeM, Quantity: 2, Price: p.Price},
		models.OrderItem{ProductID: p.ID, Name: p.Name, Size: domain.SizeL, Quantity: 3, Price: p.Price},
	)
	require.NoError(t, r.PlaceOrder(ctx, o, &user))

	stock, err := r.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, stock)

	items, err := r.GetCartItems(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, items)

	got, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.OrderItems, 2)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedProduct(t, r, "Denim Jacket", "70", 5)
	b := seedProduct(t, r, "Bridal Lehenga", "900", 1)
	user := uuid.New()

	o := orderFor(user,
		models.OrderItem{ProductID: a.ID, Name: a.Name, Size: domain.SizeM, Quantity: 2, Price: a.Price},
		models.OrderItem{ProductID: b.ID, Name: b.Name, Size: domain.SizeM, Quantity: 2, Price: b.Price},
	)
	err := r.PlaceOrder(ctx, o, nil)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	stock, err := r.GetStock(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	total, _, err := r.ListOrders(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestQuantitiesByProduct_SortedAndMerged(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	got := quantitiesByProduct([]models.OrderItem{
		{ProductID: c, Quantity: 1},
		{ProductID: a, Quantity: 2},
		{ProductID: c, Quantity: 4},
		{ProductID: b, Quantity: 3},
	})
	assert.Equal(t, []productQty{{a, 2}, {b, 3}, {c, 5}}, got)
}

func TestUpdateProduct_LeavesUnnamedColumns(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Silk Dupatta", "40", 10)

	stale, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	o := orderFor(uuid.New(), models.OrderItem{ProductID: p.ID, Name: p.Name, Size: domain.SizeM, Quantity: 3, Price: p.Price})
	require.NoError(t, r.PlaceOrder(ctx, o, nil))

	stale.Price = decimal.NewFromInt(35)
	require.NoError(t, r.UpdateProduct(ctx, stale, "Price"))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.True(t, decimal.NewFromInt(35).Equal(got.Price))

	missing := &models.Product{ID: uuid.New(), Name: "Ghost"}
	assert.ErrorIs(t, r.UpdateProduct(ctx, missing, "Name"), domain.ErrNotFound)
}

func TestPlaceOrder_MissingProduct(t *testing.T) {
	r := newTestRepo(t)

	o := orderFor(uuid.New(), models.OrderItem{ProductID: uuid.New(), Name: "Ghost", Size: domain.SizeM, Quantity: 1, Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, r.PlaceOrder(context.Background(), o, nil), domain.ErrNotFound)
}

func TestMutateOrder_RestockAndFrozenTotals(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Summer Dress", "30", 10)
	user := uuid.New()

	o := orderFor(user, models.OrderItem{ProductID: p.ID, Name: p.Name, Size: domain.SizeS, Quantity: 4, Price: p.Price})
	o.ItemsPrice = decimal.NewFromInt(120)
	require.NoError(t, r.PlaceOrder(ctx, o, nil))

	got, err := r.MutateOrder(ctx, o.ID, func(o *models.Order) (bool, error) {
		o.Status = domain.StatusCancelled
		o.ItemsPrice = decimal.NewFromInt(1)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	stock, err := r.GetStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stock)

	reread, err := r.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, reread.Status)
	assert.Equal(t, "120.00", reread.ItemsPrice.StringFixed(2))
}

func TestListOrdersByUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Scarf", "12", 10)
	alice, bob := uuid.New(), uuid.New()

	for _, u := range []uuid.UUID{alice, alice, bob} {
		o := orderFor(u, models.OrderItem{ProductID: p.ID, Name: p.Name, Size: domain.SizeM, Quantity: 1, Price: p.Price})
		require.NoError(t, r.PlaceOrder(ctx, o, nil))
	}

	total, orders, err := r.ListOrdersByUser(ctx, alice, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].OrderItems, 1)

	total, _, err = r.ListOrders(ctx, domain.StatusPending, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestReplaceCart(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	user := uuid.New()
	pid := uuid.New()

	require.NoError(t, r.ReplaceCart(ctx, user, []models.CartItem{
		{ProductID: pid, Size: domain.SizeM, Quantity: 1},
		{ProductID: pid, Size: domain.SizeL, Quantity: 2},
	}))
	items, err := r.GetCartItems(ctx, user)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.SizeM, items[0].Size)
	assert.Equal(t, domain.SizeL, items[1].Size)

	require.NoError(t, r.ReplaceCart(ctx, user, []models.CartItem{items[1], items[0]}))
	items, err = r.GetCartItems(ctx, user)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.SizeL, items[0].Size)

	require.NoError(t, r.ReplaceCart(ctx, user, items[:1]))
	items, err = r.GetCartItems(ctx, user)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, r.ClearCart(ctx, user))
	items, err = r.GetCartItems(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteProduct_RemovesCartLines(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Beanie", "9", 3)
	user := uuid.New()
	require.NoError(t, r.ReplaceCart(ctx, user, []models.CartItem{{ProductID: p.ID, Size: domain.SizeM, Quantity: 1}}))

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), domain.ErrNotFound)

	items, err := r.GetCartItems(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubscriptions(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	s := &models.Subscription{Email: "a@example.com", IsActive: true, Source: domain.SourceFooter}
	require.NoError(t, r.CreateSubscription(ctx, s))
	assert.ErrorIs(t, r.CreateSubscription(ctx, &models.Subscription{Email: "a@example.com", IsActive: true}), domain.ErrConflict)

	s.IsActive = false
	require.NoError(t, r.SaveSubscription(ctx, s))

	got, err := r.GetSubscriptionByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	total, _, err := r.ListActiveSubscriptions(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRotateRefreshToken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	user := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	first := &models.RefreshToken{Token: "h1", UserID: user, JTI: "j1", ExpiresAt: exp}
	require.NoError(t, r.AddRefreshToken(ctx, first))

	second := &models.RefreshToken{Token: "h2", UserID: user, JTI: "j2", ExpiresAt: exp}
	require.NoError(t, r.RotateRefreshToken(ctx, "j1", second))

	third := &models.RefreshToken{Token: "h3", UserID: user, JTI: "j3", ExpiresAt: exp}
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "j1", third), domain.ErrUnauthorized)
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "missing", third), domain.ErrUnauthorized)

	require.NoError(t, r.RevokeRefreshToken(ctx, "h2"))
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "j2", third), domain.ErrUnauthorized)
}
