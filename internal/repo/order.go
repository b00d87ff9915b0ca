package repo

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/models"
)

// PlaceOrder decrements stock for every item and inserts the order in one
// transaction. Each decrement is conditional on enough stock remaining, so
// concurrent checkouts cannot oversell; the loser gets ErrInsufficientStock
// and nothing is written. When clearCartOf is set that user's cart is emptied
// in the same transaction.
func (r *GormRepo) PlaceOrder(ctx context.Context, o *models.Order, clearCartOf *uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, q := range quantitiesByProduct(o.OrderItems) {
			if err := reserveStock(tx, q.productID, q.qty); err != nil {
				return err
			}
		}
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if clearCartOf != nil {
			return tx.Where("user_id = ?", *clearCartOf).Delete(&models.CartItem{}).Error
		}
		return nil
	})
}

func reserveStock(tx *gorm.DB, productID uuid.UUID, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var p models.Product
	if err := tx.Select("id", "name", "stock").Where("id = ?", productID).First(&p).Error; err != nil {
		return translate(err, "product")
	}
	return fmt.Errorf("%w: %s has %d left, %d requested", domain.ErrInsufficientStock, p.Name, p.Stock, qty)
}

func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, q := range quantitiesByProduct(items) {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", q.productID).
			UpdateColumn("stock", gorm.Expr("stock + ?", q.qty)).Error; err != nil {
			return err
		}
	}
	return nil
}

type productQty struct {
	productID uuid.UUID
	qty       int
}

// quantitiesByProduct sums quantities per product, ordered by product id so
// concurrent transactions lock product rows in the same order.
func quantitiesByProduct(items []models.OrderItem) []productQty {
	var out []productQty
	for _, it := range items {
		i := slices.IndexFunc(out, func(q productQty) bool { return q.productID == it.ProductID })
		if i < 0 {
			out = append(out, productQty{productID: it.ProductID, qty: it.Quantity})
			continue
		}
		out[i].qty += it.Quantity
	}
	slices.SortFunc(out, func(a, b productQty) int { return bytes.Compare(a.productID[:], b.productID[:]) })
	return out
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("OrderItems").Where("id = ?", id).First(&o).Error; err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return r.listOrders(ctx, r.DB.WithContext(ctx).Where("user_id = ?", userID), offset, limit)
}

func (r *GormRepo) ListOrders(ctx context.Context, status domain.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.listOrders(ctx, q, offset, limit)
}

func (r *GormRepo) listOrders(_ context.Context, q *gorm.DB, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Session(&gorm.Session{}).
		Preload("OrderItems").
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// MutateOrder loads the order under a row lock and lets fn change its
// mutable fields. If fn reports restock, the order's quantities return to
// stock in the same transaction. Items and totals are never written.
func (r *GormRepo) MutateOrder(ctx context.Context, id uuid.UUID, fn func(o *models.Order) (restock bool, err error)) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&o).Error; err != nil {
			return translate(err, "order")
		}
		if err := tx.Where("order_id = ?", o.ID).Find(&o.OrderItems).Error; err != nil {
			return err
		}

		restock, err := fn(&o)
		if err != nil {
			return err
		}
		if restock {
			if err := restoreStock(tx, o.OrderItems); err != nil {
				return err
			}
		}

		return tx.Model(&o).
			Select("status", "tracking_number", "is_paid", "paid_at", "is_delivered", "delivered_at",
				"payment_id", "payment_status", "payment_update_time", "payment_email_address", "updated_at").
			Updates(&o).Error
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}
