package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/models"
)

type ProductFilter struct {
	Category domain.Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Featured *bool
	Search   string
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", p, p)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *GormRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

// GetProductsByIDs returns the products that still exist, keyed by id.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("slug = ? AND id <> ?", slug, exclude).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error, "product slug "+p.Slug)
}

// UpdateProduct writes only the named fields of p.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product, fields ...string) error {
	res := r.DB.WithContext(ctx).Model(p).Select(fields).Updates(p)
	if res.Error != nil {
		return translate(res.Error, "product slug "+p.Slug)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product", domain.ErrNotFound)
	}
	return nil
}

// DeleteProduct removes the product and any cart lines pointing at it. Order
// items are snapshots and stay untouched.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: product", domain.ErrNotFound)
		}
		return tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error
	})
}

func (r *GormRepo) GetStock(ctx context.Context, id uuid.UUID) (int, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Select("id", "stock").Where("id = ?", id).First(&p).Error; err != nil {
		return 0, translate(err, "product")
	}
	return p.Stock, nil
}

// SearchProducts is the database fallback when the search index is unavailable.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return r.ListProducts(ctx, ProductFilter{Search: q}, offset, limit)
}
