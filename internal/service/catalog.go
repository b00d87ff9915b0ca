package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/logging"
	"github.com/Skotchmaster/fashion_shop/internal/models"
	"github.com/Skotchmaster/fashion_shop/internal/repo"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

const FeaturedLimit = 8

// ProductIndex is the full-text search backend. *search.Client satisfies it.
type ProductIndex interface {
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events events.Publisher
}

// ListQuery carries the raw catalog filters from the query string.
type ListQuery struct {
	Category string
	MinPrice string
	MaxPrice string
	Featured string
	Search   string
}

func (q ListQuery) filter() (repo.ProductFilter, error) {
	var f repo.ProductFilter

	if c := strings.TrimSpace(q.Category); c != "" && !strings.EqualFold(c, "all") {
		f.Category = domain.Category(c)
		if !f.Category.Valid() {
			return f, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, c)
		}
	}
	for _, p := range []struct {
		raw string
		dst **decimal.Decimal
	}{{q.MinPrice, &f.MinPrice}, {q.MaxPrice, &f.MaxPrice}} {
		if p.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(p.raw)
		if err != nil {
			return f, fmt.Errorf("%w: price filter %q", domain.ErrValidation, p.raw)
		}
		*p.dst = &d
	}
	switch strings.ToLower(q.Featured) {
	case "":
	case "true", "1":
		t := true
		f.Featured = &t
	case "false", "0":
		v := false
		f.Featured = &v
	default:
		return f, fmt.Errorf("%w: featured must be true or false", domain.ErrValidation)
	}
	f.Search = strings.TrimSpace(q.Search)
	return f, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ListQuery, offset, limit int) (int64, []models.Product, error) {
	f, err := q.filter()
	if err != nil {
		return 0, nil, err
	}
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.FeaturedProducts(ctx, FeaturedLimit)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.Repo.GetProductBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

// SearchProducts asks the search index first and falls back to a database
// LIKE scan when the index is missing or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: q is required", domain.ErrValidation)
	}
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price == nil {
		return nil, fmt.Errorf("%w: price is required", domain.ErrValidation)
	}
	p := &models.Product{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Price:        *req.Price,
		Category:     req.Category,
		SizeOptions:  req.SizeOptions,
		Images:       transport.ImagesFromDTO(req.Images),
		IsFeatured:   req.IsFeatured,
		Material:     strings.TrimSpace(req.Material),
		Colors:       req.Colors,
		MetaTitle:    req.MetaTitle,
		MetaKeywords: req.MetaKeywords,
	}
	if len(p.SizeOptions) == 0 {
		p.SizeOptions = append([]domain.Size(nil), domain.DefaultSizeOptions...)
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Rating != nil {
		p.Rating = *req.Rating
	}
	if req.NumReviews != nil {
		p.NumReviews = *req.NumReviews
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.assignSlug(ctx, p); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "product_created", p)
	return p, nil
}

// PatchProduct applies the fields present in req and writes only those
// columns, so a concurrent stock decrement is not overwritten. The slug is
// recomputed only when the name changes.
func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := p.Name
	var cols []string

	if req.Name != nil {
		cols = append(cols, "Name")
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		cols = append(cols, "Description")
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		cols = append(cols, "Price")
		p.Price = *req.Price
	}
	if req.Category != nil {
		cols = append(cols, "Category")
		p.Category = *req.Category
	}
	if req.SizeOptions != nil {
		cols = append(cols, "SizeOptions")
		p.SizeOptions = req.SizeOptions
	}
	if req.Images != nil {
		cols = append(cols, "Images")
		p.Images = transport.ImagesFromDTO(req.Images)
	}
	if req.Stock != nil {
		cols = append(cols, "Stock")
		p.Stock = *req.Stock
	}
	if req.IsFeatured != nil {
		cols = append(cols, "IsFeatured")
		p.IsFeatured = *req.IsFeatured
	}
	if req.Material != nil {
		cols = append(cols, "Material")
		p.Material = strings.TrimSpace(*req.Material)
	}
	if req.Colors != nil {
		cols = append(cols, "Colors")
		p.Colors = req.Colors
	}
	if req.Rating != nil {
		cols = append(cols, "Rating")
		p.Rating = *req.Rating
	}
	if req.NumReviews != nil {
		cols = append(cols, "NumReviews")
		p.NumReviews = *req.NumReviews
	}
	if req.MetaTitle != nil {
		cols = append(cols, "MetaTitle")
		p.MetaTitle = *req.MetaTitle
	}
	if req.MetaKeywords != nil {
		cols = append(cols, "MetaKeywords")
		p.MetaKeywords = *req.MetaKeywords
	}

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if domain.NeedsNewSlug(oldName, p.Name, p.Slug) {
		if err := s.assignSlug(ctx, p); err != nil {
			return nil, err
		}
		cols = append(cols, "Slug")
	}
	if len(cols) == 0 {
		return p, nil
	}

	if err := s.Repo.UpdateProduct(ctx, p, cols...); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, "product_updated", p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
			defer cancel()
			if err := s.Index.Delete(ctx, id); err != nil {
				logging.FromContext(ctx).Warn("search_index_error", "op", "delete", "product_id", id, "error", err)
			}
		}()
	}
	publish(ctx, s.Events, events.TopicProducts, id.String(), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
		"at":         time.Now().UTC(),
	})
	return nil
}

func (s *CatalogService) assignSlug(ctx context.Context, p *models.Product) error {
	slug := domain.Slugify(p.Name)
	if slug == "" {
		return fmt.Errorf("%w: name must contain letters or digits", domain.ErrValidation)
	}
	taken, err := s.Repo.SlugTaken(ctx, slug, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: slug %q is used by another product", domain.ErrConflict, slug)
	}
	p.Slug = slug
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, kind string, p *models.Product) {
	if s.Index != nil {
		snapshot := *p
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
			defer cancel()
			if err := s.Index.Index(ctx, &snapshot); err != nil {
				logging.FromContext(ctx).Warn("search_index_error", "op", "index", "product_id", snapshot.ID, "error", err)
			}
		}()
	}
	publish(ctx, s.Events, events.TopicProducts, p.ID.String(), map[string]any{
		"type":       kind,
		"product_id": p.ID,
		"slug":       p.Slug,
		"price":      p.Price,
		"stock":      p.Stock,
		"at":         time.Now().UTC(),
	})
}

// reindexStock refreshes the search documents of the products in items after
// their stock changed outside the catalog.
func reindexStock(ctx context.Context, idx ProductIndex, r *repo.GormRepo, items []models.OrderItem) {
	if idx == nil || len(items) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		l := logging.FromContext(ctx)
		products, err := r.GetProductsByIDs(ctx, ids)
		if err != nil {
			l.Warn("search_index_error", "op", "reindex_stock", "error", err)
			return
		}
		for _, p := range products {
			if err := idx.Index(ctx, &p); err != nil {
				l.Warn("search_index_error", "op", "reindex_stock", "product_id", p.ID, "error", err)
			}
		}
	}()
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case p.Description == "":
		return fmt.Errorf("%w: description is required", domain.ErrValidation)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0", domain.ErrValidation)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, p.Category)
	case len(p.SizeOptions) == 0:
		return fmt.Errorf("%w: sizeOptions must not be empty", domain.ErrValidation)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: rating must be within 0..5", domain.ErrValidation)
	case p.NumReviews < 0:
		return fmt.Errorf("%w: numReviews must be >= 0", domain.ErrValidation)
	case len([]rune(p.MetaTitle)) > domain.MetaTitleMaxLen:
		return fmt.Errorf("%w: metaTitle exceeds %d characters", domain.ErrValidation, domain.MetaTitleMaxLen)
	}
	if p.Price.Exponent() < -2 && !p.Price.Equal(p.Price.Round(2)) {
		return fmt.Errorf("%w: price has more than two decimals", domain.ErrValidation)
	}
	return domain.ValidateSizes(p.SizeOptions)
}
