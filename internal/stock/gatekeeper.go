package stock

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
)

type Reader interface {
	GetStock(ctx context.Context, productID uuid.UUID) (int, error)
}

// Gatekeeper is a read-then-decide check used on cart mutations. It does not
// reserve anything; order placement decrements stock atomically in the repo.
type Gatekeeper struct {
	Products Reader
}

func (g *Gatekeeper) CanReserve(ctx context.Context, productID uuid.UUID, requested int) error {
	if requested < 1 {
		return fmt.Errorf("%w: quantity must be > 0", domain.ErrValidation)
	}
	available, err := g.Products.GetStock(ctx, productID)
	if err != nil {
		return err
	}
	if requested > available {
		return fmt.Errorf("%w: requested %d, available %d", domain.ErrInsufficientStock, requested, available)
	}
	return nil
}
