package app

import (
	"context"
	"fmt"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// LedgerRepository persists remaining-quantity changes.
type LedgerRepository interface {
	UpdateRemainingQuantity(ctx context.Context, productID string, remaining int) error
}

// Ledger owns remaining-quantity bookkeeping for products. Every quantity
// change in the engine goes through Adjust; nothing mutates the field
// directly.
type Ledger struct {
	repo LedgerRepository
}

func NewLedger(repo LedgerRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Adjust applies remainingQuantity += delta and persists the result. The
// updated quantity is written back to product so callers inside the same
// transaction observe it.
func (l *Ledger) Adjust(ctx context.Context, product *domain.Product, delta int) error {
	next := product.RemainingQuantity + delta
	if next < 0 {
		return domain.InvariantViolationError{
			Msg: fmt.Sprintf("product %s remaining quantity would drop to %d", product.ID, next),
		}
	}
	if next > product.InitialQuantity {
		return domain.InvariantViolationError{
			Msg: fmt.Sprintf("product %s remaining quantity %d would exceed initial %d", product.ID, next, product.InitialQuantity),
		}
	}

	if err := l.repo.UpdateRemainingQuantity(ctx, product.ID, next); err != nil {
		return err
	}
	product.RemainingQuantity = next
	return nil
}
