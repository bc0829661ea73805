package app

import (
	"context"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// PurchaseRepository is the persistence surface for recording captures.
type PurchaseRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForUpdate(ctx context.Context, itemID string) (domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
}

// PurchaseService marks claimed items purchased once the external payment
// capture reports success. Capture itself happens outside this core.
type PurchaseService struct {
	repo  PurchaseRepository
	clock clock.Clock
}

func NewPurchaseService(repo PurchaseRepository, clk clock.Clock) *PurchaseService {
	return &PurchaseService{
		repo:  repo,
		clock: clk,
	}
}

// ConfirmPurchase transitions a claimed item to purchased. The claim window
// must still be open; a lapsed window belongs to the reconciler, which will
// reject the item and return its unit to inventory.
func (s *PurchaseService) ConfirmPurchase(ctx context.Context, itemID string) (domain.Item, error) {
	now := s.clock.Now()
	var result domain.Item

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.repo.GetItemForUpdate(txCtx, itemID)
		if err != nil {
			return err
		}
		if item.Status != domain.ItemStatusClaimed {
			return domain.DomainError{Msg: "item is not claimed"}
		}
		if item.RejectsAt != nil && now.After(*item.RejectsAt) {
			return domain.DomainError{Msg: "claim window has lapsed"}
		}

		at := now
		item.Status = domain.ItemStatusPurchased
		item.PurchasedAt = &at
		if err := s.repo.UpdateItem(txCtx, item); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return result, nil
}
