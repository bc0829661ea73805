package app

import (
	"context"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// BiddingRepository is the persistence surface the bidding engine needs.
// The item row must be locked for the duration of the transaction so
// concurrent bidders serialize behind GetItemForUpdate.
type BiddingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForUpdate(ctx context.Context, itemID string) (domain.Item, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	HighestActiveBid(ctx context.Context, itemID string) (*domain.Bid, error)
	DeactivateBids(ctx context.Context, itemID string) error
	CreateBid(ctx context.Context, bid domain.Bid) error
	UpdateItemExpiry(ctx context.Context, itemID string, expiresAt time.Time) error
}

// BiddingEngine validates and records bids against active items.
type BiddingEngine struct {
	repo  BiddingRepository
	clock clock.Clock
}

// antiSnipeWindow is both the trigger and the new runway: a bid landing
// closer than this to the deadline pushes the deadline out to now+window.
const antiSnipeWindow = 5 * time.Minute

func NewBiddingEngine(repo BiddingRepository, clk clock.Clock) *BiddingEngine {
	return &BiddingEngine{
		repo:  repo,
		clock: clk,
	}
}

type PlaceBidInput struct {
	UserID string
	ItemID string
	Amount int64
}

type PlaceBidResult struct {
	Item    domain.Item
	Bid     domain.Bid
	Product domain.Product
}

func (e *BiddingEngine) PlaceBid(ctx context.Context, in PlaceBidInput) (PlaceBidResult, error) {
	if in.UserID == "" {
		return PlaceBidResult{}, domain.ValidationError{Msg: "user id required"}
	}
	if in.ItemID == "" {
		return PlaceBidResult{}, domain.ErrItemNotFound
	}

	now := e.clock.Now()
	var result PlaceBidResult

	err := e.repo.WithTx(ctx, func(txCtx context.Context) error {
		item, err := e.repo.GetItemForUpdate(txCtx, in.ItemID)
		if err != nil {
			return err
		}
		if item.Status != domain.ItemStatusActive {
			return domain.DomainError{Msg: "item is not open for bidding"}
		}
		if !item.ExpiresAt.After(now) {
			return domain.DomainError{Msg: "bidding deadline has passed"}
		}

		product, err := e.repo.GetProduct(txCtx, item.ProductID)
		if err != nil {
			return err
		}

		minPrice := product.PriceInitial
		if highest, err := e.repo.HighestActiveBid(txCtx, item.ID); err != nil {
			return err
		} else if highest != nil {
			minPrice = highest.Amount + 1
		}
		if in.Amount < minPrice {
			return domain.ValidationError{Msg: "amount below minimum"}
		}

		// The losing side of a concurrent race re-enters here after the
		// winner commits and fails the minimum-price check above, so the
		// deactivate-then-create pair below never overwrites silently.
		if err := e.repo.DeactivateBids(txCtx, item.ID); err != nil {
			return err
		}

		bid := domain.Bid{
			ID:        newID(),
			ItemID:    item.ID,
			UserID:    in.UserID,
			Amount:    in.Amount,
			Status:    domain.BidStatusActive,
			CreatedAt: now,
		}
		if err := e.repo.CreateBid(txCtx, bid); err != nil {
			return err
		}

		if item.ExpiresAt.Sub(now) < antiSnipeWindow {
			item.ExpiresAt = now.Add(antiSnipeWindow)
			if err := e.repo.UpdateItemExpiry(txCtx, item.ID, item.ExpiresAt); err != nil {
				return err
			}
		}

		result = PlaceBidResult{Item: item, Bid: bid, Product: product}
		return nil
	})
	if err != nil {
		return PlaceBidResult{}, err
	}
	return result, nil
}

// HighestActiveBid returns the single active bid with the greatest amount.
// Ties break on recency; with the single-active-bid invariant holding there
// is never a tie to break.
func (e *BiddingEngine) HighestActiveBid(ctx context.Context, itemID string) (*domain.Bid, error) {
	return e.repo.HighestActiveBid(ctx, itemID)
}
