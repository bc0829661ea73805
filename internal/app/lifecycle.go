package app

import (
	"context"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// LifecycleRepository is the persistence surface for operator-triggered
// product transitions.
type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateProduct(ctx context.Context, product domain.Product) error
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	UpdateProductStatus(ctx context.Context, productID string, status domain.ProductStatus, scheduledFor *time.Time) error
	// CancelActiveItems cancels every currently-active item of the product
	// and returns how many rows it touched.
	CancelActiveItems(ctx context.Context, productID string, at time.Time) (int, error)
}

// Lifecycle is the product-level state machine. Products are created and
// mutated only through it.
type Lifecycle struct {
	repo      LifecycleRepository
	publisher *Publisher
	ledger    *Ledger
	clock     clock.Clock
}

func NewLifecycle(repo LifecycleRepository, publisher *Publisher, ledger *Ledger, clk clock.Clock) *Lifecycle {
	return &Lifecycle{
		repo:      repo,
		publisher: publisher,
		ledger:    ledger,
		clock:     clk,
	}
}

type CreateProductInput struct {
	Name              string
	InitialQuantity   int
	AuctionBatchCount int
	PriceInitial      int64
	Quality           int
}

func (l *Lifecycle) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ValidationError{Msg: "name required"}
	}
	if in.InitialQuantity <= 0 {
		return domain.Product{}, domain.ValidationError{Msg: "initial quantity must be positive"}
	}
	if in.AuctionBatchCount <= 0 {
		return domain.Product{}, domain.ValidationError{Msg: "auction batch count must be positive"}
	}
	if in.PriceInitial < 0 {
		return domain.Product{}, domain.ValidationError{Msg: "initial price must not be negative"}
	}

	product := domain.Product{
		ID:                newID(),
		Name:              in.Name,
		Status:            domain.ProductStatusInactive,
		InitialQuantity:   in.InitialQuantity,
		RemainingQuantity: in.InitialQuantity,
		AuctionBatchCount: in.AuctionBatchCount,
		PriceInitial:      in.PriceInitial,
		Quality:           in.Quality,
		CreatedAt:         l.clock.Now(),
	}
	if err := l.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// Schedule parks an inactive product for future activation. The
// reconciliation run activates it once the time arrives.
func (l *Lifecycle) Schedule(ctx context.Context, productID string, at time.Time) (domain.Product, error) {
	if !at.After(l.clock.Now()) {
		return domain.Product{}, domain.ValidationError{Msg: "scheduled time must be in the future"}
	}

	var result domain.Product
	err := l.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := l.repo.GetProductForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if product.Status != domain.ProductStatusInactive && product.Status != domain.ProductStatusScheduled {
			return domain.DomainError{Msg: "only inactive products can be scheduled"}
		}

		scheduledFor := at.UTC()
		if err := l.repo.UpdateProductStatus(txCtx, product.ID, domain.ProductStatusScheduled, &scheduledFor); err != nil {
			return err
		}
		product.Status = domain.ProductStatusScheduled
		product.ScheduledFor = &scheduledFor
		result = product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return result, nil
}

// Activate publishes the first batch and flips the product to active.
func (l *Lifecycle) Activate(ctx context.Context, productID string) (domain.Product, []domain.Item, error) {
	var (
		result domain.Product
		items  []domain.Item
	)
	err := l.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := l.repo.GetProductForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if product.Status == domain.ProductStatusActive {
			return domain.DomainError{Msg: "already active"}
		}

		items, err = l.publisher.PublishNextBatch(txCtx, &product, 0)
		if err != nil {
			return err
		}
		if err := l.repo.UpdateProductStatus(txCtx, product.ID, domain.ProductStatusActive, nil); err != nil {
			return err
		}
		product.Status = domain.ProductStatusActive
		product.ScheduledFor = nil
		result = product
		return nil
	})
	if err != nil {
		return domain.Product{}, nil, err
	}
	return result, items, nil
}

// Deactivate cancels open bidding and returns the product to inactive.
// Requesting inactive on an already-inactive product is allowed only when a
// pending schedule exists, which it cancels.
func (l *Lifecycle) Deactivate(ctx context.Context, productID string) (domain.Product, error) {
	return l.retire(ctx, productID, domain.ProductStatusInactive)
}

// Archive cancels open bidding and archives the product.
func (l *Lifecycle) Archive(ctx context.Context, productID string) (domain.Product, error) {
	return l.retire(ctx, productID, domain.ProductStatusArchived)
}

// MarkSold cancels open bidding, zeroes the remaining quantity, and marks
// the product sold.
func (l *Lifecycle) MarkSold(ctx context.Context, productID string) (domain.Product, error) {
	return l.retire(ctx, productID, domain.ProductStatusSold)
}

func (l *Lifecycle) retire(ctx context.Context, productID string, target domain.ProductStatus) (domain.Product, error) {
	now := l.clock.Now()
	var result domain.Product

	err := l.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := l.repo.GetProductForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if product.Status == target {
			// A pending schedule may be canceled by re-requesting inactive.
			if target != domain.ProductStatusInactive || product.ScheduledFor == nil {
				return domain.DomainError{Msg: "already " + string(product.Status)}
			}
		}

		canceled, err := l.repo.CancelActiveItems(txCtx, product.ID, now)
		if err != nil {
			return err
		}

		refund := canceled
		if room := product.InitialQuantity - product.RemainingQuantity; refund > room {
			refund = room
		}
		if refund > 0 {
			if err := l.ledger.Adjust(txCtx, &product, refund); err != nil {
				return err
			}
		}
		if target == domain.ProductStatusSold && product.RemainingQuantity > 0 {
			if err := l.ledger.Adjust(txCtx, &product, -product.RemainingQuantity); err != nil {
				return err
			}
		}

		if err := l.repo.UpdateProductStatus(txCtx, product.ID, target, nil); err != nil {
			return err
		}
		product.Status = target
		product.ScheduledFor = nil
		result = product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return result, nil
}

// PublishNextBatch releases one more batch of an active product on operator
// demand. overrideSize <= 0 uses the product's default batch count.
func (l *Lifecycle) PublishNextBatch(ctx context.Context, productID string, overrideSize int) ([]domain.Item, error) {
	var items []domain.Item
	err := l.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := l.repo.GetProductForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if product.Status != domain.ProductStatusActive {
			return domain.DomainError{Msg: "product is not active"}
		}
		items, err = l.publisher.PublishNextBatch(txCtx, &product, overrideSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
