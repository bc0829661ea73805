package app

import (
	"context"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// PublisherRepository persists freshly published items.
type PublisherRepository interface {
	CreateItems(ctx context.Context, items []domain.Item) error
}

// Publisher materializes a product's quantity into time-boxed auction items.
type Publisher struct {
	repo    PublisherRepository
	ledger  *Ledger
	clock   clock.Clock
	itemTTL time.Duration
}

const defaultItemTTL = 24 * time.Hour

func NewPublisher(repo PublisherRepository, ledger *Ledger, clk clock.Clock, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		repo:    repo,
		ledger:  ledger,
		clock:   clk,
		itemTTL: defaultItemTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type PublisherOption func(*Publisher)

// WithItemTTL overrides the default bidding window for new items.
func WithItemTTL(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.itemTTL = d
		}
	}
}

// NextBatchSize returns how many items the next batch would contain.
// overrideSize <= 0 means "use the product's default batch count". The size
// is always capped by the remaining quantity.
func (p *Publisher) NextBatchSize(product domain.Product, overrideSize int) int {
	size := product.AuctionBatchCount
	if overrideSize > 0 {
		size = overrideSize
	}
	if size > product.RemainingQuantity {
		size = product.RemainingQuantity
	}
	return size
}

// PublishNextBatch creates the next batch of active items and consumes the
// matching quantity from the ledger. Size is computed and consumed within
// the same call, so repeated invocations can never over-publish as long as
// the caller holds the product's transaction scope.
func (p *Publisher) PublishNextBatch(ctx context.Context, product *domain.Product, overrideSize int) ([]domain.Item, error) {
	if product.RemainingQuantity < 1 {
		return nil, domain.DomainError{Msg: "no remaining quantity to publish"}
	}

	size := p.NextBatchSize(*product, overrideSize)
	now := p.clock.Now()

	items := make([]domain.Item, 0, size)
	for i := 0; i < size; i++ {
		items = append(items, domain.Item{
			ID:        newID(),
			ProductID: product.ID,
			Status:    domain.ItemStatusActive,
			ExpiresAt: now.Add(p.itemTTL),
			CreatedAt: now,
		})
	}

	if err := p.repo.CreateItems(ctx, items); err != nil {
		return nil, err
	}
	if err := p.ledger.Adjust(ctx, product, -size); err != nil {
		return nil, err
	}
	return items, nil
}
