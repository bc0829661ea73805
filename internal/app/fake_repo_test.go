package app

import (
	"context"
	"sort"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// fakeRepo is an in-memory stand-in for the postgres repository. It backs
// every service interface in this package so tests wire services exactly
// the way main does.
type fakeRepo struct {
	products     map[string]*domain.Product
	productOrder []string
	items        map[string]*domain.Item
	bids         map[string]*domain.Bid
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[string]*domain.Product),
		items:    make(map[string]*domain.Item),
		bids:     make(map[string]*domain.Bid),
	}
}

func (f *fakeRepo) addProduct(p domain.Product) {
	cp := p
	f.products[p.ID] = &cp
	f.productOrder = append(f.productOrder, p.ID)
}

func (f *fakeRepo) addItem(i domain.Item) {
	cp := i
	f.items[i.ID] = &cp
}

func (f *fakeRepo) addBid(b domain.Bid) {
	cp := b
	f.bids[b.ID] = &cp
}

func (f *fakeRepo) itemCount(productID string, status domain.ItemStatus) int {
	n := 0
	for _, item := range f.items {
		if item.ProductID == productID && item.Status == status {
			n++
		}
	}
	return n
}

func (f *fakeRepo) activeBidCount(itemID string) int {
	n := 0
	for _, bid := range f.bids {
		if bid.ItemID == itemID && bid.Status == domain.BidStatusActive {
			n++
		}
	}
	return n
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) CreateProduct(_ context.Context, product domain.Product) error {
	f.addProduct(product)
	return nil
}

func (f *fakeRepo) GetProduct(_ context.Context, productID string) (domain.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return *p, nil
}

func (f *fakeRepo) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	return f.GetProduct(ctx, productID)
}

func (f *fakeRepo) UpdateProductStatus(_ context.Context, productID string, status domain.ProductStatus, scheduledFor *time.Time) error {
	p, ok := f.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Status = status
	p.ScheduledFor = scheduledFor
	return nil
}

func (f *fakeRepo) UpdateRemainingQuantity(_ context.Context, productID string, remaining int) error {
	p, ok := f.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.RemainingQuantity = remaining
	return nil
}

func (f *fakeRepo) ListActiveProducts(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range f.productOrder {
		if p := f.products[id]; p.Status == domain.ProductStatusActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDueScheduledProducts(_ context.Context, now time.Time) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range f.productOrder {
		p := f.products[id]
		if p.Status == domain.ProductStatusScheduled && p.ScheduledFor != nil && !p.ScheduledFor.After(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateItems(_ context.Context, items []domain.Item) error {
	for _, item := range items {
		f.addItem(item)
	}
	return nil
}

func (f *fakeRepo) GetItemForUpdate(_ context.Context, itemID string) (domain.Item, error) {
	i, ok := f.items[itemID]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return *i, nil
}

func (f *fakeRepo) UpdateItem(_ context.Context, item domain.Item) error {
	if _, ok := f.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	cp := item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateItemExpiry(_ context.Context, itemID string, expiresAt time.Time) error {
	i, ok := f.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	i.ExpiresAt = expiresAt
	return nil
}

func (f *fakeRepo) ListOpenItems(_ context.Context, productID string) ([]domain.Item, error) {
	var out []domain.Item
	for _, item := range f.items {
		if item.ProductID == productID && item.Open() {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].ExpiresAt.Equal(out[b].ExpiresAt) {
			return out[a].ExpiresAt.Before(out[b].ExpiresAt)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (f *fakeRepo) CancelActiveItems(_ context.Context, productID string, at time.Time) (int, error) {
	n := 0
	for _, item := range f.items {
		if item.ProductID == productID && item.Status == domain.ItemStatusActive {
			canceledAt := at
			item.Status = domain.ItemStatusCanceled
			item.CanceledAt = &canceledAt
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) HighestActiveBid(_ context.Context, itemID string) (*domain.Bid, error) {
	var best *domain.Bid
	for _, bid := range f.bids {
		if bid.ItemID != itemID || bid.Status != domain.BidStatusActive {
			continue
		}
		if best == nil || bid.Amount > best.Amount ||
			(bid.Amount == best.Amount && bid.CreatedAt.After(best.CreatedAt)) {
			best = bid
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeRepo) DeactivateBids(_ context.Context, itemID string) error {
	for _, bid := range f.bids {
		if bid.ItemID == itemID && bid.Status == domain.BidStatusActive {
			bid.Status = domain.BidStatusInactive
		}
	}
	return nil
}

func (f *fakeRepo) CreateBid(_ context.Context, bid domain.Bid) error {
	f.addBid(bid)
	return nil
}
