package app

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// ListingRepository serves the paginator's read-only queries. The queries of
// one page request are not required to be mutually consistent; an item
// expiring between the count and the row fetch is accepted staleness.
type ListingRepository interface {
	CountActiveItems(ctx context.Context, f domain.ListingFilters, now time.Time) (int, error)
	CountRecentlyExpired(ctx context.Context, f domain.ListingFilters, from, to time.Time) (int, error)
	ListActiveItems(ctx context.Context, f domain.ListingFilters, now time.Time, sort domain.ListingSort, offset, limit int) ([]domain.ListedItem, error)
	// ListRecentlyExpired always orders by expiry ascending; inactive rows
	// are filler and ignore the requested sort.
	ListRecentlyExpired(ctx context.Context, f domain.ListingFilters, from, to time.Time, offset, limit int) ([]domain.ListedItem, error)
}

// Paginator builds listing pages that blend currently-active items with a
// fixed quota of recently-closed ones, spread through the page so the
// storefront always shows believable turnover.
type Paginator struct {
	repo             ListingRepository
	clock            clock.Clock
	pick             func(n int) int
	inactivesPerPage int
	recentWindow     time.Duration
}

const (
	defaultInactivesPerPage = 3
	defaultRecentWindow     = 6 * time.Hour
	defaultPageLimit        = 20
	maxPageLimit            = 100
)

func NewPaginator(repo ListingRepository, clk clock.Clock, opts ...PaginatorOption) *Paginator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	p := &Paginator{
		repo:             repo,
		clock:            clk,
		pick:             rng.Intn,
		inactivesPerPage: defaultInactivesPerPage,
		recentWindow:     defaultRecentWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type PaginatorOption func(*Paginator)

// WithIndexPicker replaces the interleave's random index source; pick(n)
// must return a value in [0, n).
func WithIndexPicker(pick func(n int) int) PaginatorOption {
	return func(p *Paginator) {
		if pick != nil {
			p.pick = pick
		}
	}
}

type ListItemsInput struct {
	Filters domain.ListingFilters
	Sort    domain.ListingSort
	Page    int
	Limit   int
}

type ListItemsResult struct {
	Items []domain.ListedItem
	Page  int
	Limit int
	Total int
	Pages int
}

func (p *Paginator) ListItems(ctx context.Context, in ListItemsInput) (ListItemsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	now := p.clock.Now()
	from := now.Add(-p.recentWindow)

	inactivesTotal, err := p.repo.CountRecentlyExpired(ctx, in.Filters, from, now)
	if err != nil {
		return ListItemsResult{}, err
	}
	activesTotal, err := p.repo.CountActiveItems(ctx, in.Filters, now)
	if err != nil {
		return ListItemsResult{}, err
	}

	// Inactives already spent on earlier pages shift the actives offset so
	// no active row is skipped.
	maxPagesWithInactives := inactivesTotal / p.inactivesPerPage
	subtractedSoFar := min(page-1, maxPagesWithInactives) * p.inactivesPerPage
	activesOffset := page*limit - limit - subtractedSoFar
	if activesOffset < 0 {
		// Possible when limit is smaller than the inactive quota.
		activesOffset = 0
	}

	var rows []domain.ListedItem
	switch {
	case activesTotal > activesOffset:
		var inactives []domain.ListedItem
		if page <= maxPagesWithInactives {
			quota := p.inactivesPerPage
			if quota > limit {
				// Tiny limits must not let filler crowd out the actives.
				quota = limit
			}
			inactives, err = p.repo.ListRecentlyExpired(ctx, in.Filters, from, now, (page-1)*p.inactivesPerPage, quota)
			if err != nil {
				return ListItemsResult{}, err
			}
		}
		actives, err := p.repo.ListActiveItems(ctx, in.Filters, now, in.Sort, activesOffset, limit-len(inactives))
		if err != nil {
			return ListItemsResult{}, err
		}
		rows = p.interleave(actives, inactives)

	case page <= maxPagesWithInactives:
		// Actives exhausted; the page is pure filler. The first such page
		// starts past the inactives the active pages consumed, later ones
		// advance a full page each.
		activePages := (activesTotal + limit - 1) / limit
		offset := activePages * p.inactivesPerPage
		if extra := page - activePages - 1; extra > 0 {
			offset += extra * limit
		}
		rows, err = p.repo.ListRecentlyExpired(ctx, in.Filters, from, now, offset, limit)
		if err != nil {
			return ListItemsResult{}, err
		}
	}

	total := activesTotal + inactivesTotal
	return ListItemsResult{
		Items: rows,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// interleave inserts each inactive row at a pseudo-random index in
// [3, len-2] of the actives slice, clamped for short pages, so just-closed
// items spread through the page instead of clustering.
func (p *Paginator) interleave(actives, inactives []domain.ListedItem) []domain.ListedItem {
	out := slices.Clone(actives)
	for _, row := range inactives {
		lo, hi := 3, len(out)-2
		if lo > len(out) {
			lo = len(out)
		}
		if hi < lo {
			hi = lo
		}
		idx := lo
		if span := hi - lo + 1; span > 1 {
			idx = lo + p.pick(span)
		}
		out = slices.Insert(out, idx, row)
	}
	return out
}
