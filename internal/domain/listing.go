package domain

// ListingSort names the supported listing sort keys. Unknown keys fall back
// to SortExpiring.
type ListingSort string

const (
	SortExpiring ListingSort = "expiring"
	SortName     ListingSort = "name"
	SortQuality  ListingSort = "quality"
	SortLowStock ListingSort = "lowStock"
	SortLowPrice ListingSort = "lowPrice"
)

func ParseListingSort(s string) ListingSort {
	switch ListingSort(s) {
	case SortName, SortQuality, SortLowStock, SortLowPrice:
		return ListingSort(s)
	default:
		return SortExpiring
	}
}

// ListingFilters narrows both listing candidate sets. The effective price is
// the highest active bid amount, falling back to the product's initial price.
type ListingFilters struct {
	CategoryIDs []string
	ProductIDs  []string
	ItemIDs     []string
	// MinQuality is a floor; zero means no floor.
	MinQuality int
	// PriceMin and PriceMax bound the effective price in cents; nil means
	// unbounded.
	PriceMin *int64
	PriceMax *int64
}
