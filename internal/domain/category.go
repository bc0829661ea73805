package domain

// Category labels products for listing filters. Read-only from this core.
type Category struct {
	ID   string
	Name string
}

// Image is a product photo attached to listing rows. Read-only from this core.
type Image struct {
	ID        string
	ProductID string
	URL       string
	Position  int
}

// ListedItem is an item enriched for listing pages: its parent product with
// categories and images, and the current highest active bid (nil when the
// item has none).
type ListedItem struct {
	Item       Item
	Product    Product
	Categories []Category
	Images     []Image
	HighestBid *Bid
}
