package domain

import "time"

type ProductStatus string

const (
	ProductStatusInactive  ProductStatus = "inactive"
	ProductStatusActive    ProductStatus = "active"
	ProductStatusScheduled ProductStatus = "scheduled"
	ProductStatusArchived  ProductStatus = "archived"
	ProductStatusSold      ProductStatus = "sold"
)

// Product is a listing with a total quantity auctioned off over time in
// small batches of items.
type Product struct {
	ID   string
	Name string
	// Status transitions are owned by the lifecycle service; nothing else
	// writes this field.
	Status ProductStatus
	// InitialQuantity is immutable after creation.
	InitialQuantity int
	// RemainingQuantity is the sole authority for how many items are left
	// to ever publish. Adjusted only through the inventory ledger.
	RemainingQuantity int
	// AuctionBatchCount is the default number of items released per batch.
	AuctionBatchCount int
	// PriceInitial is the opening bid floor, in cents.
	PriceInitial int64
	// Quality is a merchandising score used by listing filters and sorts.
	Quality int
	// ScheduledFor holds a future activation time while Status is scheduled.
	ScheduledFor *time.Time
	CreatedAt    time.Time
}
