package domain

import "time"

type BidStatus string

const (
	BidStatusActive   BidStatus = "active"
	BidStatusInactive BidStatus = "inactive"
)

// Bid is a user's offer against an item. Bids are never deleted, only
// deactivated; at most one bid per item is active at any time.
type Bid struct {
	ID     string
	ItemID string
	UserID string
	// Amount is in cents.
	Amount    int64
	Status    BidStatus
	CreatedAt time.Time
}
