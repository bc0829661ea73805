package domain

import "time"

type ItemStatus string

const (
	ItemStatusActive    ItemStatus = "active"
	ItemStatusClaimed   ItemStatus = "claimed"
	ItemStatusRejected  ItemStatus = "rejected"
	ItemStatusExpired   ItemStatus = "expired"
	ItemStatusCanceled  ItemStatus = "canceled"
	ItemStatusPurchased ItemStatus = "purchased"
)

// Item is one unit of a product's quantity currently or formerly up for bid.
// At most one of the terminal timestamps is set, matching Status.
type Item struct {
	ID        string
	ProductID string
	Status    ItemStatus
	// ExpiresAt is the bidding deadline. A late bid may push it forward.
	ExpiresAt time.Time
	// ClaimedAt and RejectsAt frame the claim-confirmation window for a
	// winning bid.
	ClaimedAt   *time.Time
	RejectsAt   *time.Time
	RejectedAt  *time.Time
	ExpiredAt   *time.Time
	CanceledAt  *time.Time
	PurchasedAt *time.Time
	// WinningUserID records the bidder whose bid won when the item was
	// claimed.
	WinningUserID string
	CreatedAt     time.Time
}

// Open reports whether the item still needs reconciliation attention.
func (i Item) Open() bool {
	return i.Status == ItemStatusActive || i.Status == ItemStatusClaimed
}
