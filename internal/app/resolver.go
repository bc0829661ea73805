package app

import (
	"fmt"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// claimWindow is how long the winning bidder has to be charged before a
// claimed item reverts to inventory.
const claimWindow = 24 * time.Hour

// Outcome is the resolver's verdict for a single open item.
type Outcome struct {
	// Item carries the applied transition (status and timestamps). Only
	// meaningful when Transition is true.
	Item       domain.Item
	Transition bool
	// Refund signals the caller to return one unit to the product's
	// remaining quantity.
	Refund bool
	// Republish signals the caller to attempt publishing one replacement
	// item.
	Republish bool
}

// ResolveItem decides an open item's next state from the wall clock and its
// current highest active bid. Pure: no I/O, callers persist the outcome.
func ResolveItem(item domain.Item, highestBid *domain.Bid, now time.Time) (Outcome, error) {
	if item.PurchasedAt != nil || item.RejectedAt != nil {
		return Outcome{}, domain.InvariantViolationError{
			Msg: fmt.Sprintf("item %s is finalized (%s) but was offered as open", item.ID, item.Status),
		}
	}

	if item.RejectsAt != nil {
		if now.After(*item.RejectsAt) {
			// Claim window lapsed without a capture; the unit goes back up.
			at := now
			item.Status = domain.ItemStatusRejected
			item.RejectedAt = &at
			return Outcome{Item: item, Transition: true, Refund: true, Republish: true}, nil
		}
		return Outcome{Item: item}, nil
	}

	if now.After(item.ExpiresAt) {
		at := now
		if highestBid != nil {
			rejectsAt := now.Add(claimWindow)
			item.Status = domain.ItemStatusClaimed
			item.ClaimedAt = &at
			item.RejectsAt = &rejectsAt
			item.WinningUserID = highestBid.UserID
			// No refund: the unit stays spoken for while the winner is
			// charged.
			return Outcome{Item: item, Transition: true}, nil
		}
		item.Status = domain.ItemStatusExpired
		item.ExpiredAt = &at
		return Outcome{Item: item, Transition: true, Refund: true, Republish: true}, nil
	}

	return Outcome{Item: item}, nil
}
