package postgres

import (
	"context"
	"fmt"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
)

// HighestActiveBid returns the item's single active bid with the greatest
// amount, or nil when the item has none. Recency breaks ties.
func (r *Repository) HighestActiveBid(ctx context.Context, itemID string) (*domain.Bid, error) {
	const query = `
SELECT id, item_id, user_id, amount, status, created_at
FROM bids
WHERE item_id = $1 AND status = 'active'
ORDER BY amount DESC, created_at DESC
LIMIT 1`

	var b domain.Bid
	var status string
	err := r.queryRow(ctx, query, itemID).
		Scan(&b.ID, &b.ItemID, &b.UserID, &b.Amount, &status, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("highest active bid: %w", err)
	}
	b.Status = domain.BidStatus(status)
	return &b, nil
}

// DeactivateBids retires every active bid on the item. Runs in the same
// transaction as the follow-up CreateBid to hold the single-active-bid
// invariant.
func (r *Repository) DeactivateBids(ctx context.Context, itemID string) error {
	const stmt = `UPDATE bids SET status = 'inactive' WHERE item_id = $1 AND status = 'active'`

	if _, err := r.exec(ctx, stmt, itemID); err != nil {
		return fmt.Errorf("deactivate bids: %w", err)
	}
	return nil
}

func (r *Repository) CreateBid(ctx context.Context, bid domain.Bid) error {
	const stmt = `
INSERT INTO bids (id, item_id, user_id, amount, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, bid.ID, bid.ItemID, bid.UserID, bid.Amount, bid.Status, bid.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// The partial unique index on active bids caught a concurrent
			// writer that slipped past the row lock.
			return domain.DomainError{Msg: "another bid is already active"}
		}
		return fmt.Errorf("create bid: %w", err)
	}
	return nil
}
