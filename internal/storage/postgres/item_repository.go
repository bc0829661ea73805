package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, product_id, status, expires_at, claimed_at, rejects_at, rejected_at, expired_at, canceled_at, purchased_at, winning_user_id, created_at`

func scanItem(row pgx.Row) (domain.Item, error) {
	var i domain.Item
	var status string
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&status,
		&i.ExpiresAt,
		&i.ClaimedAt,
		&i.RejectsAt,
		&i.RejectedAt,
		&i.ExpiredAt,
		&i.CanceledAt,
		&i.PurchasedAt,
		&i.WinningUserID,
		&i.CreatedAt,
	)
	if err != nil {
		return domain.Item{}, err
	}
	i.Status = domain.ItemStatus(status)
	return i, nil
}

// CreateItems inserts a published batch in one round trip.
func (r *Repository) CreateItems(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	const stmt = `
INSERT INTO product_items (id, product_id, status, expires_at, winning_user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(stmt, item.ID, item.ProductID, item.Status, item.ExpiresAt, item.WinningUserID, item.CreatedAt)
	}

	results := r.sendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("create items: %w", err)
		}
	}
	return nil
}

func (r *Repository) GetItemForUpdate(ctx context.Context, itemID string) (domain.Item, error) {
	const query = `SELECT ` + itemColumns + ` FROM product_items WHERE id = $1 FOR UPDATE`

	i, err := scanItem(r.queryRow(ctx, query, itemID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Item{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	return i, nil
}

// UpdateItem persists a resolved transition: status plus every lifecycle
// timestamp and the winning user.
func (r *Repository) UpdateItem(ctx context.Context, item domain.Item) error {
	const stmt = `
UPDATE product_items
SET status = $2,
    expires_at = $3,
    claimed_at = $4,
    rejects_at = $5,
    rejected_at = $6,
    expired_at = $7,
    canceled_at = $8,
    purchased_at = $9,
    winning_user_id = $10
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		item.ID,
		item.Status,
		item.ExpiresAt,
		item.ClaimedAt,
		item.RejectsAt,
		item.RejectedAt,
		item.ExpiredAt,
		item.CanceledAt,
		item.PurchasedAt,
		item.WinningUserID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *Repository) UpdateItemExpiry(ctx context.Context, itemID string, expiresAt time.Time) error {
	const stmt = `UPDATE product_items SET expires_at = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, itemID, expiresAt)
	if err != nil {
		return fmt.Errorf("update item expiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListOpenItems returns the product's items that still need reconciliation
// attention, oldest deadline first.
func (r *Repository) ListOpenItems(ctx context.Context, productID string) ([]domain.Item, error) {
	const query = `
SELECT ` + itemColumns + `
FROM product_items
WHERE product_id = $1 AND status IN ('active', 'claimed')
ORDER BY expires_at, id`

	rows, err := r.query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list open items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open items: %w", err)
	}
	return items, nil
}

// CancelActiveItems cancels every active item of the product and reports
// how many it touched.
func (r *Repository) CancelActiveItems(ctx context.Context, productID string, at time.Time) (int, error) {
	const stmt = `
UPDATE product_items
SET status = 'canceled', canceled_at = $2
WHERE product_id = $1 AND status = 'active'`

	tag, err := r.exec(ctx, stmt, productID, at)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("cancel active items: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
