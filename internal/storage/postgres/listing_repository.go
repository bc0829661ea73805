package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// listingFrom joins each candidate item with its product and, laterally,
// its current highest active bid. The effective price everywhere is
// COALESCE(hb.amount, p.price_initial).
const listingFrom = `
FROM product_items i
JOIN products p ON p.id = i.product_id
LEFT JOIN LATERAL (
	SELECT b.id, b.item_id, b.user_id, b.amount, b.status, b.created_at
	FROM bids b
	WHERE b.item_id = i.id AND b.status = 'active'
	ORDER BY b.amount DESC, b.created_at DESC
	LIMIT 1
) hb ON TRUE`

const listingColumns = `
i.id, i.product_id, i.status, i.expires_at, i.claimed_at, i.rejects_at, i.rejected_at,
i.expired_at, i.canceled_at, i.purchased_at, i.winning_user_id, i.created_at,
p.id, p.name, p.status, p.initial_quantity, p.remaining_quantity, p.auction_batch_count,
p.price_initial, p.quality, p.scheduled_for, p.created_at,
hb.id, hb.user_id, hb.amount, hb.created_at`

// listingConds renders the shared filter predicates, binding values through
// args so both candidate sets see identical filtering.
func listingConds(f domain.ListingFilters, args *[]any) []string {
	bind := func(v any) string {
		*args = append(*args, v)
		return fmt.Sprintf("$%d", len(*args))
	}

	var conds []string
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, `EXISTS (
SELECT 1 FROM product_categories pc
WHERE pc.product_id = p.id AND pc.category_id = ANY(`+bind(f.CategoryIDs)+`::uuid[]))`)
	}
	if len(f.ProductIDs) > 0 {
		conds = append(conds, `p.id = ANY(`+bind(f.ProductIDs)+`::uuid[])`)
	}
	if len(f.ItemIDs) > 0 {
		conds = append(conds, `i.id = ANY(`+bind(f.ItemIDs)+`::uuid[])`)
	}
	if f.MinQuality > 0 {
		conds = append(conds, `p.quality >= `+bind(f.MinQuality))
	}
	if f.PriceMin != nil {
		conds = append(conds, `COALESCE(hb.amount, p.price_initial) >= `+bind(*f.PriceMin))
	}
	if f.PriceMax != nil {
		conds = append(conds, `COALESCE(hb.amount, p.price_initial) <= `+bind(*f.PriceMax))
	}
	return conds
}

func listingOrder(sort domain.ListingSort) string {
	switch sort {
	case domain.SortName:
		return `p.name ASC, i.id ASC`
	case domain.SortQuality:
		return `p.quality DESC, i.id ASC`
	case domain.SortLowStock:
		return `p.remaining_quantity ASC, i.id ASC`
	case domain.SortLowPrice:
		return `COALESCE(hb.amount, p.price_initial) ASC, i.id ASC`
	default:
		return `i.expires_at ASC, i.id ASC`
	}
}

func (r *Repository) CountActiveItems(ctx context.Context, f domain.ListingFilters, now time.Time) (int, error) {
	var args []any
	conds := listingConds(f, &args)
	args = append(args, now)
	conds = append(conds, fmt.Sprintf(`i.status = 'active' AND i.expires_at > $%d`, len(args)))

	query := `SELECT COUNT(*)` + listingFrom + `
WHERE ` + strings.Join(conds, "\nAND ")

	var total int
	if err := r.queryRow(ctx, query, args...).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count active items: %w", err)
	}
	return total, nil
}

func (r *Repository) CountRecentlyExpired(ctx context.Context, f domain.ListingFilters, from, to time.Time) (int, error) {
	var args []any
	conds := listingConds(f, &args)
	args = append(args, from, to)
	conds = append(conds, fmt.Sprintf(`i.expires_at > $%d AND i.expires_at < $%d`, len(args)-1, len(args)))

	query := `SELECT COUNT(*)` + listingFrom + `
WHERE ` + strings.Join(conds, "\nAND ")

	var total int
	if err := r.queryRow(ctx, query, args...).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count recently expired: %w", err)
	}
	return total, nil
}

func (r *Repository) ListActiveItems(ctx context.Context, f domain.ListingFilters, now time.Time, sort domain.ListingSort, offset, limit int) ([]domain.ListedItem, error) {
	var args []any
	conds := listingConds(f, &args)
	args = append(args, now)
	conds = append(conds, fmt.Sprintf(`i.status = 'active' AND i.expires_at > $%d`, len(args)))
	args = append(args, offset, limit)

	query := `SELECT` + listingColumns + listingFrom + `
WHERE ` + strings.Join(conds, "\nAND ") + `
ORDER BY ` + listingOrder(sort) + fmt.Sprintf(`
OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	return r.listListedItems(ctx, query, args)
}

func (r *Repository) ListRecentlyExpired(ctx context.Context, f domain.ListingFilters, from, to time.Time, offset, limit int) ([]domain.ListedItem, error) {
	var args []any
	conds := listingConds(f, &args)
	args = append(args, from, to)
	conds = append(conds, fmt.Sprintf(`i.expires_at > $%d AND i.expires_at < $%d`, len(args)-1, len(args)))
	args = append(args, offset, limit)

	// Filler rows always surface in expiry order, whatever the page sort.
	query := `SELECT` + listingColumns + listingFrom + `
WHERE ` + strings.Join(conds, "\nAND ") + `
ORDER BY i.expires_at ASC, i.id ASC` + fmt.Sprintf(`
OFFSET $%d LIMIT $%d`, len(args)-1, len(args))

	return r.listListedItems(ctx, query, args)
}

func (r *Repository) listListedItems(ctx context.Context, query string, args []any) ([]domain.ListedItem, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var listed []domain.ListedItem
	for rows.Next() {
		var (
			li            domain.ListedItem
			itemStatus    string
			productStatus string
			bidID         *string
			bidUserID     *string
			bidAmount     *int64
			bidCreatedAt  *time.Time
		)
		err := rows.Scan(
			&li.Item.ID, &li.Item.ProductID, &itemStatus, &li.Item.ExpiresAt,
			&li.Item.ClaimedAt, &li.Item.RejectsAt, &li.Item.RejectedAt,
			&li.Item.ExpiredAt, &li.Item.CanceledAt, &li.Item.PurchasedAt,
			&li.Item.WinningUserID, &li.Item.CreatedAt,
			&li.Product.ID, &li.Product.Name, &productStatus, &li.Product.InitialQuantity,
			&li.Product.RemainingQuantity, &li.Product.AuctionBatchCount,
			&li.Product.PriceInitial, &li.Product.Quality, &li.Product.ScheduledFor,
			&li.Product.CreatedAt,
			&bidID, &bidUserID, &bidAmount, &bidCreatedAt,
		)
		if err != nil {
			if isInvalidUUID(err) {
				return nil, domain.ErrInvalidID
			}
			return nil, fmt.Errorf("scan listed item: %w", err)
		}
		li.Item.Status = domain.ItemStatus(itemStatus)
		li.Product.Status = domain.ProductStatus(productStatus)
		if bidID != nil {
			li.HighestBid = &domain.Bid{
				ID:        *bidID,
				ItemID:    li.Item.ID,
				UserID:    *bidUserID,
				Amount:    *bidAmount,
				Status:    domain.BidStatusActive,
				CreatedAt: *bidCreatedAt,
			}
		}
		listed = append(listed, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if err := r.attachProductExtras(ctx, listed); err != nil {
		return nil, err
	}
	return listed, nil
}

// attachProductExtras enriches listed rows with their products' categories
// and images in two grouped queries.
func (r *Repository) attachProductExtras(ctx context.Context, listed []domain.ListedItem) error {
	if len(listed) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(listed))
	var productIDs []string
	for _, li := range listed {
		if !seen[li.Product.ID] {
			seen[li.Product.ID] = true
			productIDs = append(productIDs, li.Product.ID)
		}
	}

	categories := make(map[string][]domain.Category)
	rows, err := r.query(ctx, `
SELECT pc.product_id, c.id, c.name
FROM product_categories pc
JOIN categories c ON c.id = pc.category_id
WHERE pc.product_id = ANY($1::uuid[])
ORDER BY c.name`, productIDs)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	for rows.Next() {
		var productID string
		var c domain.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scan category: %w", err)
		}
		categories[productID] = append(categories[productID], c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	images := make(map[string][]domain.Image)
	rows, err = r.query(ctx, `
SELECT id, product_id, url, position
FROM product_images
WHERE product_id = ANY($1::uuid[])
ORDER BY position`, productIDs)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.Position); err != nil {
			rows.Close()
			return fmt.Errorf("scan image: %w", err)
		}
		images[img.ProductID] = append(images[img.ProductID], img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load images: %w", err)
	}

	for i := range listed {
		listed[i].Categories = categories[listed[i].Product.ID]
		listed[i].Images = images[listed[i].Product.ID]
	}
	return nil
}
