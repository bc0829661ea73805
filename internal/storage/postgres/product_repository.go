package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, name, status, initial_quantity, remaining_quantity, auction_batch_count, price_initial, quality, scheduled_for, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var status string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&status,
		&p.InitialQuantity,
		&p.RemainingQuantity,
		&p.AuctionBatchCount,
		&p.PriceInitial,
		&p.Quality,
		&p.ScheduledFor,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.Status = domain.ProductStatus(status)
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, status, initial_quantity, remaining_quantity, auction_batch_count, price_initial, quality, scheduled_for, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		product.ID,
		product.Name,
		product.Status,
		product.InitialQuantity,
		product.RemainingQuantity,
		product.AuctionBatchCount,
		product.PriceInitial,
		product.Quality,
		product.ScheduledFor,
		product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	return r.getProduct(ctx, productID, false)
}

func (r *Repository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	return r.getProduct(ctx, productID, true)
}

func (r *Repository) getProduct(ctx context.Context, productID string, forUpdate bool) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanProduct(r.queryRow(ctx, query, productID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateProductStatus(ctx context.Context, productID string, status domain.ProductStatus, scheduledFor *time.Time) error {
	const stmt = `UPDATE products SET status = $2, scheduled_for = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, status, scheduledFor)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repository) UpdateRemainingQuantity(ctx context.Context, productID string, remaining int) error {
	const stmt = `UPDATE products SET remaining_quantity = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, remaining)
	if err != nil {
		return fmt.Errorf("update remaining quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repository) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE status = 'active' ORDER BY created_at, id`
	return r.listProducts(ctx, query)
}

func (r *Repository) ListDueScheduledProducts(ctx context.Context, now time.Time) ([]domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE status = 'scheduled' AND scheduled_for <= $1 ORDER BY scheduled_for, id`
	return r.listProducts(ctx, query, now)
}

func (r *Repository) listProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
