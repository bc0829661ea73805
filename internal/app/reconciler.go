package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

// ReconcilerRepository is the persistence surface for the reconciliation run.
type ReconcilerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	ListDueScheduledProducts(ctx context.Context, now time.Time) ([]domain.Product, error)
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	ListOpenItems(ctx context.Context, productID string) ([]domain.Item, error)
	HighestActiveBid(ctx context.Context, itemID string) (*domain.Bid, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	UpdateProductStatus(ctx context.Context, productID string, status domain.ProductStatus, scheduledFor *time.Time) error
}

// Reconciler advances item and product state based on elapsed deadlines. It
// runs on a fixed cadence and is the only component that detects wall-clock
// expiry.
type Reconciler struct {
	repo      ReconcilerRepository
	publisher *Publisher
	ledger    *Ledger
	lifecycle *Lifecycle
	clock     clock.Clock
	logger    *log.Logger
}

func NewReconciler(repo ReconcilerRepository, publisher *Publisher, ledger *Ledger, lifecycle *Lifecycle, clk clock.Clock, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{
		repo:      repo,
		publisher: publisher,
		ledger:    ledger,
		lifecycle: lifecycle,
		clock:     clk,
		logger:    logger,
	}
}

// ItemTransition records one item's state change during a run.
type ItemTransition struct {
	ItemID string            `json:"item_id"`
	From   domain.ItemStatus `json:"from"`
	To     domain.ItemStatus `json:"to"`
	Note   string            `json:"note,omitempty"`
}

// ProductReport summarizes one product's pass. Observability only, never
// persisted as domain state.
type ProductReport struct {
	ProductID string           `json:"product_id"`
	Items     []ItemTransition `json:"items,omitempty"`
	Status    string           `json:"status"`
}

type RunReport struct {
	StartedAt time.Time       `json:"started_at"`
	Products  []ProductReport `json:"products"`
}

// Run executes one reconciliation pass. A single product's failure is logged
// and isolated; it never aborts the rest of the run.
func (r *Reconciler) Run(ctx context.Context) (RunReport, error) {
	now := r.clock.Now()
	report := RunReport{StartedAt: now}

	due, err := r.repo.ListDueScheduledProducts(ctx, now)
	if err != nil {
		return report, err
	}
	for _, product := range due {
		if _, _, err := r.lifecycle.Activate(ctx, product.ID); err != nil {
			r.logger.Printf("WARN: reconcile activate product=%s: %v", product.ID, err)
			report.Products = append(report.Products, ProductReport{ProductID: product.ID, Status: "error"})
			continue
		}
		report.Products = append(report.Products, ProductReport{ProductID: product.ID, Status: "activated"})
	}

	products, err := r.repo.ListActiveProducts(ctx)
	if err != nil {
		return report, err
	}
	for _, product := range products {
		pr, err := r.reconcileProduct(ctx, product.ID)
		if err != nil {
			r.logger.Printf("WARN: reconcile product=%s: %v", product.ID, err)
			pr = ProductReport{ProductID: product.ID, Status: "error"}
		}
		report.Products = append(report.Products, pr)
	}
	return report, nil
}

func (r *Reconciler) reconcileProduct(ctx context.Context, productID string) (ProductReport, error) {
	report := ProductReport{ProductID: productID}

	err := r.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := r.repo.GetProductForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		if product.Status != domain.ProductStatusActive {
			// Raced with an operator transition between listing and locking.
			report.Status = "skipped"
			return nil
		}

		items, err := r.repo.ListOpenItems(txCtx, product.ID)
		if err != nil {
			return err
		}
		now := r.clock.Now()

		if len(items) == 0 {
			if product.RemainingQuantity > 0 {
				if _, err := r.publisher.PublishNextBatch(txCtx, &product, 0); err != nil {
					return err
				}
				report.Status = "next-batch"
				return nil
			}
			if err := r.repo.UpdateProductStatus(txCtx, product.ID, domain.ProductStatusSold, nil); err != nil {
				return err
			}
			report.Status = "sold"
			return nil
		}

		for _, item := range items {
			highest, err := r.repo.HighestActiveBid(txCtx, item.ID)
			if err != nil {
				return err
			}

			outcome, err := ResolveItem(item, highest, now)
			if err != nil {
				var violation domain.InvariantViolationError
				if errors.As(err, &violation) {
					// Alert and move on; the bad row must not block its
					// siblings.
					r.logger.Printf("ERROR: %v (product=%s item=%s status=%s)", err, product.ID, item.ID, item.Status)
					report.Items = append(report.Items, ItemTransition{
						ItemID: item.ID,
						From:   item.Status,
						To:     item.Status,
						Note:   "invariant violation",
					})
					continue
				}
				return err
			}
			if !outcome.Transition {
				continue
			}

			if err := r.repo.UpdateItem(txCtx, outcome.Item); err != nil {
				return err
			}
			transition := ItemTransition{ItemID: item.ID, From: item.Status, To: outcome.Item.Status}

			if outcome.Refund {
				if err := r.ledger.Adjust(txCtx, &product, 1); err != nil {
					return err
				}
			}
			if outcome.Republish {
				if _, err := r.publisher.PublishNextBatch(txCtx, &product, 1); err != nil {
					// Should not happen right after a +1 refund; warn, not
					// fatal.
					r.logger.Printf("WARN: republish product=%s after item=%s: %v", product.ID, item.ID, err)
					transition.Note = "republish failed"
				}
			}
			report.Items = append(report.Items, transition)
		}

		if product.RemainingQuantity < 1 {
			if err := r.repo.UpdateProductStatus(txCtx, product.ID, domain.ProductStatusSold, nil); err != nil {
				return err
			}
			report.Status = "sold"
			return nil
		}
		report.Status = "reconciled"
		return nil
	})
	if err != nil {
		return ProductReport{}, err
	}
	return report, nil
}
