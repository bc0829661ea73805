package app

import (
	"context"
	"errors"
	"testing"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

func TestLedger_Adjust(t *testing.T) {
	t.Parallel()

	makeLedger := func(initial, remaining int) (*Ledger, *fakeRepo, *domain.Product) {
		repo := newFakeRepo()
		product := domain.Product{ID: "prod-1", InitialQuantity: initial, RemainingQuantity: remaining}
		repo.addProduct(product)
		return NewLedger(repo), repo, &product
	}

	t.Run("applies delta and persists", func(t *testing.T) {
		ledger, repo, product := makeLedger(10, 7)

		if err := ledger.Adjust(context.Background(), product, -3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product.RemainingQuantity != 4 {
			t.Fatalf("expected in-memory remaining 4, got %d", product.RemainingQuantity)
		}
		if got := repo.products["prod-1"].RemainingQuantity; got != 4 {
			t.Fatalf("expected persisted remaining 4, got %d", got)
		}
	})

	t.Run("rejects negative result", func(t *testing.T) {
		ledger, repo, product := makeLedger(10, 2)

		err := ledger.Adjust(context.Background(), product, -3)
		var violation domain.InvariantViolationError
		if !errors.As(err, &violation) {
			t.Fatalf("expected InvariantViolationError, got %v", err)
		}
		if product.RemainingQuantity != 2 {
			t.Fatalf("expected remaining unchanged, got %d", product.RemainingQuantity)
		}
		if got := repo.products["prod-1"].RemainingQuantity; got != 2 {
			t.Fatalf("expected persisted remaining unchanged, got %d", got)
		}
	})

	t.Run("rejects exceeding initial quantity", func(t *testing.T) {
		ledger, _, product := makeLedger(10, 9)

		err := ledger.Adjust(context.Background(), product, 2)
		var violation domain.InvariantViolationError
		if !errors.As(err, &violation) {
			t.Fatalf("expected InvariantViolationError, got %v", err)
		}
	})
}
