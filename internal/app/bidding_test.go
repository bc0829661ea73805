package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/clock"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

func TestBiddingEngine_PlaceBid(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	makeEngine := func(expiresIn time.Duration, bids ...domain.Bid) (*BiddingEngine, *fakeRepo) {
		repo := newFakeRepo()
		repo.addProduct(domain.Product{
			ID:           "prod-1",
			Status:       domain.ProductStatusActive,
			PriceInitial: 500,
		})
		repo.addItem(domain.Item{
			ID:        "item-1",
			ProductID: "prod-1",
			Status:    domain.ItemStatusActive,
			ExpiresAt: now.Add(expiresIn),
		})
		for _, bid := range bids {
			repo.addBid(bid)
		}
		return NewBiddingEngine(repo, clock.NewFixed(now)), repo
	}

	t.Run("first bid must meet initial price", func(t *testing.T) {
		engine, repo := makeEngine(2 * time.Hour)

		_, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "item-1", Amount: 499})
		var validation domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if repo.activeBidCount("item-1") != 0 {
			t.Fatalf("expected no bids recorded")
		}

		res, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "item-1", Amount: 500})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Bid.Amount != 500 {
			t.Fatalf("expected amount 500, got %d", res.Bid.Amount)
		}
	})

	t.Run("outbid requires prior amount plus one", func(t *testing.T) {
		prior := domain.Bid{ID: "bid-1", ItemID: "item-1", UserID: "user-1", Amount: 700, Status: domain.BidStatusActive, CreatedAt: now.Add(-time.Minute)}
		engine, repo := makeEngine(2*time.Hour, prior)

		_, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-2", ItemID: "item-1", Amount: 700})
		var validation domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if repo.bids["bid-1"].Status != domain.BidStatusActive {
			t.Fatalf("expected prior bid to stay active after rejected attempt")
		}

		res, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-2", ItemID: "item-1", Amount: 701})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Bid.UserID != "user-2" {
			t.Fatalf("expected winning user user-2, got %s", res.Bid.UserID)
		}
	})

	t.Run("exactly one active bid after placement", func(t *testing.T) {
		prior := domain.Bid{ID: "bid-1", ItemID: "item-1", UserID: "user-1", Amount: 700, Status: domain.BidStatusActive, CreatedAt: now.Add(-time.Minute)}
		engine, repo := makeEngine(2*time.Hour, prior)

		if _, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-2", ItemID: "item-1", Amount: 800}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := repo.activeBidCount("item-1"); got != 1 {
			t.Fatalf("expected exactly 1 active bid, got %d", got)
		}
		if repo.bids["bid-1"].Status != domain.BidStatusInactive {
			t.Fatalf("expected prior bid deactivated")
		}
	})

	t.Run("late bid extends deadline to five minutes", func(t *testing.T) {
		engine, repo := makeEngine(2 * time.Minute)

		res, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "item-1", Amount: 600})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := now.Add(5 * time.Minute)
		if !res.Item.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, res.Item.ExpiresAt)
		}
		if !repo.items["item-1"].ExpiresAt.Equal(want) {
			t.Fatalf("expected persisted expiry %v, got %v", want, repo.items["item-1"].ExpiresAt)
		}
	})

	t.Run("early bid leaves deadline untouched", func(t *testing.T) {
		engine, repo := makeEngine(2 * time.Hour)

		res, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "item-1", Amount: 600})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := now.Add(2 * time.Hour)
		if !res.Item.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry unchanged at %v, got %v", want, res.Item.ExpiresAt)
		}
		if !repo.items["item-1"].ExpiresAt.Equal(want) {
			t.Fatalf("expected persisted expiry unchanged")
		}
	})

	t.Run("rejects bids after the deadline", func(t *testing.T) {
		engine, _ := makeEngine(-time.Minute)

		_, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "item-1", Amount: 600})
		var domainErr domain.DomainError
		if !errors.As(err, &domainErr) {
			t.Fatalf("expected DomainError, got %v", err)
		}
	})

	t.Run("rejects bids on non-active items", func(t *testing.T) {
		engine, repo := makeEngine(2 * time.Hour)
		repo.items["item-1"].Status = domain.ItemStatusCanceled

		_, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "item-1", Amount: 600})
		var domainErr domain.DomainError
		if !errors.As(err, &domainErr) {
			t.Fatalf("expected DomainError, got %v", err)
		}
	})

	t.Run("missing item returns not found", func(t *testing.T) {
		engine, _ := makeEngine(2 * time.Hour)

		_, err := engine.PlaceBid(context.Background(), PlaceBidInput{UserID: "user-1", ItemID: "missing", Amount: 600})
		var notFound domain.NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}
