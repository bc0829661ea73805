package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DClarkFarr/auction-sub001/internal/app"
	"github.com/DClarkFarr/auction-sub001/internal/domain"
	"github.com/gorilla/mux"
)

// BidPlacer is the minimal interface needed to place a bid.
type BidPlacer interface {
	PlaceBid(ctx context.Context, in app.PlaceBidInput) (app.PlaceBidResult, error)
}

// HandlePlaceBid returns an HTTP handler for placing a bid on an item.
func HandlePlaceBid(svc BidPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := mux.Vars(r)["id"]

		var req placeBidRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, codeValidationError, "user_id is required")
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationError, "amount must be positive")
			return
		}

		res, err := svc.PlaceBid(r.Context(), app.PlaceBidInput{
			UserID: req.UserID,
			ItemID: itemID,
			Amount: req.Amount,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := placeBidResponse{
			Bid: bidResponse{
				ID:        res.Bid.ID,
				ItemID:    res.Bid.ItemID,
				UserID:    res.Bid.UserID,
				Amount:    res.Bid.Amount,
				CreatedAt: res.Bid.CreatedAt,
			},
			Item: itemResponse{
				ID:        res.Item.ID,
				ProductID: res.Item.ProductID,
				Status:    string(res.Item.Status),
				ExpiresAt: res.Item.ExpiresAt,
			},
			Product: productSummary{
				ID:           res.Product.ID,
				Name:         res.Product.Name,
				PriceInitial: res.Product.PriceInitial,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// PurchaseConfirmer is the minimal interface needed to record a capture.
type PurchaseConfirmer interface {
	ConfirmPurchase(ctx context.Context, itemID string) (domain.Item, error)
}

// HandleConfirmPurchase marks a claimed item purchased after payment
// capture succeeded outside this service.
func HandleConfirmPurchase(svc PurchaseConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.ConfirmPurchase(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := itemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Status:      string(item.Status),
			ExpiresAt:   item.ExpiresAt,
			PurchasedAt: item.PurchasedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type placeBidRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type placeBidResponse struct {
	Bid     bidResponse    `json:"bid"`
	Item    itemResponse   `json:"item"`
	Product productSummary `json:"product"`
}

type bidResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type itemResponse struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

type productSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceInitial int64  `json:"price_initial"`
}
