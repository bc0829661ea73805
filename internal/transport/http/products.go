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

// ProductLifecycleService is the interface the product endpoints need.
type ProductLifecycleService interface {
	CreateProduct(ctx context.Context, in app.CreateProductInput) (domain.Product, error)
	Schedule(ctx context.Context, productID string, at time.Time) (domain.Product, error)
	Activate(ctx context.Context, productID string) (domain.Product, []domain.Item, error)
	Deactivate(ctx context.Context, productID string) (domain.Product, error)
	Archive(ctx context.Context, productID string) (domain.Product, error)
	MarkSold(ctx context.Context, productID string) (domain.Product, error)
	PublishNextBatch(ctx context.Context, productID string, overrideSize int) ([]domain.Item, error)
}

// HandleCreateProduct returns an HTTP handler for creating products.
func HandleCreateProduct(svc ProductLifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		product, err := svc.CreateProduct(r.Context(), app.CreateProductInput{
			Name:              req.Name,
			InitialQuantity:   req.InitialQuantity,
			AuctionBatchCount: req.AuctionBatchCount,
			PriceInitial:      req.PriceInitial,
			Quality:           req.Quality,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandleScheduleProduct parks a product for future activation.
func HandleScheduleProduct(svc ProductLifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleProductRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		at, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationError, "invalid scheduled_for format")
			return
		}

		product, err := svc.Schedule(r.Context(), mux.Vars(r)["id"], at)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandleActivateProduct publishes the first batch and opens bidding.
func HandleActivateProduct(svc ProductLifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, items, err := svc.Activate(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := activationResponse{
			Product: toProductResponse(product),
			Items:   toItemResponses(items),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleDeactivateProduct cancels open bidding and returns the product to
// inactive (or cancels a pending schedule).
func HandleDeactivateProduct(svc ProductLifecycleService) http.HandlerFunc {
	return handleRetire(svc.Deactivate)
}

// HandleArchiveProduct cancels open bidding and archives the product.
func HandleArchiveProduct(svc ProductLifecycleService) http.HandlerFunc {
	return handleRetire(svc.Archive)
}

// HandleMarkSold cancels open bidding and marks the product sold.
func HandleMarkSold(svc ProductLifecycleService) http.HandlerFunc {
	return handleRetire(svc.MarkSold)
}

func handleRetire(transition func(ctx context.Context, productID string) (domain.Product, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := transition(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandlePublishBatch releases one more batch on operator demand.
func HandlePublishBatch(svc ProductLifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publishBatchRequest
		if r.Body != nil && r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
		}
		if req.Size < 0 {
			writeError(w, http.StatusBadRequest, codeValidationError, "size must not be negative")
			return
		}

		items, err := svc.PublishNextBatch(r.Context(), mux.Vars(r)["id"], req.Size)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toItemResponses(items))
	}
}

type createProductRequest struct {
	Name              string `json:"name"`
	InitialQuantity   int    `json:"initial_quantity"`
	AuctionBatchCount int    `json:"auction_batch_count"`
	PriceInitial      int64  `json:"price_initial"`
	Quality           int    `json:"quality"`
}

type scheduleProductRequest struct {
	ScheduledFor string `json:"scheduled_for"`
}

type publishBatchRequest struct {
	Size int `json:"size"`
}

type productResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Status            string     `json:"status"`
	InitialQuantity   int        `json:"initial_quantity"`
	RemainingQuantity int        `json:"remaining_quantity"`
	AuctionBatchCount int        `json:"auction_batch_count"`
	PriceInitial      int64      `json:"price_initial"`
	Quality           int        `json:"quality"`
	ScheduledFor      *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type activationResponse struct {
	Product productResponse `json:"product"`
	Items   []itemResponse  `json:"items"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:                p.ID,
		Name:              p.Name,
		Status:            string(p.Status),
		InitialQuantity:   p.InitialQuantity,
		RemainingQuantity: p.RemainingQuantity,
		AuctionBatchCount: p.AuctionBatchCount,
		PriceInitial:      p.PriceInitial,
		Quality:           p.Quality,
		ScheduledFor:      p.ScheduledFor,
		CreatedAt:         p.CreatedAt,
	}
}

func toItemResponses(items []domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Status:    string(item.Status),
			ExpiresAt: item.ExpiresAt,
		})
	}
	return out
}
