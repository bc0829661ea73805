package http

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// RouterConfig wires the service surface into the HTTP router.
type RouterConfig struct {
	Lifecycle   ProductLifecycleService
	Bidding     BidPlacer
	Purchases   PurchaseConfirmer
	Listings    ItemLister
	Reconciler  ReconcileRunner
	Logger      *log.Logger
	CORSOrigins []string
	// BidLimiter bounds bid placement; nil disables limiting.
	BidLimiter *rate.Limiter
}

// NewRouter builds the full HTTP handler stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	r.Handle("/items", HandleListItems(cfg.Listings)).Methods(http.MethodGet)
	r.Handle("/items/{id}/bids", RateLimit(cfg.BidLimiter, HandlePlaceBid(cfg.Bidding))).Methods(http.MethodPost)
	r.Handle("/items/{id}/purchase", HandleConfirmPurchase(cfg.Purchases)).Methods(http.MethodPost)

	r.Handle("/products", HandleCreateProduct(cfg.Lifecycle)).Methods(http.MethodPost)
	r.Handle("/products/{id}/schedule", HandleScheduleProduct(cfg.Lifecycle)).Methods(http.MethodPost)
	r.Handle("/products/{id}/activate", HandleActivateProduct(cfg.Lifecycle)).Methods(http.MethodPost)
	r.Handle("/products/{id}/deactivate", HandleDeactivateProduct(cfg.Lifecycle)).Methods(http.MethodPost)
	r.Handle("/products/{id}/archive", HandleArchiveProduct(cfg.Lifecycle)).Methods(http.MethodPost)
	r.Handle("/products/{id}/sell", HandleMarkSold(cfg.Lifecycle)).Methods(http.MethodPost)
	r.Handle("/products/{id}/publish", HandlePublishBatch(cfg.Lifecycle)).Methods(http.MethodPost)

	r.Handle("/admin/reconcile", HandleReconcile(cfg.Reconciler)).Methods(http.MethodPost)

	return RequestLogger(CORS(cfg.CORSOrigins, r), cfg.Logger)
}
