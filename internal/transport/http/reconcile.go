package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DClarkFarr/auction-sub001/internal/app"
)

// ReconcileRunner is the minimal interface needed to trigger a run.
type ReconcileRunner interface {
	Run(ctx context.Context) (app.RunReport, error)
}

// HandleReconcile triggers a reconciliation pass on demand and returns its
// report. The same unit of work runs on the background ticker.
func HandleReconcile(svc ReconcileRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Run(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}
