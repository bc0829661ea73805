package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DClarkFarr/auction-sub001/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidationError    = "validation_error"
	codeConflict           = "conflict"
	codeRateLimited        = "rate_limited"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Invariant violations and dependency failures deliberately collapse into a
// generic 500; their details are for logs, not callers.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation domain.ValidationError
		notFound   domain.NotFoundError
		conflict   domain.DomainError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, codeValidationError, validation.Msg)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, codeNotFound, notFound.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, codeConflict, conflict.Msg)
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
