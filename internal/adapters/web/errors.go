package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pos-terminal/internal/app"
	"pos-terminal/internal/core"
)

type errorResponse struct {
	Error     string               `json:"error"`
	Code      string               `json:"code"`
	RequestID string               `json:"request_id,omitempty"`
	Shortages []core.StockShortage `json:"shortages,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, status, errorResponse{Error: message, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a domain error from the application layer onto an
// HTTP status and error code. Anything unrecognised is logged and hidden
// behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr    *core.InsufficientStockError
		currencyErr *core.UnknownCurrencyError
		productErr  *core.ProductValidationError
	)
	switch {
	case errors.As(err, &stockErr):
		writeErrorResponse(w, r, http.StatusConflict, errorResponse{
			Error:     stockErr.Error(),
			Code:      "INSUFFICIENT_STOCK",
			Shortages: stockErr.Shortages,
		})
	case errors.As(err, &currencyErr):
		writeError(w, r, err.Error(), "UNKNOWN_CURRENCY", http.StatusBadRequest)
	case errors.As(err, &productErr):
		writeError(w, r, err.Error(), "INVALID_PRODUCT", http.StatusBadRequest)
	case errors.Is(err, app.ErrStockLimit):
		writeError(w, r, err.Error(), "STOCK_LIMIT", http.StatusConflict)
	case errors.Is(err, core.ErrItemNotFound):
		writeError(w, r, err.Error(), "ITEM_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrProductNotFound):
		writeError(w, r, err.Error(), "PRODUCT_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrSaleNotFound):
		writeError(w, r, err.Error(), "SALE_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrNegativePrice),
		errors.Is(err, core.ErrEmptyCart),
		errors.Is(err, core.ErrInvalidPaymentMethod),
		errors.Is(err, core.ErrInvalidDiscount),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, app.ErrInvalidQuantity):
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
	case errors.Is(err, app.ErrCatalogUnavailable), errors.Is(err, app.ErrBackendUnavailable):
		writeError(w, r, err.Error(), "BACKEND_UNAVAILABLE", http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, "backend timed out", "TIMEOUT", http.StatusGatewayTimeout)
	default:
		log.Printf("request %s: %v", requestIDFromContext(r.Context()), err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
