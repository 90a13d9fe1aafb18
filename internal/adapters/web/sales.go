package web

import (
	"log"
	"net/http"

	"pos-terminal/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// checkout handles POST /api/checkout. The idempotency key is the
// Idempotency-Key header, else the body field, else the request id, so a
// client that resends the same X-Request-ID cannot record the sale twice.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod   string          `json:"payment_method"`
		DiscountPercent decimal.Decimal `json:"discount_percent"`
		CustomerName    string          `json:"customer_name"`
		CustomerPhone   string          `json:"customer_phone"`
		CustomerEmail   string          `json:"customer_email"`
		Notes           string          `json:"notes"`
		IdempotencyKey  string          `json:"idempotency_key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = requestIDFromContext(r.Context())
	}

	result, err := h.svc.Checkout(r.Context(), app.CheckoutRequest{
		PaymentMethod:   req.PaymentMethod,
		DiscountPercent: req.DiscountPercent,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Notes:           req.Notes,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Printf("[%s] sale %s recorded: %s %s", requestIDFromContext(r.Context()),
		result.Sale.ReceiptNumber, result.Sale.TotalAmount.StringFixed(2), result.Sale.PaymentMethod)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// getSale handles GET /api/sales/{receipt}.
func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.svc.GetSale(r.Context(), chi.URLParam(r, "receipt"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sale)
}
