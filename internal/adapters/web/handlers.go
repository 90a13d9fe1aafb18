package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"pos-terminal/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler exposes the ApplicationService as a JSON bridge for the terminal UI.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes. An empty
// jwtSecret leaves the API unauthenticated, which is only meant for a
// terminal bound to localhost.
func NewHandler(svc app.ApplicationService, allowedOrigins []string, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(Terminal)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		if jwtSecret != "" {
			r.Use(h.RequireAuth)
		} else {
			log.Println("Warning: JWT_SECRET is not set, API routes are unauthenticated")
		}
		r.Use(middleware.RequestSize(1 << 20)) // 1 MB

		// ── Currency ──────────────────────────────────────────────────────────
		r.Get("/api/currencies", h.listCurrencies)
		r.Get("/api/currencies/active", h.activeCurrency)
		r.Put("/api/currencies/active", h.setActiveCurrency)
		r.Post("/api/currencies/convert", h.convert)
		r.Post("/api/currencies/format", h.format)
		r.Post("/api/currencies/parse", h.parse)

		// ── Catalog ───────────────────────────────────────────────────────────
		r.Get("/api/products", h.listProducts)
		r.Get("/api/products/{id}", h.getProduct)

		// ── Cart ──────────────────────────────────────────────────────────────
		r.Get("/api/cart", h.getCart)
		r.Delete("/api/cart", h.clearCart)
		r.Post("/api/cart/items", h.addItem)
		r.Delete("/api/cart/items/{id}", h.removeItem)
		r.Put("/api/cart/items/{id}/quantity", h.updateQuantity)
		r.Put("/api/cart/items/{id}/price", h.updatePrice)

		// ── Sales ─────────────────────────────────────────────────────────────
		r.Post("/api/checkout", h.checkout)
		r.Get("/api/sales/{receipt}", h.getSale)
	})

	return r
}

// health returns service status and the active currency.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Currency string `json:"currency"`
	}
	writeJSON(w, response{Status: "ok", Currency: h.svc.ActiveCurrency().Code})
}

// productID extracts the {id} URL parameter. It writes a 400 and returns
// false when the parameter is not a positive integer.
func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "product id must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by the RequestSize middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
