package web

import (
	"net/http"

	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// getCart handles GET /api/cart.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.GetCart())
}

// clearCart handles DELETE /api/cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.ClearCart())
}

// addItem handles POST /api/cart/items. The body names either a catalog
// product id, which is looked up fresh, or a full product snapshot supplied
// by the UI. quantity defaults to 1 and is added all-or-nothing.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int                `json:"product_id"`
		Product   *core.ProductInput `json:"product"`
		Quantity  *int               `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		writeError(w, r, "quantity must be at least 1", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	switch {
	case req.Product != nil:
		result, err := h.svc.AddSnapshot(*req.Product, qty)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, result)
	case req.ProductID > 0:
		result, err := h.svc.AddProduct(r.Context(), req.ProductID, qty)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, result)
	default:
		writeError(w, r, "product_id or product is required", "BAD_REQUEST", http.StatusBadRequest)
	}
}

// removeItem handles DELETE /api/cart/items/{id}. Removing an absent line
// is not an error.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.svc.RemoveItem(id))
}

// updateQuantity handles PUT /api/cart/items/{id}/quantity.
func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		writeError(w, r, "quantity is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdateQuantity(id, *req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updatePrice handles PUT /api/cart/items/{id}/price. The price is in the
// base currency.
func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req struct {
		Price *decimal.Decimal `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeError(w, r, "price is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.UpdatePrice(id, *req.Price)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
