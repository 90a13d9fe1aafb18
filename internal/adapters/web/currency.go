package web

import (
	"net/http"

	"pos-terminal/internal/app"

	"github.com/shopspring/decimal"
)

// listCurrencies handles GET /api/currencies.
func (h *Handler) listCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.ListCurrencies())
}

// activeCurrency handles GET /api/currencies/active.
func (h *Handler) activeCurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.ActiveCurrency())
}

// setActiveCurrency handles PUT /api/currencies/active.
func (h *Handler) setActiveCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeError(w, r, "code is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.SetActiveCurrency(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// convert handles POST /api/currencies/convert.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		From   string          `json:"from"`
		To     string          `json:"to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.Convert(app.ConvertRequest{Amount: req.Amount, From: req.From, To: req.To})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// format handles POST /api/currencies/format. The amount is in the base
// currency; an omitted currency means the active one.
func (h *Handler) format(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount     decimal.Decimal `json:"amount"`
		Currency   string          `json:"currency"`
		HideSymbol bool            `json:"hide_symbol"`
		ShowCode   bool            `json:"show_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	formatted, err := h.svc.FormatAmount(app.FormatRequest{
		AmountInBase: req.Amount,
		Currency:     req.Currency,
		HideSymbol:   req.HideSymbol,
		ShowCode:     req.ShowCode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"formatted": formatted})
}

// parse handles POST /api/currencies/parse. Unparseable text yields 0,
// matching what a cashier sees when clearing an amount field.
func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, map[string]any{
		"amount":   h.svc.ParseAmount(req.Text),
		"currency": h.svc.ActiveCurrency().Code,
	})
}
