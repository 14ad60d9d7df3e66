package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// GetStocks handles GET /api/v1/stocks
func (h *Handler) GetStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.db.GetActiveStocks()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stocks)
}

// GetStockDetail handles GET /api/v1/stocks/{ticker}. The persisted
// stock and price history come from the store; the live quote is
// best-effort and omitted when the provider is unreachable.
func (h *Handler) GetStockDetail(w http.ResponseWriter, r *http.Request) {
	ticker, ok := normalizeTicker(mux.Vars(r)["ticker"])
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	stock, err := h.db.GetStockByTicker(ticker)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	detail := map[string]interface{}{"stock": stock}

	if latest, err := h.db.GetLatestPrice(stock.ID); err == nil {
		detail["latest_price"] = latest
	}
	if history, err := h.db.GetPriceHistory(stock.ID, queryLimit(r, 30)); err == nil {
		detail["price_history"] = history
	}
	if quote, err := h.pricing.CachedQuote(r.Context(), ticker); err == nil && quote != nil {
		detail["quote"] = quote
	}
	if candles, err := h.pricing.Candles(r.Context(), ticker, queryLimit(r, 30)); err == nil && candles != nil {
		detail["candles"] = candles
	}

	respondJSON(w, http.StatusOK, detail)
}

// GetMarketStatus handles GET /api/v1/stocks/market-status
func (h *Handler) GetMarketStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.pricing.MarketStatus(r.Context())
	if err != nil {
		respondErrorMessage(w, http.StatusBadGateway, "market status unavailable")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// SearchStocks handles GET /api/v1/stocks/search?q=...
func (h *Handler) SearchStocks(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondErrorMessage(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	matches, err := h.pricing.SearchSymbols(r.Context(), query)
	if err != nil {
		respondErrorMessage(w, http.StatusBadGateway, "symbol search unavailable")
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

type seedStockRequest struct {
	Ticker string `json:"ticker"`
}

// SeedStock handles POST /api/v1/family/stocks. Parents curate the
// tradable universe; a ticker must be seeded before children can buy it.
func (h *Handler) SeedStock(w http.ResponseWriter, r *http.Request) {
	var req seedStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticker, ok := normalizeTicker(req.Ticker)
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	stock, err := h.pricing.SeedStock(r.Context(), ticker)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, stock)
}

// DeactivateStock handles DELETE /api/v1/family/stocks/{ticker}.
// Children keep and may sell existing holdings in a deactivated stock;
// they just cannot open new positions.
func (h *Handler) DeactivateStock(w http.ResponseWriter, r *http.Request) {
	ticker, ok := normalizeTicker(mux.Vars(r)["ticker"])
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid ticker")
		return
	}

	if err := h.db.SetStockActive(ticker, false); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
