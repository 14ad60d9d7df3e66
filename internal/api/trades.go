package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

type buyRequest struct {
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
}

type sellRequest struct {
	Ticker string          `json:"ticker"`
	Shares decimal.Decimal `json:"shares"`
}

// BuyStock handles POST /api/v1/trades/buy
func (h *Handler) BuyStock(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticker, ok := normalizeTicker(req.Ticker)
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid ticker")
		return
	}
	if req.Amount.LessThan(h.db.Policy().MinimumBuy) {
		respondErrorMessage(w, http.StatusBadRequest,
			"minimum purchase is $"+h.db.Policy().MinimumBuy.StringFixed(2))
		return
	}

	child := actor(r)
	result, err := h.db.BuyStock(child.UserID, ticker, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishTradeExecuted(r.Context(), child.UserID, ticker,
			models.TransactionStockBuy, result.Transaction.Amount, *result.Transaction.Shares); err != nil {
			logPublishError(err)
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// SellStock handles POST /api/v1/trades/sell
func (h *Handler) SellStock(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticker, ok := normalizeTicker(req.Ticker)
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid ticker")
		return
	}
	if req.Shares.Sign() <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "shares must be greater than 0")
		return
	}

	child := actor(r)
	result, err := h.db.SellStock(child.UserID, ticker, req.Shares)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishTradeExecuted(r.Context(), child.UserID, ticker,
			models.TransactionStockSell, result.Transaction.Amount, *result.Transaction.Shares); err != nil {
			logPublishError(err)
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// normalizeTicker upper-cases a ticker and rejects empty or oversized
// symbols before they reach the ledger.
func normalizeTicker(ticker string) (string, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || len(ticker) > 10 {
		return "", false
	}
	return ticker, true
}
