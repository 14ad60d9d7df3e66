package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/auth"
	"github.com/Andrew-dev1/StockSprout/internal/database"
	"github.com/Andrew-dev1/StockSprout/internal/models"
)

type childLoginRequest struct {
	FirstName  string `json:"first_name"`
	FamilyName string `json:"family_name"`
	PIN        string `json:"pin"`
}

// ChildLogin handles POST /api/v1/auth/child-login
func (h *Handler) ChildLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleChild)
}

// ParentLogin handles POST /api/v1/auth/parent-login
func (h *Handler) ParentLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleParent)
}

// Logout handles POST /api/v1/auth/logout. Sessions are stateless
// bearer tokens, so the client discards the token; this endpoint only
// acknowledges.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, role string) {
	var req childLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.FamilyName == "" {
		respondErrorMessage(w, http.StatusBadRequest, "first name and family name are required")
		return
	}

	user, err := h.db.GetUserForLogin(req.FirstName, req.FamilyName, role)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Same response as a bad PIN, so login attempts cannot
			// probe which names exist.
			respondErrorMessage(w, http.StatusUnauthorized, "invalid login")
			return
		}
		respondDomainError(w, err)
		return
	}

	if user.PinHash == "" || auth.CheckPIN(user.PinHash, req.PIN) != nil {
		respondErrorMessage(w, http.StatusUnauthorized, "invalid login")
		return
	}

	token, err := h.sessions.IssueToken(user.ID, user.FamilyID, user.Role)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":         user.ID,
			"first_name": user.FirstName,
			"role":       user.Role,
			"balance":    user.Balance,
		},
	})
}

// GetPortfolio handles GET /api/v1/child/portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.db.GetPortfolio(actor(r).UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// GetPortfolioHistory handles GET /api/v1/child/portfolio-history
func (h *Handler) GetPortfolioHistory(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.db.GetSnapshotsByUser(actor(r).UserID, queryLimit(r, 90))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshots)
}

// GetTransactions handles GET /api/v1/child/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.db.GetTransactionsByUser(actor(r).UserID, queryLimit(r, 50))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

// GetCashOutEligibility handles GET /api/v1/child/cashout
func (h *Handler) GetCashOutEligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := h.db.GetCashOutEligibility(actor(r).UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, eligibility)
}

type cashOutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RequestCashOut handles POST /api/v1/child/cashout
func (h *Handler) RequestCashOut(w http.ResponseWriter, r *http.Request) {
	var req cashOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.db.RequestCashOut(actor(r).UserID, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, request)
}

// GetChoreAssignments handles GET /api/v1/child/chores
func (h *Handler) GetChoreAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.db.GetAssignmentsByChild(actor(r).UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assignments)
}

// SubmitChoreAssignment handles POST /api/v1/child/chores/{assignmentId}/submit
func (h *Handler) SubmitChoreAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := mux.Vars(r)["assignmentId"]

	assignment, err := h.db.SubmitAssignment(assignmentID, actor(r).UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assignment)
}

// queryLimit parses a ?limit query parameter with a default cap
func queryLimit(r *http.Request, def int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return def
}
