package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/auth"
	"github.com/Andrew-dev1/StockSprout/internal/database"
	"github.com/Andrew-dev1/StockSprout/internal/models"
)

// GetChildren handles GET /api/v1/family/children
func (h *Handler) GetChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.db.GetChildrenByFamily(actor(r).FamilyID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, children)
}

// GetChildPortfolio handles GET /api/v1/family/children/{childId}/portfolio
func (h *Handler) GetChildPortfolio(w http.ResponseWriter, r *http.Request) {
	child, err := h.familyChild(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	portfolio, err := h.db.GetPortfolio(child.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// GetChildTransactions handles GET /api/v1/family/children/{childId}/transactions
func (h *Handler) GetChildTransactions(w http.ResponseWriter, r *http.Request) {
	child, err := h.familyChild(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	txns, err := h.db.GetTransactionsByUser(child.ID, queryLimit(r, 50))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// DepositToChild handles POST /api/v1/family/children/{childId}/deposit
func (h *Handler) DepositToChild(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	childID := mux.Vars(r)["childId"]
	txn, balance, err := h.db.DepositToChild(childID, actor(r).FamilyID, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": txn,
		"balance":     balance,
	})
}

type setPINRequest struct {
	PIN string `json:"pin"`
}

// SetChildPIN handles PUT /api/v1/family/children/{childId}/pin
func (h *Handler) SetChildPIN(w http.ResponseWriter, r *http.Request) {
	var req setPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	child, err := h.familyChild(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	hash, err := auth.HashPIN(req.PIN)
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "PIN must be exactly 6 digits")
		return
	}
	if err := h.db.SetUserPIN(child.ID, hash); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type createChoreRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Reward      decimal.Decimal `json:"reward"`
	IsRecurring bool            `json:"is_recurring"`
}

// CreateChore handles POST /api/v1/family/chores
func (h *Handler) CreateChore(w http.ResponseWriter, r *http.Request) {
	var req createChoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondErrorMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Reward.Sign() <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "reward must be greater than 0")
		return
	}

	parent := actor(r)
	chore := &models.Chore{
		FamilyID:    parent.FamilyID,
		Title:       req.Title,
		Description: req.Description,
		Reward:      req.Reward,
		IsRecurring: req.IsRecurring,
		CreatedByID: parent.UserID,
	}
	if err := h.db.CreateChore(chore); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, chore)
}

type assignChoreRequest struct {
	ChildID string `json:"child_id"`
}

// AssignChore handles POST /api/v1/family/chores/{choreId}/assign
func (h *Handler) AssignChore(w http.ResponseWriter, r *http.Request) {
	var req assignChoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	choreID := mux.Vars(r)["choreId"]
	chore, err := h.db.GetChore(choreID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if chore.FamilyID != actor(r).FamilyID {
		respondErrorMessage(w, http.StatusNotFound, "chore not found")
		return
	}

	assignment, err := h.db.AssignChore(choreID, req.ChildID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

// GetSubmittedAssignments handles GET /api/v1/family/chores/submitted
func (h *Handler) GetSubmittedAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.db.GetSubmittedAssignmentsByFamily(actor(r).FamilyID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assignments)
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// ReviewChoreAssignment handles PATCH /api/v1/family/chores/assignments/{assignmentId}
func (h *Handler) ReviewChoreAssignment(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parent := actor(r)
	assignmentID := mux.Vars(r)["assignmentId"]

	var assignment *models.ChoreAssignment
	var err error
	if req.Approve {
		assignment, err = h.db.ApproveChoreAssignment(assignmentID, parent.UserID, parent.FamilyID)
	} else {
		assignment, err = h.db.RejectChoreAssignment(assignmentID, parent.UserID, parent.FamilyID)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if req.Approve && h.producer != nil {
		if err := h.producer.PublishChoreApproved(r.Context(), assignment.AssignedToID, assignment.ChoreReward); err != nil {
			logPublishError(err)
		}
	}

	respondJSON(w, http.StatusOK, assignment)
}

// GetPendingCashOuts handles GET /api/v1/family/cashouts
func (h *Handler) GetPendingCashOuts(w http.ResponseWriter, r *http.Request) {
	requests, err := h.db.GetPendingCashOutsByFamily(actor(r).FamilyID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// ReviewCashOut handles PATCH /api/v1/family/cashouts/{requestId}
func (h *Handler) ReviewCashOut(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parent := actor(r)
	request, err := h.db.ReviewCashOut(mux.Vars(r)["requestId"], parent.UserID, parent.FamilyID, req.Approve)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishCashOutReviewed(r.Context(), request.RequestedByID, request.Status, request.Amount); err != nil {
			logPublishError(err)
		}
	}

	respondJSON(w, http.StatusOK, request)
}

// familyChild loads the child named in the route and verifies they
// belong to the caller's family.
func (h *Handler) familyChild(r *http.Request) (*models.User, error) {
	child, err := h.db.GetUserByID(mux.Vars(r)["childId"])
	if err != nil {
		return nil, err
	}
	if child.FamilyID != actor(r).FamilyID || !child.IsChild() {
		return nil, database.ErrNotFound
	}
	return child, nil
}
