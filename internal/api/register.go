package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Andrew-dev1/StockSprout/internal/auth"
	"github.com/Andrew-dev1/StockSprout/internal/models"
)

type registerFamilyRequest struct {
	FamilyName string `json:"family_name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	PIN        string `json:"pin"`
}

// RegisterFamily handles POST /api/v1/auth/register. It creates the
// family together with its first parent account and signs the parent in.
func (h *Handler) RegisterFamily(w http.ResponseWriter, r *http.Request) {
	var req registerFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FamilyName == "" || req.FirstName == "" {
		respondErrorMessage(w, http.StatusBadRequest, "family name and first name are required")
		return
	}

	pinHash, err := auth.HashPIN(req.PIN)
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "PIN must be exactly 6 digits")
		return
	}

	family := &models.Family{Name: req.FamilyName}
	if err := h.db.CreateFamily(family); err != nil {
		respondDomainError(w, err)
		return
	}

	parent := &models.User{
		FamilyID:  family.ID,
		Role:      models.RoleParent,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PinHash:   pinHash,
	}
	if err := h.db.CreateUser(parent); err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := h.sessions.IssueToken(parent.ID, parent.FamilyID, parent.Role)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token":  token,
		"family": family,
		"user":   parent,
	})
}

type addChildRequest struct {
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	PIN            string          `json:"pin"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AddChild handles POST /api/v1/family/children
func (h *Handler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req addChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" {
		respondErrorMessage(w, http.StatusBadRequest, "first name is required")
		return
	}
	if req.InitialBalance.Sign() < 0 {
		respondErrorMessage(w, http.StatusBadRequest, "initial balance cannot be negative")
		return
	}

	pinHash, err := auth.HashPIN(req.PIN)
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "PIN must be exactly 6 digits")
		return
	}

	child := &models.User{
		FamilyID:  actor(r).FamilyID,
		Role:      models.RoleChild,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Balance:   req.InitialBalance,
		PinHash:   pinHash,
	}
	if err := h.db.CreateUser(child); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}
