package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Andrew-dev1/StockSprout/internal/auth"
	"github.com/Andrew-dev1/StockSprout/internal/database"
	"github.com/Andrew-dev1/StockSprout/internal/kafka"
	"github.com/Andrew-dev1/StockSprout/internal/pricing"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       *database.DB
	pricing  *pricing.Service
	sessions *auth.Manager
	producer *kafka.Producer
}

// NewHandler creates a new Handler. producer may be nil when Kafka is
// disabled.
func NewHandler(db *database.DB, pricingSvc *pricing.Service, sessions *auth.Manager, producer *kafka.Producer) *Handler {
	return &Handler{
		db:       db,
		pricing:  pricingSvc,
		sessions: sessions,
		producer: producer,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps ledger errors to response codes. Anything
// unrecognized is a storage failure: logged in full, surfaced as a
// generic 500.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrStockNotFound):
		respondErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrForbidden):
		respondErrorMessage(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, database.ErrNoPriceData),
		errors.Is(err, database.ErrAmountTooSmall),
		errors.Is(err, database.ErrInsufficientBalance),
		errors.Is(err, database.ErrHoldingNotFound),
		errors.Is(err, database.ErrInsufficientShares),
		errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrExceedsEligible):
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrConflictingState):
		respondErrorMessage(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondErrorMessage(w, http.StatusInternalServerError, "something went wrong")
	}
}

// actor returns the authenticated caller; the auth middleware
// guarantees it is present on protected routes.
func actor(r *http.Request) *auth.Actor {
	return auth.ActorFromContext(r.Context())
}

// logPublishError logs a failed Kafka publish. Events are best-effort
// and never fail the request.
func logPublishError(err error) {
	log.Printf("kafka publish failed: %v", err)
}
