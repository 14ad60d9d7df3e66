package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes, no token required
	api.HandleFunc("/auth/register", handler.RegisterFamily).Methods("POST")
	api.HandleFunc("/auth/parent-login", handler.ParentLogin).Methods("POST")
	api.HandleFunc("/auth/child-login", handler.ChildLogin).Methods("POST")
	api.HandleFunc("/auth/logout", handler.Logout).Methods("POST")

	// Stock routes, any signed-in user
	stocks := api.PathPrefix("/stocks").Subrouter()
	stocks.Use(handler.sessions.Middleware(""))
	stocks.HandleFunc("", handler.GetStocks).Methods("GET")
	stocks.HandleFunc("/market-status", handler.GetMarketStatus).Methods("GET")
	stocks.HandleFunc("/search", handler.SearchStocks).Methods("GET")
	stocks.HandleFunc("/{ticker}", handler.GetStockDetail).Methods("GET")

	// Child routes
	child := api.PathPrefix("/child").Subrouter()
	child.Use(handler.sessions.RequireChild())
	child.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")
	child.HandleFunc("/portfolio-history", handler.GetPortfolioHistory).Methods("GET")
	child.HandleFunc("/transactions", handler.GetTransactions).Methods("GET")
	child.HandleFunc("/cashout", handler.GetCashOutEligibility).Methods("GET")
	child.HandleFunc("/cashout", handler.RequestCashOut).Methods("POST")
	child.HandleFunc("/chores", handler.GetChoreAssignments).Methods("GET")
	child.HandleFunc("/chores/{assignmentId}/submit", handler.SubmitChoreAssignment).Methods("POST")

	trades := api.PathPrefix("/trades").Subrouter()
	trades.Use(handler.sessions.RequireChild())
	trades.HandleFunc("/buy", handler.BuyStock).Methods("POST")
	trades.HandleFunc("/sell", handler.SellStock).Methods("POST")

	// Parent routes
	family := api.PathPrefix("/family").Subrouter()
	family.Use(handler.sessions.RequireParent())
	family.HandleFunc("/children", handler.GetChildren).Methods("GET")
	family.HandleFunc("/children", handler.AddChild).Methods("POST")
	family.HandleFunc("/children/{childId}/portfolio", handler.GetChildPortfolio).Methods("GET")
	family.HandleFunc("/children/{childId}/transactions", handler.GetChildTransactions).Methods("GET")
	family.HandleFunc("/children/{childId}/deposit", handler.DepositToChild).Methods("POST")
	family.HandleFunc("/children/{childId}/pin", handler.SetChildPIN).Methods("PUT")
	family.HandleFunc("/chores", handler.CreateChore).Methods("POST")
	family.HandleFunc("/chores/submitted", handler.GetSubmittedAssignments).Methods("GET")
	family.HandleFunc("/chores/{choreId}/assign", handler.AssignChore).Methods("POST")
	family.HandleFunc("/chores/assignments/{assignmentId}", handler.ReviewChoreAssignment).Methods("PATCH")
	family.HandleFunc("/cashouts", handler.GetPendingCashOuts).Methods("GET")
	family.HandleFunc("/cashouts/{requestId}", handler.ReviewCashOut).Methods("PATCH")
	family.HandleFunc("/stocks", handler.SeedStock).Methods("POST")
	family.HandleFunc("/stocks/{ticker}", handler.DeactivateStock).Methods("DELETE")

	return r
}
