package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"expense-ledger-go/middleware"
)

// NewRouter mounts every endpoint under /api/v1. Health and token issuance
// are public; everything else needs an API key or bearer token, and the
// admin routes need an admin client. CORS and request logging wrap the
// router so preflight and unmatched requests pass through them too.
func NewRouter(h *Handlers, limiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()
	if limiter != nil {
		r.Use(limiter.Limit)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/auth/token", h.IssueToken).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(h.auth.Authenticate)

	// Users
	protected.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	protected.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	protected.HandleFunc("/users/by-email/{email}", h.GetUserByEmail).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id:[0-9]+}", h.UpdateUser).Methods(http.MethodPut)
	protected.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{id:[0-9]+}/summary", h.GetUserSummary).Methods(http.MethodGet)

	// Savings accounts
	protected.HandleFunc("/savings-accounts", h.CreateSavingsAccount).Methods(http.MethodPost)
	protected.HandleFunc("/savings-accounts", h.ListSavingsAccounts).Methods(http.MethodGet)
	protected.HandleFunc("/savings-accounts/transactions", h.CreateSavingsTransaction).Methods(http.MethodPost)
	protected.HandleFunc("/savings-accounts/{id:[0-9]+}", h.GetSavingsAccount).Methods(http.MethodGet)
	protected.HandleFunc("/savings-accounts/{id:[0-9]+}", h.UpdateSavingsAccount).Methods(http.MethodPut)
	protected.HandleFunc("/savings-accounts/{id:[0-9]+}", h.DeleteSavingsAccount).Methods(http.MethodDelete)
	protected.HandleFunc("/savings-accounts/{id:[0-9]+}/transactions", h.ListSavingsTransactions).Methods(http.MethodGet)

	// Debit cards
	protected.HandleFunc("/debit-cards", h.CreateDebitCard).Methods(http.MethodPost)
	protected.HandleFunc("/debit-cards", h.ListDebitCards).Methods(http.MethodGet)
	protected.HandleFunc("/debit-cards/{id:[0-9]+}", h.GetDebitCard).Methods(http.MethodGet)
	protected.HandleFunc("/debit-cards/{id:[0-9]+}/details", h.GetDebitCardDetails).Methods(http.MethodGet)
	protected.HandleFunc("/debit-cards/{id:[0-9]+}", h.UpdateDebitCard).Methods(http.MethodPut)
	protected.HandleFunc("/debit-cards/{id:[0-9]+}", h.DeleteDebitCard).Methods(http.MethodDelete)
	protected.HandleFunc("/debit-cards/{id:[0-9]+}/activate", h.ActivateDebitCard).Methods(http.MethodPost)
	protected.HandleFunc("/debit-cards/{id:[0-9]+}/deactivate", h.DeactivateDebitCard).Methods(http.MethodPost)

	// Credit cards
	protected.HandleFunc("/credit-cards", h.CreateCreditCard).Methods(http.MethodPost)
	protected.HandleFunc("/credit-cards", h.ListCreditCards).Methods(http.MethodGet)
	protected.HandleFunc("/credit-cards/transactions", h.CreateCreditCardTransaction).Methods(http.MethodPost)
	protected.HandleFunc("/credit-cards/payments", h.CreateCreditCardPayment).Methods(http.MethodPost)
	protected.HandleFunc("/credit-cards/{id:[0-9]+}", h.GetCreditCard).Methods(http.MethodGet)
	protected.HandleFunc("/credit-cards/{id:[0-9]+}", h.UpdateCreditCard).Methods(http.MethodPut)
	protected.HandleFunc("/credit-cards/{id:[0-9]+}", h.DeleteCreditCard).Methods(http.MethodDelete)
	protected.HandleFunc("/credit-cards/{id:[0-9]+}/transactions", h.ListCreditCardTransactions).Methods(http.MethodGet)
	protected.HandleFunc("/credit-cards/{id:[0-9]+}/payments", h.ListCreditCardPayments).Methods(http.MethodGet)

	// Expenses
	protected.HandleFunc("/expenses", h.CreateExpense).Methods(http.MethodPost)
	protected.HandleFunc("/expenses", h.ListExpenses).Methods(http.MethodGet)
	protected.HandleFunc("/expenses/statistics/user/{user_id:[0-9]+}", h.GetExpenseStatistics).Methods(http.MethodGet)
	protected.HandleFunc("/expenses/summary/user/{user_id:[0-9]+}/{year:[0-9]{4}}/{month:[0-9]{1,2}}", h.GetMonthlySummary).Methods(http.MethodGet)
	protected.HandleFunc("/expenses/{id:[0-9]+}", h.GetExpense).Methods(http.MethodGet)
	protected.HandleFunc("/expenses/{id:[0-9]+}/details", h.GetExpenseDetails).Methods(http.MethodGet)
	protected.HandleFunc("/expenses/{id:[0-9]+}", h.UpdateExpense).Methods(http.MethodPut)
	protected.HandleFunc("/expenses/{id:[0-9]+}", h.DeleteExpense).Methods(http.MethodDelete)

	// Admin
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnly)
	admin.HandleFunc("/audit-logs", h.GetAuditLogs).Methods(http.MethodGet)

	return middleware.RequestLogger(middleware.CORS(h.config.AllowOrigins)(r))
}
