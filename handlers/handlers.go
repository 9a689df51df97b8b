package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expense-ledger-go/config"
	"expense-ledger-go/ledger"
	"expense-ledger-go/middleware"
	"expense-ledger-go/models"
	"expense-ledger-go/utils"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func sendError(w http.ResponseWriter, status int, err string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:    status,
		Error:     err,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListResponse wraps one page of a list endpoint.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

type Handlers struct {
	db     *gorm.DB
	config *config.Config
	ledger *ledger.Service
	auth   *middleware.Authenticator
	tokens *utils.TokenIssuer
}

func NewHandlers(db *gorm.DB, cfg *config.Config, svc *ledger.Service, auth *middleware.Authenticator, tokens *utils.TokenIssuer) *Handlers {
	return &Handlers{
		db:     db,
		config: cfg,
		ledger: svc,
		auth:   auth,
		tokens: tokens,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"service":   "expense-ledger-go",
		"version":   "1.0.0",
	})
}

// sendLedgerError maps service errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without internals.
func sendLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		sendError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		sendError(w, http.StatusUnprocessableEntity, "Insufficient funds", err.Error())
	case errors.Is(err, ledger.ErrCreditLimitExceeded):
		sendError(w, http.StatusUnprocessableEntity, "Credit limit exceeded", err.Error())
	case errors.Is(err, ledger.ErrPaymentExceedsOutstanding):
		sendError(w, http.StatusUnprocessableEntity, "Payment exceeds outstanding balance", err.Error())
	case errors.Is(err, ledger.ErrValidation):
		sendError(w, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, ledger.ErrDuplicate):
		sendError(w, http.StatusConflict, "Duplicate record", err.Error())
	default:
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		sendError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// decodeAndValidate reads a JSON body into dst and runs the validator. It
// writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		sendError(w, http.StatusBadRequest, "Validation failed", utils.FormatValidationError(err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		sendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name), nil)
		return 0, false
	}
	return uint(id), true
}

// pageFromQuery reads page (1-based) and limit, clamped to the configured
// page sizes.
func (h *Handlers) pageFromQuery(r *http.Request) (ledger.Page, int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = h.config.Ledger.DefaultPageSize
	}
	if limit > h.config.Ledger.MaxPageSize {
		limit = h.config.Ledger.MaxPageSize
	}
	return ledger.Page{Offset: (page - 1) * limit, Limit: limit}, page, limit
}

// queryParams parses optional query parameters and collects the ones that
// are malformed.
type queryParams struct {
	r      *http.Request
	errors map[string]string
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{r: r, errors: map[string]string{}}
}

func (q *queryParams) optUint(name string) *uint {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		q.errors[name] = fmt.Sprintf("%s must be a positive integer", name)
		return nil
	}
	id := uint(v)
	return &id
}

func (q *queryParams) optBool(name string) *bool {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.errors[name] = fmt.Sprintf("%s must be true or false", name)
		return nil
	}
	return &v
}

// optTime accepts RFC 3339 timestamps or plain dates.
func (q *queryParams) optTime(name string) *time.Time {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	q.errors[name] = fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name)
	return nil
}

func (q *queryParams) optDecimal(name string) *decimal.Decimal {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		q.errors[name] = fmt.Sprintf("%s must be a number", name)
		return nil
	}
	return &v
}

func (q *queryParams) optString(name string) *string {
	raw := strings.TrimSpace(q.r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// ok writes a 400 listing every malformed parameter when there are any.
func (q *queryParams) ok(w http.ResponseWriter) bool {
	if len(q.errors) == 0 {
		return true
	}
	sendError(w, http.StatusBadRequest, "Invalid query parameters", q.errors)
	return false
}

// auditEntry starts an audit record carrying who made the request.
func auditEntry(r *http.Request) *models.AuditLog {
	actor := "anonymous"
	if client := middleware.GetClientFromContext(r); client != nil {
		actor = client.Name
	}
	return &models.AuditLog{
		Actor:     actor,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func (h *Handlers) logAudit(r *http.Request, action, resource string, resourceID uint, details string) {
	audit := auditEntry(r)
	audit.Action = action
	audit.Resource = resource
	audit.ResourceID = resourceID
	audit.Details = details
	if err := h.db.WithContext(r.Context()).Create(audit).Error; err != nil {
		log.Printf("WARN: Failed to write audit log for %s %s %d: %v", action, resource, resourceID, err)
	}
}
