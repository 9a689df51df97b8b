package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"expense-ledger-go/ledger"
	"expense-ledger-go/models"
)

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req models.CreateExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in, err := ledger.ExpenseInputFromRequest(req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	expense, err := h.ledger.CreateExpense(r.Context(), in)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "POST", "expense", expense.ID,
		fmt.Sprintf("%s expense of %s via %s", expense.Category, expense.Amount.StringFixed(2), expense.PaymentMethod))
	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filter := ledger.ExpenseFilter{
		UserID:    q.optUint("user_id"),
		From:      q.optTime("start_date"),
		To:        q.optTime("end_date"),
		MinAmount: q.optDecimal("min_amount"),
		MaxAmount: q.optDecimal("max_amount"),
	}
	if raw := q.optString("category"); raw != nil {
		category := models.ExpenseCategory(*raw)
		if !category.Valid() {
			q.errors["category"] = fmt.Sprintf("unknown category %q", *raw)
		}
		filter.Category = &category
	}
	if raw := q.optString("payment_method"); raw != nil {
		method := models.PaymentMethod(*raw)
		if !method.Valid() {
			q.errors["payment_method"] = fmt.Sprintf("unknown payment method %q", *raw)
		}
		filter.PaymentMethod = &method
	}
	if !q.ok(w) {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	expenses, total, err := h.ledger.ListExpenses(r.Context(), filter, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: expenses, Total: total, Page: pageNum, Limit: limit})
}

func (h *Handlers) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	expense, err := h.ledger.GetExpense(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (h *Handlers) GetExpenseDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.ledger.GetExpenseDetails(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	expense, err := h.ledger.UpdateExpense(r.Context(), id, req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "UPDATE", "expense", expense.ID, "Updated expense details")
	writeJSON(w, http.StatusOK, expense)
}

// DeleteExpense removes the expense without reversing its balance effect.
// The audit record keeps the link to the ledger entry that stays behind and
// commits together with the delete.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.ledger.DeleteExpense(r.Context(), id, auditEntry(r)); err != nil {
		sendLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetExpenseStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	q := newQueryParams(r)
	from := q.optTime("start_date")
	to := q.optTime("end_date")
	if !q.ok(w) {
		return
	}

	stats, err := h.ledger.GetStatistics(r.Context(), userID, from, to)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	year, yearErr := strconv.Atoi(mux.Vars(r)["year"])
	month, monthErr := strconv.Atoi(mux.Vars(r)["month"])
	if yearErr != nil || monthErr != nil {
		sendError(w, http.StatusBadRequest, "Invalid year or month", nil)
		return
	}

	summary, err := h.ledger.GetMonthlySummary(r.Context(), userID, year, month)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
