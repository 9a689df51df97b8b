package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"expense-ledger-go/models"
)

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.ledger.CreateUser(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "CREATE", "user", user.ID, fmt.Sprintf("Created user %s", user.Email))
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	isActive := q.optBool("is_active")
	if !q.ok(w) {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	users, total, err := h.ledger.ListUsers(r.Context(), isActive, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: users, Total: total, Page: pageNum, Limit: limit})
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.ledger.GetUser(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.ledger.GetUserByEmail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.ledger.GetUserSummary(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.ledger.UpdateUser(r.Context(), id, req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "UPDATE", "user", user.ID, "Updated user profile")
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteUser(r.Context(), id); err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "DELETE", "user", id, "Deleted user and all owned records")
	w.WriteHeader(http.StatusNoContent)
}
