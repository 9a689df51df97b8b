package handlers

import (
	"fmt"
	"net/http"

	"expense-ledger-go/models"
)

func (h *Handlers) CreateDebitCard(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDebitCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.ledger.CreateDebitCard(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "CREATE", "debit_card", card.ID,
		fmt.Sprintf("Issued %s card ****%s on account %d", card.CardType, card.LastFour, card.SavingsAccountID))
	writeJSON(w, http.StatusCreated, card)
}

func (h *Handlers) ListDebitCards(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	userID := q.optUint("user_id")
	isActive := q.optBool("is_active")
	if !q.ok(w) {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	cards, total, err := h.ledger.ListDebitCards(r.Context(), userID, isActive, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: cards, Total: total, Page: pageNum, Limit: limit})
}

func (h *Handlers) GetDebitCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.ledger.GetDebitCard(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handlers) GetDebitCardDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.ledger.GetDebitCardDetails(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handlers) UpdateDebitCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateDebitCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.ledger.UpdateDebitCard(r.Context(), id, req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "UPDATE", "debit_card", card.ID, "Updated card details")
	writeJSON(w, http.StatusOK, card)
}

func (h *Handlers) ActivateDebitCard(w http.ResponseWriter, r *http.Request) {
	h.setDebitCardActive(w, r, true)
}

func (h *Handlers) DeactivateDebitCard(w http.ResponseWriter, r *http.Request) {
	h.setDebitCardActive(w, r, false)
}

func (h *Handlers) setDebitCardActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.ledger.SetDebitCardActive(r.Context(), id, active)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	action := "DEACTIVATE"
	if active {
		action = "ACTIVATE"
	}
	h.logAudit(r, action, "debit_card", card.ID, fmt.Sprintf("Card ****%s is_active=%t", card.LastFour, active))
	writeJSON(w, http.StatusOK, card)
}

func (h *Handlers) DeleteDebitCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteDebitCard(r.Context(), id); err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "DELETE", "debit_card", id, "Deleted debit card")
	w.WriteHeader(http.StatusNoContent)
}
