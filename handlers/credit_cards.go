package handlers

import (
	"fmt"
	"net/http"

	"expense-ledger-go/models"
)

func (h *Handlers) CreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCreditCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.ledger.CreateCreditCard(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "CREATE", "credit_card", card.ID,
		fmt.Sprintf("Issued %s card ****%s with limit %s", card.CardType, card.LastFour, card.CreditLimit.StringFixed(2)))
	writeJSON(w, http.StatusCreated, card)
}

func (h *Handlers) ListCreditCards(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	userID := q.optUint("user_id")
	isActive := q.optBool("is_active")
	if !q.ok(w) {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	cards, total, err := h.ledger.ListCreditCards(r.Context(), userID, isActive, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: cards, Total: total, Page: pageNum, Limit: limit})
}

func (h *Handlers) GetCreditCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.ledger.GetCreditCard(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handlers) UpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateCreditCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	before, err := h.ledger.GetCreditCard(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	card, err := h.ledger.UpdateCreditCard(r.Context(), id, req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	details := "Updated card details"
	if !before.CreditLimit.Equal(card.CreditLimit) {
		details = fmt.Sprintf("Credit limit %s -> %s, available %s",
			before.CreditLimit.StringFixed(2), card.CreditLimit.StringFixed(2), card.AvailableCredit.StringFixed(2))
	}
	h.logAudit(r, "UPDATE", "credit_card", card.ID, details)
	writeJSON(w, http.StatusOK, card)
}

func (h *Handlers) DeleteCreditCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteCreditCard(r.Context(), id); err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "DELETE", "credit_card", id, "Deleted credit card with its transactions and payments")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CreateCreditCardTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCreditCardTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	txn, err := h.ledger.CreateCreditCardTransaction(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "POST", "credit_card_transaction", txn.ID,
		fmt.Sprintf("%s of %s on card %d, outstanding %s", txn.Type, txn.Amount.StringFixed(2),
			txn.CreditCardID, txn.OutstandingAfter.StringFixed(2)))
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handlers) ListCreditCardTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	txns, total, err := h.ledger.ListCreditCardTransactions(r.Context(), id, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: txns, Total: total, Page: pageNum, Limit: limit})
}

func (h *Handlers) CreateCreditCardPayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCreditCardPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	payment, err := h.ledger.CreatePayment(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "POST", "credit_card_payment", payment.ID,
		fmt.Sprintf("Paid %s to card %d from account %d, outstanding %s", payment.PaymentAmount.StringFixed(2),
			payment.CreditCardID, req.SavingsAccountID, payment.OutstandingAfter.StringFixed(2)))
	writeJSON(w, http.StatusCreated, payment)
}

func (h *Handlers) ListCreditCardPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	payments, total, err := h.ledger.ListCreditCardPayments(r.Context(), id, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: payments, Total: total, Page: pageNum, Limit: limit})
}
