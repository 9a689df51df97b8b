package handlers

import (
	"fmt"
	"net/http"

	"expense-ledger-go/models"
)

func (h *Handlers) CreateSavingsAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSavingsAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	acct, err := h.ledger.CreateSavingsAccount(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "CREATE", "savings_account", acct.ID,
		fmt.Sprintf("Opened account %s with balance %s", acct.AccountNumber, acct.CurrentBalance.StringFixed(2)))
	writeJSON(w, http.StatusCreated, acct)
}

func (h *Handlers) ListSavingsAccounts(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	userID := q.optUint("user_id")
	if !q.ok(w) {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	accounts, total, err := h.ledger.ListSavingsAccounts(r.Context(), userID, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: accounts, Total: total, Page: pageNum, Limit: limit})
}

func (h *Handlers) GetSavingsAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	acct, err := h.ledger.GetSavingsAccount(r.Context(), id)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handlers) UpdateSavingsAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateSavingsAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	acct, err := h.ledger.UpdateSavingsAccount(r.Context(), id, req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "UPDATE", "savings_account", acct.ID, "Updated account details")
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handlers) DeleteSavingsAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteSavingsAccount(r.Context(), id); err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "DELETE", "savings_account", id, "Deleted account with its transactions and debit cards")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CreateSavingsTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSavingsTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	txn, err := h.ledger.CreateSavingsTransaction(r.Context(), req)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}

	h.logAudit(r, "POST", "savings_transaction", txn.ID,
		fmt.Sprintf("%s of %s on account %d, balance %s", txn.Type, txn.Amount.StringFixed(2),
			txn.SavingsAccountID, txn.BalanceAfter.StringFixed(2)))
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handlers) ListSavingsTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, pageNum, limit := h.pageFromQuery(r)

	txns, total, err := h.ledger.ListSavingsTransactions(r.Context(), id, page)
	if err != nil {
		sendLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: txns, Total: total, Page: pageNum, Limit: limit})
}
