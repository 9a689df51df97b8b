package ledger

import (
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-ledger-go/models"
)

func (ts *LedgerTestSuite) savingsTxn(accountID uint, typ models.SavingsTransactionType, amount string) (*models.SavingsTransaction, error) {
	return ts.svc.CreateSavingsTransaction(ts.ctx, models.CreateSavingsTransactionRequest{
		SavingsAccountID: accountID,
		Type:             typ,
		Amount:           d(amount),
		TransactionDate:  time.Now(),
	})
}

func (ts *LedgerTestSuite) TestSavingsTransactionDirection() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "0")

	tests := []struct {
		typ     models.SavingsTransactionType
		amount  string
		balance string
	}{
		{models.SavingsDeposit, "500", "1500"},
		{models.SavingsInterest, "12.50", "1512.50"},
		{models.SavingsWithdrawal, "200", "1312.50"},
		{models.SavingsUPI, "12.50", "1300"},
		{models.SavingsNetBanking, "100", "1200"},
	}
	for _, tt := range tests {
		txn, err := ts.savingsTxn(acct.ID, tt.typ, tt.amount)
		require.NoError(ts.T(), err, tt.typ)
		ts.requireDecimal(tt.amount, txn.Amount)
		ts.requireDecimal(tt.balance, txn.BalanceAfter)
	}
	ts.requireDecimal("1200", ts.reloadAccount(acct.ID).CurrentBalance)

	txns, total, err := ts.svc.ListSavingsTransactions(ts.ctx, acct.ID, Page{})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(len(tests)), total)
	assert.Equal(ts.T(), models.SavingsNetBanking, txns[0].Type, "newest first")
}

func (ts *LedgerTestSuite) TestSavingsTransactionChecks() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "100")

	_, err := ts.savingsTxn(acct.ID, models.SavingsWithdrawal, "1001")
	assert.ErrorIs(ts.T(), err, ErrInsufficientFunds)

	_, err = ts.savingsTxn(acct.ID, models.SavingsWithdrawal, "901")
	assert.ErrorIs(ts.T(), err, ErrInsufficientFunds)

	_, err = ts.savingsTxn(acct.ID, models.SavingsDeposit, "0")
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.savingsTxn(acct.ID, "transfer", "10")
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.savingsTxn(999, models.SavingsDeposit, "10")
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	ts.requireDecimal("1000", ts.reloadAccount(acct.ID).CurrentBalance)
	assert.Zero(ts.T(), ts.count(&models.SavingsTransaction{}, ""))
}

func (ts *LedgerTestSuite) TestCreateSavingsAccountChecks() {
	user := ts.createUser("alice")
	ts.createAccount(user.ID, "ACC-1", "0", "0")

	req := models.CreateSavingsAccountRequest{
		UserID:        user.ID,
		AccountName:   "Second",
		BankName:      "SBI",
		AccountNumber: "ACC-1",
		AccountType:   "savings",
	}
	_, err := ts.svc.CreateSavingsAccount(ts.ctx, req)
	assert.ErrorIs(ts.T(), err, ErrDuplicate)

	req.AccountNumber = "ACC-2"
	req.CurrentBalance = d("-1")
	_, err = ts.svc.CreateSavingsAccount(ts.ctx, req)
	assert.ErrorIs(ts.T(), err, ErrValidation)

	req.CurrentBalance = d("0")
	req.UserID = 999
	_, err = ts.svc.CreateSavingsAccount(ts.ctx, req)
	assert.ErrorIs(ts.T(), err, ErrNotFound)
}

func (ts *LedgerTestSuite) TestUpdateSavingsAccountPatchesMetadata() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "0")
	ts.createAccount(user.ID, "ACC-2", "0", "0")

	updated, err := ts.svc.UpdateSavingsAccount(ts.ctx, acct.ID, models.UpdateSavingsAccountRequest{
		AccountName:    ptr("Rainy day"),
		MinimumBalance: ptr(d("250")),
	})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), "Rainy day", updated.AccountName)
	ts.requireDecimal("250", updated.MinimumBalance)
	ts.requireDecimal("1000", updated.CurrentBalance)

	_, err = ts.svc.UpdateSavingsAccount(ts.ctx, acct.ID, models.UpdateSavingsAccountRequest{AccountNumber: ptr("ACC-2")})
	assert.ErrorIs(ts.T(), err, ErrDuplicate)

	_, err = ts.svc.UpdateSavingsAccount(ts.ctx, 999, models.UpdateSavingsAccountRequest{})
	assert.ErrorIs(ts.T(), err, ErrNotFound)
}

func (ts *LedgerTestSuite) TestDeleteSavingsAccount() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "5000", "0")
	debit := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")
	credit := ts.createCreditCard(user.ID, "5500000000000004", "10000")

	viaCard, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "100", DebitCardPayment{CardID: debit.ID}, jan15))
	require.NoError(ts.T(), err)
	viaUPI, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "100",
		BankTransfer{Via: models.PaymentUPI, AccountID: acct.ID}, jan15))
	require.NoError(ts.T(), err)
	_, err = ts.cardTxn(credit.ID, models.CardPurchase, "500")
	require.NoError(ts.T(), err)
	payment, err := ts.pay(credit.ID, acct.ID, "500")
	require.NoError(ts.T(), err)

	require.NoError(ts.T(), ts.svc.DeleteSavingsAccount(ts.ctx, acct.ID))

	for _, id := range []uint{viaCard.ID, viaUPI.ID} {
		kept, err := ts.svc.GetExpense(ts.ctx, id)
		require.NoError(ts.T(), err)
		assert.Nil(ts.T(), kept.SavingsAccountID)
		assert.Nil(ts.T(), kept.SavingsTransactionID)
		assert.Nil(ts.T(), kept.DebitCardID)
	}

	var keptPayment models.CreditCardPayment
	require.NoError(ts.T(), ts.db.First(&keptPayment, payment.ID).Error)
	assert.Nil(ts.T(), keptPayment.SavingsAccountID)
	assert.Nil(ts.T(), keptPayment.SavingsTransactionID)

	assert.Zero(ts.T(), ts.count(&models.DebitCard{}, ""))
	assert.Zero(ts.T(), ts.count(&models.SavingsTransaction{}, ""))
	_, err = ts.svc.GetSavingsAccount(ts.ctx, acct.ID)
	assert.ErrorIs(ts.T(), err, ErrNotFound)
}

func (ts *LedgerTestSuite) TestDebitCardLifecycle() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "5000", "0")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	assert.True(ts.T(), card.IsActive)
	assert.Equal(ts.T(), "1111", card.LastFour)

	details, err := ts.svc.GetDebitCardDetails(ts.ctx, card.ID)
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), "HDFC", details.BankName)
	ts.requireDecimal("5000", details.CurrentBalance)

	_, err = ts.svc.CreateDebitCard(ts.ctx, models.CreateDebitCardRequest{
		UserID: user.ID, SavingsAccountID: acct.ID, CardName: "Dup", CardNumber: "4111111111111111", CardType: models.CardTypeVisa,
	})
	assert.ErrorIs(ts.T(), err, ErrDuplicate)

	_, err = ts.svc.CreateDebitCard(ts.ctx, models.CreateDebitCardRequest{
		UserID: user.ID, SavingsAccountID: acct.ID, CardName: "Amex", CardNumber: "371449635398431", CardType: models.CardTypeAmex,
	})
	assert.ErrorIs(ts.T(), err, ErrValidation)

	bob := ts.createUser("bob")
	_, err = ts.svc.CreateDebitCard(ts.ctx, models.CreateDebitCardRequest{
		UserID: bob.ID, SavingsAccountID: acct.ID, CardName: "Borrowed", CardNumber: "4000056655665556", CardType: models.CardTypeVisa,
	})
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	off, err := ts.svc.SetDebitCardActive(ts.ctx, card.ID, false)
	require.NoError(ts.T(), err)
	assert.False(ts.T(), off.IsActive)

	inactive := false
	cards, total, err := ts.svc.ListDebitCards(ts.ctx, &user.ID, &inactive, Page{})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(1), total)
	assert.Len(ts.T(), cards, 1)

	on, err := ts.svc.SetDebitCardActive(ts.ctx, card.ID, true)
	require.NoError(ts.T(), err)
	assert.True(ts.T(), on.IsActive)

	require.NoError(ts.T(), ts.svc.DeleteDebitCard(ts.ctx, card.ID))
	_, err = ts.svc.GetDebitCard(ts.ctx, card.ID)
	assert.ErrorIs(ts.T(), err, ErrNotFound)
	assert.ErrorIs(ts.T(), ts.svc.DeleteDebitCard(ts.ctx, card.ID), ErrNotFound)
}
