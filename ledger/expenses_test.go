package ledger

import (
	"errors"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"expense-ledger-go/models"
)

func (ts *LedgerTestSuite) expense(userID uint, category models.ExpenseCategory, amount string, source PaymentSource, date time.Time) ExpenseInput {
	return ExpenseInput{
		UserID:       userID,
		Category:     category,
		Amount:       d(amount),
		Source:       source,
		ExpenseDate:  date,
		Description:  "test",
		MerchantName: "Store",
	}
}

var jan15 = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func (ts *LedgerTestSuite) TestDebitCardExpenseDebitsLinkedAccount() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "50000", "0")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryShopping, "5000", DebitCardPayment{CardID: card.ID}, jan15))
	require.NoError(ts.T(), err)

	ts.requireDecimal("45000", ts.reloadAccount(acct.ID).CurrentBalance)

	require.NotNil(ts.T(), exp.SavingsTransactionID)
	require.NotNil(ts.T(), exp.DebitCardID)
	assert.Equal(ts.T(), card.ID, *exp.DebitCardID)
	assert.Equal(ts.T(), models.PaymentDebitCard, exp.PaymentMethod)

	var txn models.SavingsTransaction
	require.NoError(ts.T(), ts.db.First(&txn, *exp.SavingsTransactionID).Error)
	assert.Equal(ts.T(), models.SavingsDebitCard, txn.Type)
	ts.requireDecimal("5000", txn.Amount)
	ts.requireDecimal("50000", txn.BalanceBefore)
	ts.requireDecimal("45000", txn.BalanceAfter)
	assert.NotEmpty(ts.T(), txn.Reference)
	assert.Equal(ts.T(), int64(1), ts.count(&models.SavingsTransaction{}, ""))
}

func (ts *LedgerTestSuite) TestDebitCardExpenseInsufficientFundsLeavesNoTrace() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "0")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "1500", DebitCardPayment{CardID: card.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrInsufficientFunds)

	ts.requireDecimal("1000", ts.reloadAccount(acct.ID).CurrentBalance)
	assert.Zero(ts.T(), ts.count(&models.SavingsTransaction{}, ""))
	assert.Zero(ts.T(), ts.count(&models.Expense{}, ""))
}

func (ts *LedgerTestSuite) TestDebitCardExpenseRespectsMinimumBalance() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "500")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "600", DebitCardPayment{CardID: card.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrInsufficientFunds)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "500", DebitCardPayment{CardID: card.ID}, jan15))
	require.NoError(ts.T(), err)
	ts.requireDecimal("500", ts.reloadAccount(acct.ID).CurrentBalance)
}

func (ts *LedgerTestSuite) TestMinimumBalanceCanBeDisabled() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "500")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	lenient := ts.newService(false)
	_, err := lenient.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "600", DebitCardPayment{CardID: card.ID}, jan15))
	require.NoError(ts.T(), err)
	ts.requireDecimal("400", ts.reloadAccount(acct.ID).CurrentBalance)

	_, err = lenient.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "401", DebitCardPayment{CardID: card.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrInsufficientFunds)
}

func (ts *LedgerTestSuite) TestInactiveDebitCardIsRejected() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "0")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	_, err := ts.svc.SetDebitCardActive(ts.ctx, card.ID, false)
	require.NoError(ts.T(), err)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "100", DebitCardPayment{CardID: card.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrValidation)
	ts.requireDecimal("1000", ts.reloadAccount(acct.ID).CurrentBalance)
}

func (ts *LedgerTestSuite) TestCardOfAnotherUserIsNotFound() {
	alice := ts.createUser("alice")
	bob := ts.createUser("bob")
	acct := ts.createAccount(bob.ID, "ACC-B", "1000", "0")
	debit := ts.createDebitCard(bob.ID, acct.ID, "4111111111111111")
	credit := ts.createCreditCard(bob.ID, "5500000000000004", "1000")

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(alice.ID, models.CategoryFood, "10", DebitCardPayment{CardID: debit.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(alice.ID, models.CategoryFood, "10", CreditCardCharge{CardID: credit.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(alice.ID, models.CategoryFood, "10",
		BankTransfer{Via: models.PaymentUPI, AccountID: acct.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(999, models.CategoryFood, "10", CashPayment{}, jan15))
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	assert.Zero(ts.T(), ts.count(&models.Expense{}, ""))
}

func (ts *LedgerTestSuite) TestCreditCardExpenseChargesCard() {
	user := ts.createUser("alice")
	card := ts.createCreditCard(user.ID, "5500000000000004", "100000")

	exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryTravel, "15000", CreditCardCharge{CardID: card.ID}, jan15))
	require.NoError(ts.T(), err)

	reloaded := ts.reloadCard(card.ID)
	ts.requireDecimal("15000", reloaded.OutstandingBalance)
	ts.requireDecimal("85000", reloaded.AvailableCredit)
	ts.requireCardBalanced(reloaded)

	require.NotNil(ts.T(), exp.CreditCardTransactionID)
	var txn models.CreditCardTransaction
	require.NoError(ts.T(), ts.db.First(&txn, *exp.CreditCardTransactionID).Error)
	assert.Equal(ts.T(), models.CardPurchase, txn.Type)
	ts.requireDecimal("15000", txn.Amount)
	ts.requireDecimal("15000", txn.OutstandingAfter)
	assert.Equal(ts.T(), "Store", txn.MerchantName)
}

func (ts *LedgerTestSuite) TestCreditCardExpenseOverLimitLeavesNoTrace() {
	user := ts.createUser("alice")
	card := ts.createCreditCard(user.ID, "5500000000000004", "1000")

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryShopping, "1500", CreditCardCharge{CardID: card.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrCreditLimitExceeded)

	reloaded := ts.reloadCard(card.ID)
	ts.requireDecimal("0", reloaded.OutstandingBalance)
	ts.requireDecimal("1000", reloaded.AvailableCredit)
	assert.Zero(ts.T(), ts.count(&models.CreditCardTransaction{}, ""))
	assert.Zero(ts.T(), ts.count(&models.Expense{}, ""))
}

func (ts *LedgerTestSuite) TestBankTransferExpenseLinksSavingsTransaction() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "2000", "0")

	tests := []struct {
		via  models.PaymentMethod
		want models.SavingsTransactionType
	}{
		{models.PaymentUPI, models.SavingsUPI},
		{models.PaymentNetBanking, models.SavingsNetBanking},
	}
	for _, tt := range tests {
		exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryUtilities, "300",
			BankTransfer{Via: tt.via, AccountID: acct.ID}, jan15))
		require.NoError(ts.T(), err)
		assert.Equal(ts.T(), tt.via, exp.PaymentMethod)
		require.NotNil(ts.T(), exp.SavingsAccountID)
		require.NotNil(ts.T(), exp.SavingsTransactionID)

		var txn models.SavingsTransaction
		require.NoError(ts.T(), ts.db.First(&txn, *exp.SavingsTransactionID).Error)
		assert.Equal(ts.T(), tt.want, txn.Type)
	}
	ts.requireDecimal("1400", ts.reloadAccount(acct.ID).CurrentBalance)
}

func (ts *LedgerTestSuite) TestCashExpenseTouchesNoBalance() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "2000", "0")

	exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "250", CashPayment{}, jan15))
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), models.PaymentCash, exp.PaymentMethod)
	assert.Nil(ts.T(), exp.SavingsTransactionID)
	assert.Nil(ts.T(), exp.CreditCardTransactionID)

	ts.requireDecimal("2000", ts.reloadAccount(acct.ID).CurrentBalance)
	assert.Zero(ts.T(), ts.count(&models.SavingsTransaction{}, ""))
}

func (ts *LedgerTestSuite) TestCreateExpenseRejectsInvalidInput() {
	user := ts.createUser("alice")

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "0", CashPayment{}, jan15))
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, "gadgets", "10", CashPayment{}, jan15))
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "10", nil, jan15))
	assert.ErrorIs(ts.T(), err, ErrValidation)
}

func (ts *LedgerTestSuite) TestDeleteExpenseDoesNotReverseBalances() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "50000", "0")
	debit := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")
	credit := ts.createCreditCard(user.ID, "5500000000000004", "10000")

	e1, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "5000", DebitCardPayment{CardID: debit.ID}, jan15))
	require.NoError(ts.T(), err)
	e2, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "3000", CreditCardCharge{CardID: credit.ID}, jan15))
	require.NoError(ts.T(), err)

	for _, id := range []uint{e1.ID, e2.ID} {
		deleted, err := ts.svc.DeleteExpense(ts.ctx, id, &models.AuditLog{Actor: "api-client"})
		require.NoError(ts.T(), err)
		assert.Equal(ts.T(), id, deleted.ID)
	}

	var audits []models.AuditLog
	require.NoError(ts.T(), ts.db.Order("id").Find(&audits).Error)
	require.Len(ts.T(), audits, 2)
	assert.Equal(ts.T(), "DELETE", audits[0].Action)
	assert.Equal(ts.T(), "expense", audits[0].Resource)
	assert.Equal(ts.T(), e1.ID, audits[0].ResourceID)
	assert.Contains(ts.T(), audits[0].Details, "savings transaction")
	assert.Contains(ts.T(), audits[1].Details, "credit card transaction")

	ts.requireDecimal("45000", ts.reloadAccount(acct.ID).CurrentBalance)
	card := ts.reloadCard(credit.ID)
	ts.requireDecimal("3000", card.OutstandingBalance)
	ts.requireDecimal("7000", card.AvailableCredit)
	assert.Equal(ts.T(), int64(1), ts.count(&models.SavingsTransaction{}, ""))
	assert.Equal(ts.T(), int64(1), ts.count(&models.CreditCardTransaction{}, ""))
	assert.Zero(ts.T(), ts.count(&models.Expense{}, ""))

	_, err = ts.svc.DeleteExpense(ts.ctx, e1.ID, nil)
	assert.ErrorIs(ts.T(), err, ErrNotFound)
}

func (ts *LedgerTestSuite) TestDeleteExpenseRollsBackWhenAuditFails() {
	user := ts.createUser("alice")
	exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "20", CashPayment{}, jan15))
	require.NoError(ts.T(), err)

	require.NoError(ts.T(), ts.db.Callback().Create().Before("gorm:create").
		Register("test:fail_audit", func(db *gorm.DB) {
			if _, ok := db.Statement.Dest.(*models.AuditLog); ok {
				db.AddError(errors.New("audit store unavailable"))
			}
		}))

	_, err = ts.svc.DeleteExpense(ts.ctx, exp.ID, &models.AuditLog{Actor: "api-client"})
	require.Error(ts.T(), err)
	assert.Equal(ts.T(), int64(1), ts.count(&models.Expense{}, ""))
	assert.Zero(ts.T(), ts.count(&models.AuditLog{}, ""))
}

// failExpenseInserts makes every Expense insert fail after the linked ledger
// entry has already been written in the same unit of work.
func (ts *LedgerTestSuite) failExpenseInserts() {
	require.NoError(ts.T(), ts.db.Callback().Create().Before("gorm:create").
		Register("test:fail_expense", func(db *gorm.DB) {
			if _, ok := db.Statement.Dest.(*models.Expense); ok {
				db.AddError(errors.New("expense insert failed"))
			}
		}))
}

func (ts *LedgerTestSuite) TestLateFailureRollsBackSavingsPosting() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "50000", "0")
	card := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")
	ts.failExpenseInserts()

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryShopping, "5000", DebitCardPayment{CardID: card.ID}, jan15))
	require.Error(ts.T(), err)

	_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryShopping, "700", BankTransfer{Via: models.PaymentUPI, AccountID: acct.ID}, jan15))
	require.Error(ts.T(), err)

	ts.requireDecimal("50000", ts.reloadAccount(acct.ID).CurrentBalance)
	assert.Zero(ts.T(), ts.count(&models.SavingsTransaction{}, ""))
	assert.Zero(ts.T(), ts.count(&models.Expense{}, ""))
}

func (ts *LedgerTestSuite) TestLateFailureRollsBackCardCharge() {
	user := ts.createUser("alice")
	card := ts.createCreditCard(user.ID, "5500000000000004", "10000")
	ts.failExpenseInserts()

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryTravel, "3000", CreditCardCharge{CardID: card.ID}, jan15))
	require.Error(ts.T(), err)

	reloaded := ts.reloadCard(card.ID)
	ts.requireDecimal("0", reloaded.OutstandingBalance)
	ts.requireDecimal("10000", reloaded.AvailableCredit)
	assert.Zero(ts.T(), ts.count(&models.CreditCardTransaction{}, ""))
	assert.Zero(ts.T(), ts.count(&models.Expense{}, ""))
}

func (ts *LedgerTestSuite) TestSubCentAmountsAreRejected() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "1000", "0")
	card := ts.createCreditCard(user.ID, "5500000000000004", "100")

	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "0.005", BankTransfer{Via: models.PaymentUPI, AccountID: acct.ID}, jan15))
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.cardTxn(card.ID, models.CardPurchase, "0.005")
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.savingsTxn(acct.ID, models.SavingsWithdrawal, "10.001")
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.cardTxn(card.ID, models.CardPurchase, "10")
	require.NoError(ts.T(), err)
	_, err = ts.pay(card.ID, acct.ID, "5.005")
	assert.ErrorIs(ts.T(), err, ErrValidation)

	_, err = ts.svc.UpdateCreditCard(ts.ctx, card.ID, models.UpdateCreditCardRequest{CreditLimit: ptr(d("150.999"))})
	assert.ErrorIs(ts.T(), err, ErrValidation)

	reloaded := ts.reloadCard(card.ID)
	ts.requireDecimal("10", reloaded.OutstandingBalance)
	ts.requireDecimal("90", reloaded.AvailableCredit)
	ts.requireDecimal("100", reloaded.CreditLimit)
	ts.requireDecimal("1000", ts.reloadAccount(acct.ID).CurrentBalance)

	_, err = ts.cardTxn(card.ID, models.CardPurchase, "0.50")
	require.NoError(ts.T(), err)
	ts.requireCardBalanced(ts.reloadCard(card.ID))
}

func (ts *LedgerTestSuite) TestExpenseDetailsNameTheSource() {
	user := ts.createUser("alice")
	acct := ts.createAccount(user.ID, "ACC-1", "5000", "0")
	debit := ts.createDebitCard(user.ID, acct.ID, "4111111111111111")

	exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "50", DebitCardPayment{CardID: debit.ID}, jan15))
	require.NoError(ts.T(), err)

	details, err := ts.svc.GetExpenseDetails(ts.ctx, exp.ID)
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), debit.CardName, details.CardName)
	assert.Equal(ts.T(), acct.AccountName, details.AccountName)
	assert.Equal(ts.T(), "HDFC", details.BankName)
}

func (ts *LedgerTestSuite) TestListExpensesFilters() {
	user := ts.createUser("alice")
	other := ts.createUser("bob")

	inputs := []ExpenseInput{
		ts.expense(user.ID, models.CategoryFood, "100", CashPayment{}, jan15),
		ts.expense(user.ID, models.CategoryFood, "900", CashPayment{}, jan15.AddDate(0, 0, 1)),
		ts.expense(user.ID, models.CategoryRent, "500", CashPayment{}, jan15.AddDate(0, 1, 0)),
		ts.expense(other.ID, models.CategoryFood, "100", CashPayment{}, jan15),
	}
	for _, in := range inputs {
		_, err := ts.svc.CreateExpense(ts.ctx, in)
		require.NoError(ts.T(), err)
	}

	all, total, err := ts.svc.ListExpenses(ts.ctx, ExpenseFilter{UserID: &user.ID}, Page{})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(3), total)
	require.Len(ts.T(), all, 3)
	assert.Equal(ts.T(), models.CategoryRent, all[0].Category, "newest first")

	food := models.CategoryFood
	_, total, err = ts.svc.ListExpenses(ts.ctx, ExpenseFilter{UserID: &user.ID, Category: &food}, Page{})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(2), total)

	to := jan15.AddDate(0, 0, 2)
	_, total, err = ts.svc.ListExpenses(ts.ctx, ExpenseFilter{UserID: &user.ID, From: &jan15, To: &to}, Page{})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(2), total)

	lo, hi := d("200"), d("600")
	matched, _, err := ts.svc.ListExpenses(ts.ctx, ExpenseFilter{UserID: &user.ID, MinAmount: &lo, MaxAmount: &hi}, Page{})
	require.NoError(ts.T(), err)
	require.Len(ts.T(), matched, 1)
	ts.requireDecimal("500", matched[0].Amount)

	paged, total, err := ts.svc.ListExpenses(ts.ctx, ExpenseFilter{}, Page{Offset: 1, Limit: 2})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(4), total)
	assert.Len(ts.T(), paged, 2)

	_, _, err = ts.svc.ListExpenses(ts.ctx, ExpenseFilter{From: &to, To: &jan15}, Page{})
	assert.ErrorIs(ts.T(), err, ErrValidation)
}

func (ts *LedgerTestSuite) TestUpdateExpenseChangesDescriptiveFieldsOnly() {
	user := ts.createUser("alice")
	exp, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "100", CashPayment{}, jan15))
	require.NoError(ts.T(), err)

	rent := models.CategoryRent
	updated, err := ts.svc.UpdateExpense(ts.ctx, exp.ID, models.UpdateExpenseRequest{
		Category:     &rent,
		MerchantName: ptr("  Landlord "),
	})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), models.CategoryRent, updated.Category)
	assert.Equal(ts.T(), "Landlord", updated.MerchantName)
	assert.Equal(ts.T(), "test", updated.Description)
	ts.requireDecimal("100", updated.Amount)

	bad := models.ExpenseCategory("gadgets")
	_, err = ts.svc.UpdateExpense(ts.ctx, exp.ID, models.UpdateExpenseRequest{Category: &bad})
	assert.ErrorIs(ts.T(), err, ErrValidation)
}
