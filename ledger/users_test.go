package ledger

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-ledger-go/models"
)

func (ts *LedgerTestSuite) TestCreateUserRejectsDuplicates() {
	user := ts.createUser("alice")
	assert.True(ts.T(), user.IsActive)
	assert.Equal(ts.T(), "alice@example.com", user.Email)

	_, err := ts.svc.CreateUser(ts.ctx, models.CreateUserRequest{Name: "alice", Email: "other@example.com"})
	assert.ErrorIs(ts.T(), err, ErrDuplicate)

	_, err = ts.svc.CreateUser(ts.ctx, models.CreateUserRequest{Name: "alice2", Email: "ALICE@example.com"})
	assert.ErrorIs(ts.T(), err, ErrDuplicate)

	_, err = ts.svc.CreateUser(ts.ctx, models.CreateUserRequest{Name: "  ", Email: "blank@example.com"})
	assert.ErrorIs(ts.T(), err, ErrValidation)
}

func (ts *LedgerTestSuite) TestUserLookupAndUpdate() {
	alice := ts.createUser("alice")
	ts.createUser("bob")

	found, err := ts.svc.GetUserByEmail(ts.ctx, "Alice@Example.com")
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), alice.ID, found.ID)

	_, err = ts.svc.GetUserByEmail(ts.ctx, "nobody@example.com")
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	_, err = ts.svc.UpdateUser(ts.ctx, alice.ID, models.UpdateUserRequest{Name: ptr("bob")})
	assert.ErrorIs(ts.T(), err, ErrDuplicate)

	updated, err := ts.svc.UpdateUser(ts.ctx, alice.ID, models.UpdateUserRequest{
		Name:     ptr("alice"),
		IsActive: ptr(false),
	})
	require.NoError(ts.T(), err)
	assert.False(ts.T(), updated.IsActive)

	inactive := false
	users, total, err := ts.svc.ListUsers(ts.ctx, &inactive, Page{})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(1), total)
	require.Len(ts.T(), users, 1)
	assert.Equal(ts.T(), alice.ID, users[0].ID)

	_, total, err = ts.svc.ListUsers(ts.ctx, nil, Page{Limit: 1})
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(2), total)

	_, err = ts.svc.UpdateUser(ts.ctx, 999, models.UpdateUserRequest{})
	assert.ErrorIs(ts.T(), err, ErrNotFound)
}

func (ts *LedgerTestSuite) TestUserSummary() {
	user := ts.createUser("alice")
	a1 := ts.createAccount(user.ID, "ACC-1", "1000.25", "0")
	ts.createAccount(user.ID, "ACC-2", "500", "0")
	ts.createDebitCard(user.ID, a1.ID, "4111111111111111")
	ts.createCreditCard(user.ID, "5500000000000004", "1000")
	_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "10", CashPayment{}, jan15))
	require.NoError(ts.T(), err)

	summary, err := ts.svc.GetUserSummary(ts.ctx, user.ID)
	require.NoError(ts.T(), err)
	assert.Equal(ts.T(), int64(2), summary.TotalSavingsAccounts)
	assert.Equal(ts.T(), int64(1), summary.TotalDebitCards)
	assert.Equal(ts.T(), int64(1), summary.TotalCreditCards)
	assert.Equal(ts.T(), int64(1), summary.TotalExpenses)
	ts.requireDecimal("1500.25", summary.TotalBalance)

	_, err = ts.svc.GetUserSummary(ts.ctx, 999)
	assert.ErrorIs(ts.T(), err, ErrNotFound)
}

func (ts *LedgerTestSuite) TestDeleteUserRemovesEverythingOwned() {
	alice := ts.createUser("alice")
	bob := ts.createUser("bob")

	for _, user := range []*models.User{alice, bob} {
		prefix := user.Name
		acct := ts.createAccount(user.ID, prefix+"-ACC", "10000", "0")
		number := "4111111111111111"
		credit := "5500000000000004"
		if user == bob {
			number, credit = "4000056655665556", "5105105105105100"
		}
		debit := ts.createDebitCard(user.ID, acct.ID, number)
		card := ts.createCreditCard(user.ID, credit, "5000")

		_, err := ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "100", DebitCardPayment{CardID: debit.ID}, jan15))
		require.NoError(ts.T(), err)
		_, err = ts.svc.CreateExpense(ts.ctx, ts.expense(user.ID, models.CategoryFood, "200", CreditCardCharge{CardID: card.ID}, jan15))
		require.NoError(ts.T(), err)
		_, err = ts.pay(card.ID, acct.ID, "200")
		require.NoError(ts.T(), err)
	}

	require.NoError(ts.T(), ts.svc.DeleteUser(ts.ctx, alice.ID))

	_, err := ts.svc.GetUser(ts.ctx, alice.ID)
	assert.ErrorIs(ts.T(), err, ErrNotFound)

	assert.Equal(ts.T(), int64(1), ts.count(&models.SavingsAccount{}, ""))
	assert.Equal(ts.T(), int64(1), ts.count(&models.DebitCard{}, ""))
	assert.Equal(ts.T(), int64(1), ts.count(&models.CreditCard{}, ""))
	assert.Equal(ts.T(), int64(2), ts.count(&models.Expense{}, ""))
	assert.Equal(ts.T(), int64(2), ts.count(&models.SavingsTransaction{}, ""))
	assert.Equal(ts.T(), int64(1), ts.count(&models.CreditCardTransaction{}, ""))
	assert.Equal(ts.T(), int64(1), ts.count(&models.CreditCardPayment{}, ""))
	assert.Zero(ts.T(), ts.count(&models.Expense{}, "user_id = ?", alice.ID))

	assert.ErrorIs(ts.T(), ts.svc.DeleteUser(ts.ctx, alice.ID), ErrNotFound)
}
