package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"expense-ledger-go/models"
)

// moneyPlaces is the scale of every money column.
const moneyPlaces = 2

// checkMoney rejects amounts finer than a cent. Trailing zeros are fine.
func checkMoney(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(moneyPlaces)) {
		return invalid("%s %s has more than %d decimal places", field, amount.String(), moneyPlaces)
	}
	return nil
}

// applySavingsDelta adds signed to the account balance. A debit may not take
// the balance below zero, nor below the account minimum when enforceMinimum
// is set. The account is only modified on success.
func applySavingsDelta(acct *models.SavingsAccount, signed decimal.Decimal, enforceMinimum bool) (decimal.Decimal, error) {
	next := acct.CurrentBalance.Add(signed)
	if signed.IsNegative() {
		if next.IsNegative() {
			return acct.CurrentBalance, fmt.Errorf("%w: available %s, required %s",
				ErrInsufficientFunds, acct.CurrentBalance.StringFixed(2), signed.Neg().StringFixed(2))
		}
		if enforceMinimum && next.LessThan(acct.MinimumBalance) {
			return acct.CurrentBalance, fmt.Errorf("%w: balance %s would fall below minimum balance %s",
				ErrInsufficientFunds, next.StringFixed(2), acct.MinimumBalance.StringFixed(2))
		}
	}
	acct.CurrentBalance = next
	return next, nil
}

// applyCreditCardDelta charges signed to the card: outstanding grows by it
// and available credit shrinks by it. Refunds and payments arrive negative.
func applyCreditCardDelta(card *models.CreditCard, signed decimal.Decimal) (outstanding, available decimal.Decimal, err error) {
	outstanding = card.OutstandingBalance.Add(signed)
	available = card.AvailableCredit.Sub(signed)

	if available.IsNegative() {
		return card.OutstandingBalance, card.AvailableCredit, fmt.Errorf("%w: available %s, required %s",
			ErrCreditLimitExceeded, card.AvailableCredit.StringFixed(2), signed.StringFixed(2))
	}
	if outstanding.IsNegative() {
		return card.OutstandingBalance, card.AvailableCredit, invalid("credit of %s exceeds outstanding balance %s",
			signed.Neg().StringFixed(2), card.OutstandingBalance.StringFixed(2))
	}

	card.OutstandingBalance = outstanding
	card.AvailableCredit = available
	return outstanding, available, nil
}
