package ledger

import (
	"expense-ledger-go/models"
)

// PaymentSource is how an expense was paid. The set of implementations is
// closed; each carries only the reference its method needs.
type PaymentSource interface {
	Method() models.PaymentMethod
	isPaymentSource()
}

// DebitCardPayment draws on the savings account linked to the card.
type DebitCardPayment struct {
	CardID uint
}

// CreditCardCharge posts a purchase to the card.
type CreditCardCharge struct {
	CardID uint
}

// BankTransfer draws directly on a savings account by UPI or net banking.
type BankTransfer struct {
	Via       models.PaymentMethod
	AccountID uint
}

// CashPayment touches no account.
type CashPayment struct{}

func (DebitCardPayment) Method() models.PaymentMethod { return models.PaymentDebitCard }
func (CreditCardCharge) Method() models.PaymentMethod { return models.PaymentCreditCard }
func (b BankTransfer) Method() models.PaymentMethod   { return b.Via }
func (CashPayment) Method() models.PaymentMethod      { return models.PaymentCash }

func (DebitCardPayment) isPaymentSource() {}
func (CreditCardCharge) isPaymentSource() {}
func (BankTransfer) isPaymentSource()     {}
func (CashPayment) isPaymentSource()      {}

// NewPaymentSource builds the variant for method from the optional
// references. Exactly the reference the method needs must be present.
func NewPaymentSource(method models.PaymentMethod, debitCardID, creditCardID, savingsAccountID *uint) (PaymentSource, error) {
	set := func(id *uint) bool { return id != nil }

	switch method {
	case models.PaymentDebitCard:
		if !set(debitCardID) || set(creditCardID) || set(savingsAccountID) {
			return nil, invalid("debit_card requires debit_card_id and no other reference")
		}
		return DebitCardPayment{CardID: *debitCardID}, nil
	case models.PaymentCreditCard:
		if !set(creditCardID) || set(debitCardID) || set(savingsAccountID) {
			return nil, invalid("credit_card requires credit_card_id and no other reference")
		}
		return CreditCardCharge{CardID: *creditCardID}, nil
	case models.PaymentUPI, models.PaymentNetBanking:
		if !set(savingsAccountID) || set(debitCardID) || set(creditCardID) {
			return nil, invalid("%s requires savings_account_id and no other reference", method)
		}
		return BankTransfer{Via: method, AccountID: *savingsAccountID}, nil
	case models.PaymentCash:
		if set(debitCardID) || set(creditCardID) || set(savingsAccountID) {
			return nil, invalid("cash takes no card or account reference")
		}
		return CashPayment{}, nil
	}
	return nil, invalid("unknown payment method %q", method)
}
