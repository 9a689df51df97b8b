package models

type PaymentMethod string

const (
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentCash       PaymentMethod = "cash"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "net_banking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentDebitCard, PaymentCreditCard, PaymentCash, PaymentUPI, PaymentNetBanking:
		return true
	}
	return false
}

type ExpenseCategory string

const (
	CategoryFood           ExpenseCategory = "food"
	CategoryTransportation ExpenseCategory = "transportation"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategoryEntertainment  ExpenseCategory = "entertainment"
	CategoryShopping       ExpenseCategory = "shopping"
	CategoryHealthcare     ExpenseCategory = "healthcare"
	CategoryEducation      ExpenseCategory = "education"
	CategoryTravel         ExpenseCategory = "travel"
	CategoryRent           ExpenseCategory = "rent"
	CategoryGroceries      ExpenseCategory = "groceries"
	CategoryOther          ExpenseCategory = "other"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransportation, CategoryUtilities, CategoryEntertainment,
		CategoryShopping, CategoryHealthcare, CategoryEducation, CategoryTravel,
		CategoryRent, CategoryGroceries, CategoryOther:
		return true
	}
	return false
}

type SavingsTransactionType string

const (
	SavingsDeposit           SavingsTransactionType = "deposit"
	SavingsWithdrawal        SavingsTransactionType = "withdrawal"
	SavingsInterest          SavingsTransactionType = "interest"
	SavingsCreditCardPayment SavingsTransactionType = "credit_card_payment"
	SavingsDebitCard         SavingsTransactionType = "debit_card"
	SavingsUPI               SavingsTransactionType = "upi"
	SavingsNetBanking        SavingsTransactionType = "net_banking"
)

// IsCredit reports whether the type adds money to the account. Every other
// valid type takes money out.
func (t SavingsTransactionType) IsCredit() bool {
	return t == SavingsDeposit || t == SavingsInterest
}

func (t SavingsTransactionType) Valid() bool {
	switch t {
	case SavingsDeposit, SavingsWithdrawal, SavingsInterest, SavingsCreditCardPayment,
		SavingsDebitCard, SavingsUPI, SavingsNetBanking:
		return true
	}
	return false
}

type CreditCardTransactionType string

const (
	CardPurchase       CreditCardTransactionType = "purchase"
	CardRefund         CreditCardTransactionType = "refund"
	CardInterestCharge CreditCardTransactionType = "interest_charge"
	CardLateFee        CreditCardTransactionType = "late_fee"
	CardAnnualFee      CreditCardTransactionType = "annual_fee"
)

func (t CreditCardTransactionType) Valid() bool {
	switch t {
	case CardPurchase, CardRefund, CardInterestCharge, CardLateFee, CardAnnualFee:
		return true
	}
	return false
}

type CardPaymentMethod string

const (
	CardPaymentAutoDebit  CardPaymentMethod = "auto_debit"
	CardPaymentManual     CardPaymentMethod = "manual"
	CardPaymentNetBanking CardPaymentMethod = "net_banking"
)

// Card networks. Debit cards accept visa, mastercard and rupay; credit cards
// also accept amex.
const (
	CardTypeVisa       = "visa"
	CardTypeMastercard = "mastercard"
	CardTypeRupay      = "rupay"
	CardTypeAmex       = "amex"
)
