package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense records money spent. Which of DebitCardID, CreditCardID and
// SavingsAccountID is set follows from PaymentMethod; the transaction ids
// point at the ledger entry the expense generated, if any.
type Expense struct {
	ID                      uint                   `json:"id" gorm:"primaryKey"`
	UserID                  uint                   `json:"user_id" gorm:"not null;index"`
	User                    *User                  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SavingsAccountID        *uint                  `json:"savings_account_id" gorm:"index"`
	SavingsAccount          *SavingsAccount        `json:"-" gorm:"foreignKey:SavingsAccountID;constraint:OnDelete:SET NULL"`
	DebitCardID             *uint                  `json:"debit_card_id" gorm:"index"`
	DebitCard               *DebitCard             `json:"-" gorm:"foreignKey:DebitCardID;constraint:OnDelete:SET NULL"`
	CreditCardID            *uint                  `json:"credit_card_id" gorm:"index"`
	CreditCard              *CreditCard            `json:"-" gorm:"foreignKey:CreditCardID;constraint:OnDelete:SET NULL"`
	CreditCardTransactionID *uint                  `json:"credit_card_transaction_id" gorm:"index"`
	CreditCardTransaction   *CreditCardTransaction `json:"-" gorm:"foreignKey:CreditCardTransactionID;constraint:OnDelete:SET NULL"`
	SavingsTransactionID    *uint                  `json:"savings_transaction_id" gorm:"index"`
	SavingsTransaction      *SavingsTransaction    `json:"-" gorm:"foreignKey:SavingsTransactionID;constraint:OnDelete:SET NULL"`
	Category                ExpenseCategory        `json:"category" gorm:"type:varchar(32);not null;index"`
	Amount                  decimal.Decimal        `json:"amount" gorm:"type:decimal(15,2);not null;check:chk_expense_amount,amount > 0"`
	PaymentMethod           PaymentMethod          `json:"payment_method" gorm:"type:varchar(32);not null"`
	ExpenseDate             time.Time              `json:"expense_date" gorm:"not null;index"`
	Description             string                 `json:"description"`
	MerchantName            string                 `json:"merchant_name"`
	Tags                    string                 `json:"tags"`
	CreatedAt               time.Time              `json:"created_at"`
	UpdatedAt               time.Time              `json:"updated_at"`
}

type ExpenseDetails struct {
	Expense
	CardName    string `json:"card_name,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	BankName    string `json:"bank_name,omitempty"`
}

// CreateExpenseRequest is checked by a struct-level rule as well: the card
// or account reference must match PaymentMethod.
type CreateExpenseRequest struct {
	UserID           uint            `json:"user_id" validate:"required,gt=0"`
	Category         ExpenseCategory `json:"category" validate:"required,oneof=food transportation utilities entertainment shopping healthcare education travel rent groceries other"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod    PaymentMethod   `json:"payment_method" validate:"required,oneof=debit_card credit_card cash upi net_banking"`
	DebitCardID      *uint           `json:"debit_card_id" validate:"omitempty,gt=0"`
	CreditCardID     *uint           `json:"credit_card_id" validate:"omitempty,gt=0"`
	SavingsAccountID *uint           `json:"savings_account_id" validate:"omitempty,gt=0"`
	ExpenseDate      *time.Time      `json:"expense_date"`
	Description      string          `json:"description"`
	MerchantName     string          `json:"merchant_name"`
	Tags             string          `json:"tags"`
}

type UpdateExpenseRequest struct {
	Category     *ExpenseCategory `json:"category" validate:"omitempty,oneof=food transportation utilities entertainment shopping healthcare education travel rent groceries other"`
	Description  *string          `json:"description"`
	MerchantName *string          `json:"merchant_name"`
	Tags         *string          `json:"tags"`
}

type ExpenseStatistics struct {
	TotalExpenses   int                        `json:"total_expenses"`
	TotalAmount     decimal.Decimal            `json:"total_amount"`
	ByCategory      map[string]decimal.Decimal `json:"by_category"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	AverageExpense  decimal.Decimal            `json:"average_expense"`
	DateRange       map[string]time.Time       `json:"date_range"`
}

type ExpenseSummary struct {
	Period       string          `json:"period"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ExpenseCount int             `json:"expense_count"`
	TopCategory  *string         `json:"top_category"`
	TopMerchant  *string         `json:"top_merchant"`
}
