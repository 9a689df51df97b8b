package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SavingsAccount struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"not null;index"`
	User           *User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AccountName    string          `json:"account_name" gorm:"not null"`
	BankName       string          `json:"bank_name" gorm:"not null"`
	AccountNumber  string          `json:"account_number" gorm:"uniqueIndex;not null"`
	AccountType    string          `json:"account_type" gorm:"not null"`
	MinimumBalance decimal.Decimal `json:"minimum_balance" gorm:"type:decimal(15,2);not null;check:chk_savings_min_balance,minimum_balance >= 0"`
	CurrentBalance decimal.Decimal `json:"current_balance" gorm:"type:decimal(15,2);not null;check:chk_savings_balance,current_balance >= 0"`
	InterestRate   decimal.Decimal `json:"interest_rate" gorm:"type:decimal(5,2);not null"`
	Tags           string          `json:"tags"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type SavingsTransaction struct {
	ID               uint                   `json:"id" gorm:"primaryKey"`
	SavingsAccountID uint                   `json:"savings_account_id" gorm:"not null;index"`
	SavingsAccount   *SavingsAccount        `json:"-" gorm:"foreignKey:SavingsAccountID;constraint:OnDelete:CASCADE"`
	Type             SavingsTransactionType `json:"transaction_type" gorm:"column:transaction_type;type:varchar(32);not null"`
	Amount           decimal.Decimal        `json:"amount" gorm:"type:decimal(15,2);not null;check:chk_savings_txn_amount,amount > 0"`
	BalanceBefore    decimal.Decimal        `json:"balance_before" gorm:"type:decimal(15,2);not null"`
	BalanceAfter     decimal.Decimal        `json:"balance_after" gorm:"type:decimal(15,2);not null"`
	TransactionDate  time.Time              `json:"transaction_date" gorm:"not null;index"`
	Reference        string                 `json:"reference" gorm:"uniqueIndex;not null"`
	Description      string                 `json:"description"`
	Tags             string                 `json:"tags"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

type CreateSavingsAccountRequest struct {
	UserID         uint            `json:"user_id" validate:"required,gt=0"`
	AccountName    string          `json:"account_name" validate:"required,min=1,max=100"`
	BankName       string          `json:"bank_name" validate:"required,min=1,max=100"`
	AccountNumber  string          `json:"account_number" validate:"required,min=1,max=50"`
	AccountType    string          `json:"account_type" validate:"required"`
	MinimumBalance decimal.Decimal `json:"minimum_balance" validate:"gte=0"`
	CurrentBalance decimal.Decimal `json:"current_balance" validate:"gte=0"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	Tags           string          `json:"tags"`
}

// UpdateSavingsAccountRequest patches metadata only. The balance moves
// exclusively through savings transactions.
type UpdateSavingsAccountRequest struct {
	AccountName    *string          `json:"account_name" validate:"omitempty,min=1,max=100"`
	BankName       *string          `json:"bank_name" validate:"omitempty,min=1,max=100"`
	AccountNumber  *string          `json:"account_number" validate:"omitempty,min=1,max=50"`
	AccountType    *string          `json:"account_type" validate:"omitempty,min=1"`
	MinimumBalance *decimal.Decimal `json:"minimum_balance" validate:"omitempty,gte=0"`
	InterestRate   *decimal.Decimal `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	Tags           *string          `json:"tags"`
}

type CreateSavingsTransactionRequest struct {
	SavingsAccountID uint                   `json:"savings_account_id" validate:"required,gt=0"`
	Type             SavingsTransactionType `json:"transaction_type" validate:"required,oneof=deposit withdrawal interest credit_card_payment debit_card upi net_banking"`
	Amount           decimal.Decimal        `json:"amount" validate:"gt=0"`
	TransactionDate  time.Time              `json:"transaction_date" validate:"required"`
	Description      string                 `json:"description"`
	Tags             string                 `json:"tags"`
}
