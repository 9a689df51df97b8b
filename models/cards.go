package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card numbers never leave the server in clear text. CardNumber holds the
// encrypted value, CardFingerprint a keyed hash used for uniqueness.
type DebitCard struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	UserID           uint            `json:"user_id" gorm:"not null;index"`
	User             *User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SavingsAccountID uint            `json:"savings_account_id" gorm:"not null;index"`
	SavingsAccount   *SavingsAccount `json:"-" gorm:"foreignKey:SavingsAccountID;constraint:OnDelete:CASCADE"`
	CardName         string          `json:"card_name" gorm:"not null"`
	CardNumber       string          `json:"-" gorm:"not null"`
	CardFingerprint  string          `json:"-" gorm:"uniqueIndex;not null"`
	LastFour         string          `json:"last_four" gorm:"size:4;not null"`
	CardType         string          `json:"card_type" gorm:"not null"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	IsActive         bool            `json:"is_active" gorm:"not null"`
	Tags             string          `json:"tags"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type DebitCardDetails struct {
	DebitCard
	AccountName    string          `json:"account_name"`
	BankName       string          `json:"bank_name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

type CreditCard struct {
	ID                       uint            `json:"id" gorm:"primaryKey"`
	UserID                   uint            `json:"user_id" gorm:"not null;index"`
	User                     *User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CardName                 string          `json:"card_name" gorm:"not null"`
	CardNumber               string          `json:"-" gorm:"not null"`
	CardFingerprint          string          `json:"-" gorm:"uniqueIndex;not null"`
	LastFour                 string          `json:"last_four" gorm:"size:4;not null"`
	CardType                 string          `json:"card_type" gorm:"not null"`
	CreditLimit              decimal.Decimal `json:"credit_limit" gorm:"type:decimal(15,2);not null;check:chk_credit_limit,credit_limit > 0"`
	AvailableCredit          decimal.Decimal `json:"available_credit" gorm:"type:decimal(15,2);not null;check:chk_available_credit,available_credit >= 0 AND available_credit <= credit_limit"`
	OutstandingBalance       decimal.Decimal `json:"outstanding_balance" gorm:"type:decimal(15,2);not null;check:chk_outstanding,outstanding_balance >= 0"`
	BillingCycleDay          int             `json:"billing_cycle_day" gorm:"not null;check:chk_billing_day,billing_cycle_day >= 1 AND billing_cycle_day <= 31"`
	PaymentDueDay            int             `json:"payment_due_day" gorm:"not null;check:chk_due_day,payment_due_day >= 1 AND payment_due_day <= 31"`
	InterestRate             decimal.Decimal `json:"interest_rate" gorm:"type:decimal(5,2);not null"`
	MinimumPaymentPercentage decimal.Decimal `json:"minimum_payment_percentage" gorm:"type:decimal(5,2);not null"`
	ExpiryDate               *time.Time      `json:"expiry_date"`
	IsActive                 bool            `json:"is_active" gorm:"not null"`
	Tags                     string          `json:"tags"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

type CreditCardTransaction struct {
	ID               uint                      `json:"id" gorm:"primaryKey"`
	CreditCardID     uint                      `json:"credit_card_id" gorm:"not null;index"`
	CreditCard       *CreditCard               `json:"-" gorm:"foreignKey:CreditCardID;constraint:OnDelete:CASCADE"`
	Type             CreditCardTransactionType `json:"transaction_type" gorm:"column:transaction_type;type:varchar(32);not null"`
	Amount           decimal.Decimal           `json:"amount" gorm:"type:decimal(15,2);not null;check:chk_card_txn_amount,amount <> 0"`
	OutstandingAfter decimal.Decimal           `json:"outstanding_after" gorm:"type:decimal(15,2);not null"`
	TransactionDate  time.Time                 `json:"transaction_date" gorm:"not null;index"`
	Description      string                    `json:"description"`
	MerchantName     string                    `json:"merchant_name"`
	Tags             string                    `json:"tags"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

type CreditCardPayment struct {
	ID                   uint                `json:"id" gorm:"primaryKey"`
	CreditCardID         uint                `json:"credit_card_id" gorm:"not null;index"`
	CreditCard           *CreditCard         `json:"-" gorm:"foreignKey:CreditCardID;constraint:OnDelete:CASCADE"`
	SavingsAccountID     *uint               `json:"savings_account_id" gorm:"index"`
	SavingsAccount       *SavingsAccount     `json:"-" gorm:"foreignKey:SavingsAccountID;constraint:OnDelete:SET NULL"`
	SavingsTransactionID *uint               `json:"savings_transaction_id" gorm:"index"`
	SavingsTransaction   *SavingsTransaction `json:"-" gorm:"foreignKey:SavingsTransactionID;constraint:OnDelete:SET NULL"`
	PaymentAmount        decimal.Decimal     `json:"payment_amount" gorm:"type:decimal(15,2);not null;check:chk_payment_amount,payment_amount > 0"`
	OutstandingBefore    decimal.Decimal     `json:"outstanding_before" gorm:"type:decimal(15,2);not null"`
	OutstandingAfter     decimal.Decimal     `json:"outstanding_after" gorm:"type:decimal(15,2);not null"`
	PaymentDate          time.Time           `json:"payment_date" gorm:"not null;index"`
	PaymentMethod        CardPaymentMethod   `json:"payment_method" gorm:"type:varchar(32);not null"`
	Description          string              `json:"description"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type CreateDebitCardRequest struct {
	UserID           uint       `json:"user_id" validate:"required,gt=0"`
	SavingsAccountID uint       `json:"savings_account_id" validate:"required,gt=0"`
	CardName         string     `json:"card_name" validate:"required,min=1,max=100"`
	CardNumber       string     `json:"card_number" validate:"required,numeric,min=13,max=19"`
	CardType         string     `json:"card_type" validate:"required,oneof=visa mastercard rupay"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	IsActive         *bool      `json:"is_active"`
	Tags             string     `json:"tags"`
}

type UpdateDebitCardRequest struct {
	CardName   *string    `json:"card_name" validate:"omitempty,min=1,max=100"`
	ExpiryDate *time.Time `json:"expiry_date"`
	IsActive   *bool      `json:"is_active"`
	Tags       *string    `json:"tags"`
}

type CreateCreditCardRequest struct {
	UserID                   uint             `json:"user_id" validate:"required,gt=0"`
	CardName                 string           `json:"card_name" validate:"required,min=1,max=100"`
	CardNumber               string           `json:"card_number" validate:"required,numeric,min=13,max=19"`
	CardType                 string           `json:"card_type" validate:"required,oneof=visa mastercard rupay amex"`
	CreditLimit              decimal.Decimal  `json:"credit_limit" validate:"gt=0"`
	BillingCycleDay          int              `json:"billing_cycle_day" validate:"required,min=1,max=31"`
	PaymentDueDay            int              `json:"payment_due_day" validate:"required,min=1,max=31,gtfield=BillingCycleDay"`
	InterestRate             decimal.Decimal  `json:"interest_rate" validate:"gte=0,lte=100"`
	MinimumPaymentPercentage *decimal.Decimal `json:"minimum_payment_percentage" validate:"omitempty,gte=0,lte=100"`
	ExpiryDate               *time.Time       `json:"expiry_date"`
	IsActive                 *bool            `json:"is_active"`
	Tags                     string           `json:"tags"`
}

// UpdateCreditCardRequest patches metadata. A new CreditLimit goes through
// the limit-change path which also moves available credit.
type UpdateCreditCardRequest struct {
	CardName                 *string          `json:"card_name" validate:"omitempty,min=1,max=100"`
	CreditLimit              *decimal.Decimal `json:"credit_limit" validate:"omitempty,gt=0"`
	InterestRate             *decimal.Decimal `json:"interest_rate" validate:"omitempty,gte=0,lte=100"`
	MinimumPaymentPercentage *decimal.Decimal `json:"minimum_payment_percentage" validate:"omitempty,gte=0,lte=100"`
	ExpiryDate               *time.Time       `json:"expiry_date"`
	IsActive                 *bool            `json:"is_active"`
	Tags                     *string          `json:"tags"`
}

type CreateCreditCardTransactionRequest struct {
	CreditCardID uint                      `json:"credit_card_id" validate:"required,gt=0"`
	Type         CreditCardTransactionType `json:"transaction_type" validate:"required,oneof=purchase refund interest_charge late_fee annual_fee"`
	Amount       decimal.Decimal           `json:"amount" validate:"ne=0"`
	Description  string                    `json:"description"`
	MerchantName string                    `json:"merchant_name"`
	Tags         string                    `json:"tags"`
}

type CreateCreditCardPaymentRequest struct {
	CreditCardID     uint              `json:"credit_card_id" validate:"required,gt=0"`
	SavingsAccountID uint              `json:"savings_account_id" validate:"required,gt=0"`
	PaymentAmount    decimal.Decimal   `json:"payment_amount" validate:"gt=0"`
	PaymentMethod    CardPaymentMethod `json:"payment_method" validate:"required,oneof=auto_debit manual net_banking"`
	Description      string            `json:"description"`
}
