package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
}

// UserSummary is a user together with counts of what they own and the sum of
// their savings balances.
type UserSummary struct {
	User
	TotalSavingsAccounts int64           `json:"total_savings_accounts"`
	TotalDebitCards      int64           `json:"total_debit_cards"`
	TotalCreditCards     int64           `json:"total_credit_cards"`
	TotalExpenses        int64           `json:"total_expenses"`
	TotalBalance         decimal.Decimal `json:"total_balance"`
}
