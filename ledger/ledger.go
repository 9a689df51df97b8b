// Package ledger holds the posting rules of the expense ledger: every
// operation that moves a savings balance or a credit card's outstanding
// amount runs here, inside a single database transaction.
package ledger

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expense-ledger-go/config"
	"expense-ledger-go/models"
	"expense-ledger-go/utils"
)

type Service struct {
	db    *gorm.DB
	vault *utils.CardVault
	rules config.LedgerRules
}

func NewService(db *gorm.DB, vault *utils.CardVault, rules config.LedgerRules) *Service {
	return &Service{
		db:    db,
		vault: vault,
		rules: rules,
	}
}

// Page limits a list query. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// inTx runs fn as one unit of work. gorm commits when fn returns nil and
// rolls back on error or panic.
func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Lock order inside a unit of work is savings account first, then credit
// card, so a payment and an expense never wait on each other in reverse.

func lockSavingsAccount(tx *gorm.DB, id, userID uint) (*models.SavingsAccount, error) {
	var acct models.SavingsAccount
	q := forUpdate(tx).Where("id = ?", id)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.First(&acct).Error; err != nil {
		return nil, lookupErr(err, "savings account", id)
	}
	return &acct, nil
}

func lockCreditCard(tx *gorm.DB, id, userID uint) (*models.CreditCard, error) {
	var card models.CreditCard
	q := forUpdate(tx).Where("id = ?", id)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.First(&card).Error; err != nil {
		return nil, lookupErr(err, "credit card", id)
	}
	return &card, nil
}

func requireUser(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("user", id)
	}
	return nil
}
