package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expense-ledger-go/models"
)

func (s *Service) CreateSavingsAccount(ctx context.Context, req models.CreateSavingsAccountRequest) (*models.SavingsAccount, error) {
	if req.CurrentBalance.IsNegative() || req.MinimumBalance.IsNegative() {
		return nil, invalid("balances cannot be negative")
	}
	if err := checkMoney("current balance", req.CurrentBalance); err != nil {
		return nil, err
	}
	if err := checkMoney("minimum balance", req.MinimumBalance); err != nil {
		return nil, err
	}
	if req.InterestRate.IsNegative() || req.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, invalid("interest rate must be between 0 and 100")
	}

	acct := &models.SavingsAccount{
		UserID:         req.UserID,
		AccountName:    strings.TrimSpace(req.AccountName),
		BankName:       strings.TrimSpace(req.BankName),
		AccountNumber:  strings.TrimSpace(req.AccountNumber),
		AccountType:    req.AccountType,
		MinimumBalance: req.MinimumBalance,
		CurrentBalance: req.CurrentBalance,
		InterestRate:   req.InterestRate,
		Tags:           req.Tags,
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := requireUser(tx, req.UserID); err != nil {
			return err
		}
		if err := checkAccountNumberUnique(tx, 0, acct.AccountNumber); err != nil {
			return err
		}
		return writeErr(tx.Create(acct).Error)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Created savings account %d for user %d", acct.ID, acct.UserID)
	return acct, nil
}

func checkAccountNumberUnique(tx *gorm.DB, exceptID uint, number string) error {
	var count int64
	if err := tx.Model(&models.SavingsAccount{}).
		Where("account_number = ? AND id <> ?", number, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: account number %q already exists", ErrDuplicate, number)
	}
	return nil
}

func (s *Service) GetSavingsAccount(ctx context.Context, id uint) (*models.SavingsAccount, error) {
	var acct models.SavingsAccount
	if err := s.db.WithContext(ctx).First(&acct, id).Error; err != nil {
		return nil, lookupErr(err, "savings account", id)
	}
	return &acct, nil
}

func (s *Service) ListSavingsAccounts(ctx context.Context, userID *uint, page Page) ([]models.SavingsAccount, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.SavingsAccount{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []models.SavingsAccount
	if err := page.apply(q.Order("id ASC")).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (s *Service) UpdateSavingsAccount(ctx context.Context, id uint, req models.UpdateSavingsAccountRequest) (*models.SavingsAccount, error) {
	var acct *models.SavingsAccount
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		if acct, err = lockSavingsAccount(tx, id, 0); err != nil {
			return err
		}

		if req.AccountNumber != nil {
			number := strings.TrimSpace(*req.AccountNumber)
			if number != acct.AccountNumber {
				if err := checkAccountNumberUnique(tx, id, number); err != nil {
					return err
				}
				acct.AccountNumber = number
			}
		}
		if req.AccountName != nil {
			acct.AccountName = strings.TrimSpace(*req.AccountName)
		}
		if req.BankName != nil {
			acct.BankName = strings.TrimSpace(*req.BankName)
		}
		if req.AccountType != nil {
			acct.AccountType = *req.AccountType
		}
		if req.MinimumBalance != nil {
			if req.MinimumBalance.IsNegative() {
				return invalid("minimum balance cannot be negative")
			}
			if err := checkMoney("minimum balance", *req.MinimumBalance); err != nil {
				return err
			}
			acct.MinimumBalance = *req.MinimumBalance
		}
		if req.InterestRate != nil {
			acct.InterestRate = *req.InterestRate
		}
		if req.Tags != nil {
			acct.Tags = *req.Tags
		}
		return writeErr(tx.Save(acct).Error)
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// DeleteSavingsAccount removes the account with its transactions and the
// debit cards drawing on it. Expenses and card payments that referenced it
// keep their rows with the references cleared.
func (s *Service) DeleteSavingsAccount(ctx context.Context, id uint) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := lockSavingsAccount(tx, id, 0); err != nil {
			return err
		}

		txns := tx.Model(&models.SavingsTransaction{}).Select("id").Where("savings_account_id = ?", id)
		cards := tx.Model(&models.DebitCard{}).Select("id").Where("savings_account_id = ?", id)

		if err := tx.Model(&models.Expense{}).
			Where("savings_account_id = ? OR savings_transaction_id IN (?)", id, txns).
			Updates(map[string]interface{}{
				"savings_account_id":     nil,
				"savings_transaction_id": nil,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Expense{}).Where("debit_card_id IN (?)", cards).
			Update("debit_card_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CreditCardPayment{}).Where("savings_account_id = ?", id).
			Updates(map[string]interface{}{
				"savings_account_id":     nil,
				"savings_transaction_id": nil,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("savings_account_id = ?", id).Delete(&models.DebitCard{}).Error; err != nil {
			return err
		}
		if err := tx.Where("savings_account_id = ?", id).Delete(&models.SavingsTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SavingsAccount{}, id).Error
	})
	if err != nil {
		return err
	}

	log.Printf("INFO: Deleted savings account %d", id)
	return nil
}

func (s *Service) ListSavingsTransactions(ctx context.Context, accountID uint, page Page) ([]models.SavingsTransaction, int64, error) {
	if _, err := s.GetSavingsAccount(ctx, accountID); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&models.SavingsTransaction{}).Where("savings_account_id = ?", accountID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.SavingsTransaction
	if err := page.apply(q.Order("transaction_date DESC, id DESC")).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// CreateSavingsTransaction records a deposit, withdrawal or other movement
// on an account. Deposits and interest credit the account, every other type
// debits it.
func (s *Service) CreateSavingsTransaction(ctx context.Context, req models.CreateSavingsTransactionRequest) (*models.SavingsTransaction, error) {
	if !req.Type.Valid() {
		return nil, invalid("unknown transaction type %q", req.Type)
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount must be greater than 0")
	}
	if err := checkMoney("amount", req.Amount); err != nil {
		return nil, err
	}
	date := req.TransactionDate
	if date.IsZero() {
		date = time.Now()
	}

	var txn *models.SavingsTransaction
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		acct, err := lockSavingsAccount(tx, req.SavingsAccountID, 0)
		if err != nil {
			return err
		}
		txn, err = s.postSavings(tx, acct, req.Type, req.Amount, date, req.Description, req.Tags)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Savings transaction %d (%s %s) on account %d, balance %s",
		txn.ID, txn.Type, txn.Amount.StringFixed(2), txn.SavingsAccountID, txn.BalanceAfter.StringFixed(2))
	return txn, nil
}

// postSavings moves the locked account by amount in the direction implied by
// typ and records the ledger entry. It must run inside a unit of work.
func (s *Service) postSavings(tx *gorm.DB, acct *models.SavingsAccount, typ models.SavingsTransactionType,
	amount decimal.Decimal, date time.Time, description, tags string) (*models.SavingsTransaction, error) {

	signed := amount
	if !typ.IsCredit() {
		signed = amount.Neg()
	}

	before := acct.CurrentBalance
	after, err := applySavingsDelta(acct, signed, s.rules.EnforceMinimumBalance)
	if err != nil {
		return nil, err
	}
	if err := tx.Model(acct).Update("current_balance", after).Error; err != nil {
		return nil, err
	}

	txn := &models.SavingsTransaction{
		SavingsAccountID: acct.ID,
		Type:             typ,
		Amount:           amount,
		BalanceBefore:    before,
		BalanceAfter:     after,
		TransactionDate:  date.UTC(),
		Reference:        uuid.NewString(),
		Description:      description,
		Tags:             tags,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}
