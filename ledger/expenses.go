package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expense-ledger-go/models"
)

// ExpenseInput is a validated expense ready for posting.
type ExpenseInput struct {
	UserID       uint
	Category     models.ExpenseCategory
	Amount       decimal.Decimal
	Source       PaymentSource
	ExpenseDate  time.Time
	Description  string
	MerchantName string
	Tags         string
}

// ExpenseInputFromRequest resolves the payment source of req.
func ExpenseInputFromRequest(req models.CreateExpenseRequest) (ExpenseInput, error) {
	source, err := NewPaymentSource(req.PaymentMethod, req.DebitCardID, req.CreditCardID, req.SavingsAccountID)
	if err != nil {
		return ExpenseInput{}, err
	}
	in := ExpenseInput{
		UserID:       req.UserID,
		Category:     req.Category,
		Amount:       req.Amount,
		Source:       source,
		Description:  req.Description,
		MerchantName: req.MerchantName,
		Tags:         req.Tags,
	}
	if req.ExpenseDate != nil {
		in.ExpenseDate = *req.ExpenseDate
	}
	return in, nil
}

func (in ExpenseInput) validate() error {
	if in.UserID == 0 {
		return invalid("user_id is required")
	}
	if !in.Category.Valid() {
		return invalid("unknown category %q", in.Category)
	}
	if !in.Amount.IsPositive() {
		return invalid("amount must be greater than 0")
	}
	if err := checkMoney("amount", in.Amount); err != nil {
		return err
	}
	if in.Source == nil {
		return invalid("payment source is required")
	}
	return nil
}

func (in ExpenseInput) ledgerDescription() string {
	if in.Description == "" {
		return fmt.Sprintf("Expense: %s", in.Category)
	}
	return fmt.Sprintf("Expense: %s - %s", in.Category, in.Description)
}

// CreateExpense records an expense and posts its balance effect to the card
// or account it was paid from. The generated ledger entry is written first
// and the expense row points back at it.
func (s *Service) CreateExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.ExpenseDate.IsZero() {
		in.ExpenseDate = time.Now()
	}

	expense := &models.Expense{
		UserID:        in.UserID,
		Category:      in.Category,
		Amount:        in.Amount,
		PaymentMethod: in.Source.Method(),
		ExpenseDate:   in.ExpenseDate.UTC(),
		Description:   in.Description,
		MerchantName:  in.MerchantName,
		Tags:          in.Tags,
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := requireUser(tx, in.UserID); err != nil {
			return err
		}

		var err error
		switch src := in.Source.(type) {
		case DebitCardPayment:
			err = s.postDebitCardExpense(tx, in, src, expense)
		case CreditCardCharge:
			err = s.postCreditCardExpense(tx, in, src, expense)
		case BankTransfer:
			err = s.postBankTransferExpense(tx, in, src, expense)
		case CashPayment:
		default:
			err = invalid("unsupported payment source %T", src)
		}
		if err != nil {
			return err
		}
		return tx.Create(expense).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Created expense %d for user %d: %s %s via %s",
		expense.ID, expense.UserID, expense.Category, expense.Amount.StringFixed(2), expense.PaymentMethod)
	return expense, nil
}

func (s *Service) postDebitCardExpense(tx *gorm.DB, in ExpenseInput, src DebitCardPayment, expense *models.Expense) error {
	var card models.DebitCard
	if err := tx.Where("id = ? AND user_id = ?", src.CardID, in.UserID).First(&card).Error; err != nil {
		return lookupErr(err, "debit card", src.CardID)
	}
	if !card.IsActive {
		return invalid("debit card %d is not active", card.ID)
	}

	acct, err := lockSavingsAccount(tx, card.SavingsAccountID, 0)
	if err != nil {
		return err
	}
	txn, err := s.postSavings(tx, acct, models.SavingsDebitCard, in.Amount, in.ExpenseDate, in.ledgerDescription(), in.Tags)
	if err != nil {
		return err
	}

	expense.DebitCardID = &card.ID
	expense.SavingsTransactionID = &txn.ID
	return nil
}

func (s *Service) postCreditCardExpense(tx *gorm.DB, in ExpenseInput, src CreditCardCharge, expense *models.Expense) error {
	card, err := lockCreditCard(tx, src.CardID, in.UserID)
	if err != nil {
		return err
	}
	if !card.IsActive {
		return invalid("credit card %d is not active", card.ID)
	}

	txn, err := postCardTransaction(tx, card, models.CardPurchase, in.Amount, in.ExpenseDate,
		in.ledgerDescription(), in.MerchantName, in.Tags)
	if err != nil {
		return err
	}

	expense.CreditCardID = &card.ID
	expense.CreditCardTransactionID = &txn.ID
	return nil
}

func (s *Service) postBankTransferExpense(tx *gorm.DB, in ExpenseInput, src BankTransfer, expense *models.Expense) error {
	acct, err := lockSavingsAccount(tx, src.AccountID, in.UserID)
	if err != nil {
		return err
	}

	typ := models.SavingsUPI
	if src.Via == models.PaymentNetBanking {
		typ = models.SavingsNetBanking
	}
	txn, err := s.postSavings(tx, acct, typ, in.Amount, in.ExpenseDate, in.ledgerDescription(), in.Tags)
	if err != nil {
		return err
	}

	expense.SavingsAccountID = &acct.ID
	expense.SavingsTransactionID = &txn.ID
	return nil
}

func (s *Service) GetExpense(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).First(&expense, id).Error; err != nil {
		return nil, lookupErr(err, "expense", id)
	}
	return &expense, nil
}

// GetExpenseDetails adds the card and account names the expense was paid
// with.
func (s *Service) GetExpenseDetails(ctx context.Context, id uint) (*models.ExpenseDetails, error) {
	var expense models.Expense
	err := s.db.WithContext(ctx).
		Preload("DebitCard.SavingsAccount").
		Preload("CreditCard").
		Preload("SavingsAccount").
		First(&expense, id).Error
	if err != nil {
		return nil, lookupErr(err, "expense", id)
	}

	details := &models.ExpenseDetails{Expense: expense}
	switch {
	case expense.DebitCard != nil:
		details.CardName = expense.DebitCard.CardName
		if acct := expense.DebitCard.SavingsAccount; acct != nil {
			details.AccountName = acct.AccountName
			details.BankName = acct.BankName
		}
	case expense.CreditCard != nil:
		details.CardName = expense.CreditCard.CardName
	case expense.SavingsAccount != nil:
		details.AccountName = expense.SavingsAccount.AccountName
		details.BankName = expense.SavingsAccount.BankName
	}
	return details, nil
}

type ExpenseFilter struct {
	UserID        *uint
	Category      *models.ExpenseCategory
	PaymentMethod *models.PaymentMethod
	From          *time.Time
	To            *time.Time
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

func (f ExpenseFilter) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *f.PaymentMethod)
	}
	if f.From != nil {
		q = q.Where("expense_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("expense_date <= ?", f.To.UTC())
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// ListExpenses returns matching expenses, newest first.
func (s *Service) ListExpenses(ctx context.Context, filter ExpenseFilter, page Page) ([]models.Expense, int64, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, invalid("start date is after end date")
	}

	q := filter.apply(s.db.WithContext(ctx).Model(&models.Expense{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenses []models.Expense
	if err := page.apply(q.Order("expense_date DESC, id DESC")).Find(&expenses).Error; err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// UpdateExpense changes descriptive fields only. Amount and payment source
// are fixed once posted.
func (s *Service) UpdateExpense(ctx context.Context, id uint, req models.UpdateExpenseRequest) (*models.Expense, error) {
	var expense models.Expense
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&expense, id).Error; err != nil {
			return lookupErr(err, "expense", id)
		}
		if req.Category != nil {
			if !req.Category.Valid() {
				return invalid("unknown category %q", *req.Category)
			}
			expense.Category = *req.Category
		}
		if req.Description != nil {
			expense.Description = strings.TrimSpace(*req.Description)
		}
		if req.MerchantName != nil {
			expense.MerchantName = strings.TrimSpace(*req.MerchantName)
		}
		if req.Tags != nil {
			expense.Tags = *req.Tags
		}
		return tx.Save(&expense).Error
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteExpense removes the expense row only. Balances moved when it was
// posted stay as they are, and the linked ledger entry is kept. When audit
// is non-nil it is completed and written in the same unit of work, so the
// delete never commits without its audit record.
func (s *Service) DeleteExpense(ctx context.Context, id uint, audit *models.AuditLog) (*models.Expense, error) {
	var expense models.Expense
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&expense, id).Error; err != nil {
			return lookupErr(err, "expense", id)
		}
		if err := tx.Delete(&models.Expense{}, id).Error; err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		audit.Action = "DELETE"
		audit.Resource = "expense"
		audit.ResourceID = id
		audit.Details = deletedExpenseDetails(&expense)
		return tx.Create(audit).Error
	})
	if err != nil {
		return nil, err
	}

	if expense.SavingsTransactionID != nil || expense.CreditCardTransactionID != nil {
		log.Printf("WARN: Deleted expense %d without reversing its posting (savings txn %s, card txn %s)",
			id, refString(expense.SavingsTransactionID), refString(expense.CreditCardTransactionID))
	}
	return &expense, nil
}

func deletedExpenseDetails(expense *models.Expense) string {
	details := fmt.Sprintf("Deleted %s expense of %s via %s", expense.Category, expense.Amount.StringFixed(2), expense.PaymentMethod)
	switch {
	case expense.SavingsTransactionID != nil:
		details += fmt.Sprintf("; savings transaction %d not reversed", *expense.SavingsTransactionID)
	case expense.CreditCardTransactionID != nil:
		details += fmt.Sprintf("; credit card transaction %d not reversed", *expense.CreditCardTransactionID)
	}
	return details
}

func refString(id *uint) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprint(*id)
}
