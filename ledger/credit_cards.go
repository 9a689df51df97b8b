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

var defaultMinimumPaymentPercentage = decimal.NewFromInt(5)

func (s *Service) CreateCreditCard(ctx context.Context, req models.CreateCreditCardRequest) (*models.CreditCard, error) {
	switch req.CardType {
	case models.CardTypeVisa, models.CardTypeMastercard, models.CardTypeRupay, models.CardTypeAmex:
	default:
		return nil, invalid("unsupported credit card type %q", req.CardType)
	}
	if !req.CreditLimit.IsPositive() {
		return nil, invalid("credit limit must be greater than 0")
	}
	if err := checkMoney("credit limit", req.CreditLimit); err != nil {
		return nil, err
	}
	if req.BillingCycleDay < 1 || req.BillingCycleDay > 31 || req.PaymentDueDay < 1 || req.PaymentDueDay > 31 {
		return nil, invalid("billing and due days must be between 1 and 31")
	}
	if req.PaymentDueDay <= req.BillingCycleDay {
		return nil, invalid("payment due day must be after billing cycle day")
	}

	sealed, fingerprint, lastFour, err := s.sealCardNumber(req.CardNumber)
	if err != nil {
		return nil, err
	}

	minPayment := defaultMinimumPaymentPercentage
	if req.MinimumPaymentPercentage != nil {
		minPayment = *req.MinimumPaymentPercentage
	}

	card := &models.CreditCard{
		UserID:                   req.UserID,
		CardName:                 strings.TrimSpace(req.CardName),
		CardNumber:               sealed,
		CardFingerprint:          fingerprint,
		LastFour:                 lastFour,
		CardType:                 req.CardType,
		CreditLimit:              req.CreditLimit,
		AvailableCredit:          req.CreditLimit,
		OutstandingBalance:       decimal.Zero,
		BillingCycleDay:          req.BillingCycleDay,
		PaymentDueDay:            req.PaymentDueDay,
		InterestRate:             req.InterestRate,
		MinimumPaymentPercentage: minPayment,
		ExpiryDate:               req.ExpiryDate,
		IsActive:                 req.IsActive == nil || *req.IsActive,
		Tags:                     req.Tags,
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := requireUser(tx, req.UserID); err != nil {
			return err
		}
		if err := checkFingerprintUnique(tx, &models.CreditCard{}, fingerprint); err != nil {
			return err
		}
		return writeErr(tx.Create(card).Error)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Created credit card %d (****%s) for user %d, limit %s",
		card.ID, card.LastFour, card.UserID, card.CreditLimit.StringFixed(2))
	return card, nil
}

func (s *Service) GetCreditCard(ctx context.Context, id uint) (*models.CreditCard, error) {
	var card models.CreditCard
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, lookupErr(err, "credit card", id)
	}
	return &card, nil
}

func (s *Service) ListCreditCards(ctx context.Context, userID *uint, isActive *bool, page Page) ([]models.CreditCard, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.CreditCard{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cards []models.CreditCard
	if err := page.apply(q.Order("id ASC")).Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// UpdateCreditCard patches card metadata. A new credit limit shifts available
// credit by the difference and is refused when it would fall below what is
// already outstanding.
func (s *Service) UpdateCreditCard(ctx context.Context, id uint, req models.UpdateCreditCardRequest) (*models.CreditCard, error) {
	var card *models.CreditCard
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		if card, err = lockCreditCard(tx, id, 0); err != nil {
			return err
		}

		if req.CreditLimit != nil && !req.CreditLimit.Equal(card.CreditLimit) {
			if err := changeCreditLimit(card, *req.CreditLimit); err != nil {
				return err
			}
		}
		if req.CardName != nil {
			card.CardName = strings.TrimSpace(*req.CardName)
		}
		if req.InterestRate != nil {
			card.InterestRate = *req.InterestRate
		}
		if req.MinimumPaymentPercentage != nil {
			card.MinimumPaymentPercentage = *req.MinimumPaymentPercentage
		}
		if req.ExpiryDate != nil {
			card.ExpiryDate = req.ExpiryDate
		}
		if req.IsActive != nil {
			card.IsActive = *req.IsActive
		}
		if req.Tags != nil {
			card.Tags = *req.Tags
		}
		return tx.Save(card).Error
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func changeCreditLimit(card *models.CreditCard, limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return invalid("credit limit must be greater than 0")
	}
	if err := checkMoney("credit limit", limit); err != nil {
		return err
	}
	available := card.AvailableCredit.Add(limit.Sub(card.CreditLimit))
	if available.IsNegative() {
		return fmt.Errorf("%w: new limit %s is below outstanding balance %s",
			ErrCreditLimitExceeded, limit.StringFixed(2), card.OutstandingBalance.StringFixed(2))
	}

	log.Printf("INFO: Credit card %d limit %s -> %s", card.ID, card.CreditLimit.StringFixed(2), limit.StringFixed(2))
	card.CreditLimit = limit
	card.AvailableCredit = available
	return nil
}

// DeleteCreditCard removes the card with its transactions and payments.
// Expenses charged to it keep their rows and lose the card references.
func (s *Service) DeleteCreditCard(ctx context.Context, id uint) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := lockCreditCard(tx, id, 0); err != nil {
			return err
		}
		if err := tx.Model(&models.Expense{}).Where("credit_card_id = ?", id).
			Updates(map[string]interface{}{
				"credit_card_id":             nil,
				"credit_card_transaction_id": nil,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("credit_card_id = ?", id).Delete(&models.CreditCardPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("credit_card_id = ?", id).Delete(&models.CreditCardTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CreditCard{}, id).Error
	})
	if err != nil {
		return err
	}

	log.Printf("INFO: Deleted credit card %d", id)
	return nil
}

// CreateCreditCardTransaction posts a purchase, refund, fee or interest
// charge. Refunds given as positive amounts are stored negative; every other
// type must be positive. Every type is held to the available credit.
func (s *Service) CreateCreditCardTransaction(ctx context.Context, req models.CreateCreditCardTransactionRequest) (*models.CreditCardTransaction, error) {
	if !req.Type.Valid() {
		return nil, invalid("unknown transaction type %q", req.Type)
	}
	if req.Amount.IsZero() {
		return nil, invalid("amount cannot be zero")
	}
	if req.Type != models.CardRefund && req.Amount.IsNegative() {
		return nil, invalid("%s amount must be greater than 0", req.Type)
	}
	if err := checkMoney("amount", req.Amount); err != nil {
		return nil, err
	}

	amount := req.Amount
	if req.Type == models.CardRefund && amount.IsPositive() {
		amount = amount.Neg()
	}

	var txn *models.CreditCardTransaction
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		card, err := lockCreditCard(tx, req.CreditCardID, 0)
		if err != nil {
			return err
		}
		txn, err = postCardTransaction(tx, card, req.Type, amount, time.Now(), req.Description, req.MerchantName, req.Tags)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Credit card transaction %d (%s %s) on card %d, outstanding %s",
		txn.ID, txn.Type, txn.Amount.StringFixed(2), txn.CreditCardID, txn.OutstandingAfter.StringFixed(2))
	return txn, nil
}

// postCardTransaction charges signed to the locked card and records the
// entry. It must run inside a unit of work.
func postCardTransaction(tx *gorm.DB, card *models.CreditCard, typ models.CreditCardTransactionType,
	signed decimal.Decimal, date time.Time, description, merchant, tags string) (*models.CreditCardTransaction, error) {

	outstanding, available, err := applyCreditCardDelta(card, signed)
	if err != nil {
		return nil, err
	}
	if err := tx.Model(card).Updates(map[string]interface{}{
		"outstanding_balance": outstanding,
		"available_credit":    available,
	}).Error; err != nil {
		return nil, err
	}

	txn := &models.CreditCardTransaction{
		CreditCardID:     card.ID,
		Type:             typ,
		Amount:           signed,
		OutstandingAfter: outstanding,
		TransactionDate:  date.UTC(),
		Description:      description,
		MerchantName:     merchant,
		Tags:             tags,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// CreatePayment pays down a card from a savings account owned by the same
// user. The savings debit, the payment row and the card update commit
// together.
func (s *Service) CreatePayment(ctx context.Context, req models.CreateCreditCardPaymentRequest) (*models.CreditCardPayment, error) {
	if !req.PaymentAmount.IsPositive() {
		return nil, invalid("payment amount must be greater than 0")
	}
	if err := checkMoney("payment amount", req.PaymentAmount); err != nil {
		return nil, err
	}
	method := req.PaymentMethod
	if method == "" {
		method = models.CardPaymentManual
	}
	switch method {
	case models.CardPaymentAutoDebit, models.CardPaymentManual, models.CardPaymentNetBanking:
	default:
		return nil, invalid("unknown payment method %q", method)
	}

	amount := req.PaymentAmount
	now := time.Now()

	var payment *models.CreditCardPayment
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		acct, err := lockSavingsAccount(tx, req.SavingsAccountID, 0)
		if err != nil {
			return err
		}
		card, err := lockCreditCard(tx, req.CreditCardID, 0)
		if err != nil {
			return err
		}
		if acct.UserID != card.UserID {
			return fmt.Errorf("%w: savings account %d does not belong to the owner of credit card %d",
				ErrNotFound, acct.ID, card.ID)
		}

		if acct.CurrentBalance.LessThan(amount) {
			return fmt.Errorf("%w: available %s, required %s",
				ErrInsufficientFunds, acct.CurrentBalance.StringFixed(2), amount.StringFixed(2))
		}
		if amount.GreaterThan(card.OutstandingBalance) {
			return fmt.Errorf("%w: payment %s, outstanding %s",
				ErrPaymentExceedsOutstanding, amount.StringFixed(2), card.OutstandingBalance.StringFixed(2))
		}

		description := req.Description
		if description == "" {
			description = fmt.Sprintf("Credit card payment - %s", card.CardName)
		}

		savingsTxn, err := s.postSavings(tx, acct, models.SavingsCreditCardPayment, amount, now, description, "")
		if err != nil {
			return err
		}

		before := card.OutstandingBalance
		outstanding, available, err := applyCreditCardDelta(card, amount.Neg())
		if err != nil {
			return err
		}
		if err := tx.Model(card).Updates(map[string]interface{}{
			"outstanding_balance": outstanding,
			"available_credit":    available,
		}).Error; err != nil {
			return err
		}

		accountID := acct.ID
		payment = &models.CreditCardPayment{
			CreditCardID:      card.ID,
			SavingsAccountID:  &accountID,
			PaymentAmount:     amount,
			OutstandingBefore: before,
			OutstandingAfter:  outstanding,
			PaymentDate:       now.UTC(),
			PaymentMethod:     method,
			Description:       description,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		payment.SavingsTransactionID = &savingsTxn.ID
		return tx.Model(payment).Update("savings_transaction_id", savingsTxn.ID).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Payment %d of %s to credit card %d from account %d, outstanding %s",
		payment.ID, amount.StringFixed(2), payment.CreditCardID, req.SavingsAccountID, payment.OutstandingAfter.StringFixed(2))
	return payment, nil
}

func (s *Service) ListCreditCardTransactions(ctx context.Context, cardID uint, page Page) ([]models.CreditCardTransaction, int64, error) {
	if _, err := s.GetCreditCard(ctx, cardID); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&models.CreditCardTransaction{}).Where("credit_card_id = ?", cardID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.CreditCardTransaction
	if err := page.apply(q.Order("transaction_date DESC, id DESC")).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func (s *Service) ListCreditCardPayments(ctx context.Context, cardID uint, page Page) ([]models.CreditCardPayment, int64, error) {
	if _, err := s.GetCreditCard(ctx, cardID); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&models.CreditCardPayment{}).Where("credit_card_id = ?", cardID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.CreditCardPayment
	if err := page.apply(q.Order("payment_date DESC, id DESC")).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
