package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"expense-ledger-go/models"
	"expense-ledger-go/utils"
)

// sealCardNumber returns the encrypted number, its fingerprint and the last
// four digits.
func (s *Service) sealCardNumber(number string) (sealed, fingerprint, lastFour string, err error) {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if number == "" {
		return "", "", "", invalid("card number is required")
	}
	if sealed, err = s.vault.Encrypt(number); err != nil {
		return "", "", "", fmt.Errorf("failed to encrypt card number: %w", err)
	}
	if fingerprint, err = s.vault.Fingerprint(number); err != nil {
		return "", "", "", err
	}
	return sealed, fingerprint, utils.LastFour(number), nil
}

func checkFingerprintUnique(tx *gorm.DB, model interface{}, fingerprint string) error {
	var count int64
	if err := tx.Model(model).Where("card_fingerprint = ?", fingerprint).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: card number already registered", ErrDuplicate)
	}
	return nil
}

func (s *Service) CreateDebitCard(ctx context.Context, req models.CreateDebitCardRequest) (*models.DebitCard, error) {
	switch req.CardType {
	case models.CardTypeVisa, models.CardTypeMastercard, models.CardTypeRupay:
	default:
		return nil, invalid("unsupported debit card type %q", req.CardType)
	}

	sealed, fingerprint, lastFour, err := s.sealCardNumber(req.CardNumber)
	if err != nil {
		return nil, err
	}

	card := &models.DebitCard{
		UserID:           req.UserID,
		SavingsAccountID: req.SavingsAccountID,
		CardName:         strings.TrimSpace(req.CardName),
		CardNumber:       sealed,
		CardFingerprint:  fingerprint,
		LastFour:         lastFour,
		CardType:         req.CardType,
		ExpiryDate:       req.ExpiryDate,
		IsActive:         req.IsActive == nil || *req.IsActive,
		Tags:             req.Tags,
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := requireUser(tx, req.UserID); err != nil {
			return err
		}
		var acct models.SavingsAccount
		if err := tx.Where("id = ? AND user_id = ?", req.SavingsAccountID, req.UserID).First(&acct).Error; err != nil {
			return lookupErr(err, "savings account", req.SavingsAccountID)
		}
		if err := checkFingerprintUnique(tx, &models.DebitCard{}, fingerprint); err != nil {
			return err
		}
		return writeErr(tx.Create(card).Error)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Created debit card %d (****%s) on account %d", card.ID, card.LastFour, card.SavingsAccountID)
	return card, nil
}

func (s *Service) GetDebitCard(ctx context.Context, id uint) (*models.DebitCard, error) {
	var card models.DebitCard
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, lookupErr(err, "debit card", id)
	}
	return &card, nil
}

func (s *Service) GetDebitCardDetails(ctx context.Context, id uint) (*models.DebitCardDetails, error) {
	var card models.DebitCard
	if err := s.db.WithContext(ctx).Preload("SavingsAccount").First(&card, id).Error; err != nil {
		return nil, lookupErr(err, "debit card", id)
	}

	details := &models.DebitCardDetails{DebitCard: card}
	if card.SavingsAccount != nil {
		details.AccountName = card.SavingsAccount.AccountName
		details.BankName = card.SavingsAccount.BankName
		details.CurrentBalance = card.SavingsAccount.CurrentBalance
	}
	return details, nil
}

func (s *Service) ListDebitCards(ctx context.Context, userID *uint, isActive *bool, page Page) ([]models.DebitCard, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.DebitCard{})
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

	var cards []models.DebitCard
	if err := page.apply(q.Order("id ASC")).Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (s *Service) UpdateDebitCard(ctx context.Context, id uint, req models.UpdateDebitCardRequest) (*models.DebitCard, error) {
	var card models.DebitCard
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&card, id).Error; err != nil {
			return lookupErr(err, "debit card", id)
		}
		if req.CardName != nil {
			card.CardName = strings.TrimSpace(*req.CardName)
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
		return tx.Save(&card).Error
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// SetDebitCardActive activates or deactivates a card.
func (s *Service) SetDebitCardActive(ctx context.Context, id uint, active bool) (*models.DebitCard, error) {
	return s.UpdateDebitCard(ctx, id, models.UpdateDebitCardRequest{IsActive: &active})
}

// DeleteDebitCard removes the card. Expenses paid with it keep their rows
// and lose the card reference.
func (s *Service) DeleteDebitCard(ctx context.Context, id uint) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var card models.DebitCard
		if err := forUpdate(tx).First(&card, id).Error; err != nil {
			return lookupErr(err, "debit card", id)
		}
		if err := tx.Model(&models.Expense{}).Where("debit_card_id = ?", id).
			Update("debit_card_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DebitCard{}, id).Error
	})
	if err != nil {
		return err
	}

	log.Printf("INFO: Deleted debit card %d", id)
	return nil
}
