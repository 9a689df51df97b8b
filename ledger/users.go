package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expense-ledger-go/models"
)

func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive: true,
	}
	if user.Name == "" || user.Email == "" {
		return nil, invalid("name and email are required")
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, 0, user.Name, user.Email); err != nil {
			return err
		}
		return writeErr(tx.Create(user).Error)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: Created user %d (%s)", user.ID, user.Email)
	return user, nil
}

func checkUserUnique(tx *gorm.DB, exceptID uint, name, email string) error {
	var existing models.User
	if name != "" {
		err := tx.Where("name = ? AND id <> ?", name, exceptID).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: user with name %q already exists", ErrDuplicate, name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if email != "" {
		err := tx.Where("email = ? AND id <> ?", email, exceptID).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: user with email %q already exists", ErrDuplicate, email)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user with email %q", ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context, isActive *bool, page Page) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := page.apply(q.Order("id ASC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.User, error) {
	var user models.User
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&user, id).Error; err != nil {
			return lookupErr(err, "user", id)
		}

		var name, email string
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
			if name == "" {
				return invalid("name cannot be empty")
			}
		}
		if req.Email != nil {
			email = strings.ToLower(strings.TrimSpace(*req.Email))
			if email == "" {
				return invalid("email cannot be empty")
			}
		}
		if err := checkUserUnique(tx, id, name, email); err != nil {
			return err
		}

		if name != "" {
			user.Name = name
		}
		if email != "" {
			user.Email = email
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		return writeErr(tx.Save(&user).Error)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user and everything they own. Rows are deleted
// children first so the result does not depend on the database honouring
// ON DELETE CASCADE.
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := requireUser(tx, id); err != nil {
			return err
		}

		cards := tx.Model(&models.CreditCard{}).Select("id").Where("user_id = ?", id)
		accounts := tx.Model(&models.SavingsAccount{}).Select("id").Where("user_id = ?", id)

		steps := []struct {
			what string
			run  func() error
		}{
			{"expenses", func() error {
				return tx.Where("user_id = ?", id).Delete(&models.Expense{}).Error
			}},
			{"credit card payments", func() error {
				return tx.Where("credit_card_id IN (?)", cards).Delete(&models.CreditCardPayment{}).Error
			}},
			{"credit card transactions", func() error {
				return tx.Where("credit_card_id IN (?)", cards).Delete(&models.CreditCardTransaction{}).Error
			}},
			{"credit cards", func() error {
				return tx.Where("user_id = ?", id).Delete(&models.CreditCard{}).Error
			}},
			{"debit cards", func() error {
				return tx.Where("user_id = ?", id).Delete(&models.DebitCard{}).Error
			}},
			{"savings transactions", func() error {
				return tx.Where("savings_account_id IN (?)", accounts).Delete(&models.SavingsTransaction{}).Error
			}},
			{"savings accounts", func() error {
				return tx.Where("user_id = ?", id).Delete(&models.SavingsAccount{}).Error
			}},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return fmt.Errorf("failed to delete %s of user %d: %w", step.what, id, err)
			}
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return err
	}

	log.Printf("INFO: Deleted user %d and all owned records", id)
	return nil
}

func (s *Service) GetUserSummary(ctx context.Context, id uint) (*models.UserSummary, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	summary := &models.UserSummary{User: *user}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.SavingsAccount{}, &summary.TotalSavingsAccounts},
		{&models.DebitCard{}, &summary.TotalDebitCards},
		{&models.CreditCard{}, &summary.TotalCreditCards},
		{&models.Expense{}, &summary.TotalExpenses},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where("user_id = ?", id).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var balances []decimal.Decimal
	if err := db.Model(&models.SavingsAccount{}).Where("user_id = ?", id).Pluck("current_balance", &balances).Error; err != nil {
		return nil, err
	}
	summary.TotalBalance = decimal.Sum(decimal.Zero, balances...)

	return summary, nil
}
