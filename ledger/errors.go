package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Callers match on these with errors.Is; the wrapped message carries the
// specifics.
var (
	ErrNotFound                  = errors.New("not found")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrCreditLimitExceeded       = errors.New("credit limit exceeded")
	ErrPaymentExceedsOutstanding = errors.New("payment exceeds outstanding balance")
	ErrValidation                = errors.New("validation failed")
	ErrDuplicate                 = errors.New("duplicate")
)

func notFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// lookupErr turns a missing row into ErrNotFound and passes anything else
// through.
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return err
}

func writeErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
