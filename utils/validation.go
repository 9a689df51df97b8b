package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"expense-ledger-go/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	validate.RegisterStructValidation(expensePaymentReference, models.CreateExpenseRequest{})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// expensePaymentReference enforces that exactly the reference implied by the
// payment method is present.
func expensePaymentReference(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CreateExpenseRequest)

	want := map[string]bool{}
	switch req.PaymentMethod {
	case models.PaymentDebitCard:
		want["debit_card_id"] = true
	case models.PaymentCreditCard:
		want["credit_card_id"] = true
	case models.PaymentUPI, models.PaymentNetBanking:
		want["savings_account_id"] = true
	}

	refs := []struct {
		json, field string
		value       *uint
	}{
		{"debit_card_id", "DebitCardID", req.DebitCardID},
		{"credit_card_id", "CreditCardID", req.CreditCardID},
		{"savings_account_id", "SavingsAccountID", req.SavingsAccountID},
	}
	for _, ref := range refs {
		switch {
		case want[ref.json] && ref.value == nil:
			sl.ReportError(ref.value, ref.json, ref.field, "required_for_method", string(req.PaymentMethod))
		case !want[ref.json] && ref.value != nil:
			sl.ReportError(ref.value, ref.json, ref.field, "excluded_for_method", string(req.PaymentMethod))
		}
	}
}

func FormatValidationError(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			field := fieldError.Field()
			switch fieldError.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("%s is required", field)
			case "email":
				errors[field] = "Invalid email format"
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
			case "max":
				errors[field] = fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
			case "gt", "gte", "lt", "lte", "ne":
				errors[field] = fmt.Sprintf("%s must be %s %s", field, comparisonWords[fieldError.Tag()], fieldError.Param())
			case "oneof":
				errors[field] = fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
			case "numeric":
				errors[field] = fmt.Sprintf("%s must contain only digits", field)
			case "gtfield":
				errors[field] = fmt.Sprintf("%s must be after %s", field, fieldError.Param())
			case "required_for_method":
				errors[field] = fmt.Sprintf("%s is required when payment_method is %s", field, fieldError.Param())
			case "excluded_for_method":
				errors[field] = fmt.Sprintf("%s must not be set when payment_method is %s", field, fieldError.Param())
			default:
				errors[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
	}

	return errors
}

var comparisonWords = map[string]string{
	"gt":  "greater than",
	"gte": "at least",
	"lt":  "less than",
	"lte": "at most",
	"ne":  "different from",
}
