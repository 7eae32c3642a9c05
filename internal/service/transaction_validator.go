package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"finance_webapp/internal/domain"

	"github.com/go-playground/validator/v10"
)

// CreateTransactionInput is the payload accepted by Create.
type CreateTransactionInput struct {
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Kind        domain.Kind      `json:"kind" validate:"required,oneof=income expense"`
	Mode        domain.Mode      `json:"mode" validate:"required,oneof=cash inbound_transfer salary direct_debit credit_card transfer"`
	Direction   domain.Direction `json:"direction" validate:"required,oneof=credit debit"`
	Description string           `json:"description" validate:"max=500"`
	Currency    string           `json:"currency" validate:"required,iso4217"`
	AmountCents int64            `json:"amountCents" validate:"min=1"`
}

// ValidationError lists every malformed field. It matches domain.ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

// DomainRuleError is a consistent shape with inconsistent meaning. It matches
// domain.ErrDomainRule.
type DomainRuleError struct {
	Message string
}

func (e *DomainRuleError) Error() string { return e.Message }

func (e *DomainRuleError) Unwrap() error { return domain.ErrDomainRule }

// TransactionValidator checks input before anything is written. It holds no
// state besides the cached struct metadata of the underlying validator.
type TransactionValidator struct {
	validate *validator.Validate
}

func NewTransactionValidator() *TransactionValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &TransactionValidator{validate: v}
}

// ValidateCreate returns the normalized input (currency defaulted) or a
// *ValidationError / *DomainRuleError. Shape is checked before the cross-field
// rules so a rule violation always refers to valid enum values.
func (v *TransactionValidator) ValidateCreate(in CreateTransactionInput) (CreateTransactionInput, error) {
	if in.Currency == "" {
		in.Currency = domain.DefaultCurrency
	}

	if err := v.validate.Struct(in); err != nil {
		return in, toValidationError(err)
	}

	if want := in.Kind.Direction(); in.Direction != want {
		return in, &DomainRuleError{Message: fmt.Sprintf("%s must be %s", in.Kind, want)}
	}
	if !in.Kind.AllowsMode(in.Mode) {
		return in, &DomainRuleError{Message: fmt.Sprintf("mode %s is not valid for %s", in.Mode, in.Kind)}
	}
	return in, nil
}

// ValidatePatch checks the shape of the fields present in patch.
func (v *TransactionValidator) ValidatePatch(patch domain.TransactionPatch) error {
	if err := v.validate.Struct(patch); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	}
	return "failed " + fe.Tag() + " check"
}
