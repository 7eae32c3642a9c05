package service

import (
	"errors"
	"strings"
	"testing"

	"finance_webapp/internal/domain"
)

func validInput() CreateTransactionInput {
	return CreateTransactionInput{
		Date:        "2024-03-15",
		Kind:        domain.KindIncome,
		Direction:   domain.DirectionCredit,
		Mode:        domain.ModeSalary,
		AmountCents: 500000,
		Currency:    "EUR",
	}
}

func TestValidateCreateDefaultsCurrency(t *testing.T) {
	v := NewTransactionValidator()
	in := validInput()
	in.Currency = ""

	out, err := v.ValidateCreate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Currency != "EUR" {
		t.Fatalf("currency = %q; want EUR", out.Currency)
	}
}

func TestValidateCreateShape(t *testing.T) {
	v := NewTransactionValidator()

	tests := []struct {
		name   string
		mutate func(*CreateTransactionInput)
		field  string
	}{
		{"bad date", func(in *CreateTransactionInput) { in.Date = "15/03/2024" }, "date"},
		{"impossible date", func(in *CreateTransactionInput) { in.Date = "2024-02-30" }, "date"},
		{"missing date", func(in *CreateTransactionInput) { in.Date = "" }, "date"},
		{"unknown kind", func(in *CreateTransactionInput) { in.Kind = "gift" }, "kind"},
		{"unknown mode", func(in *CreateTransactionInput) { in.Mode = "cheque" }, "mode"},
		{"unknown direction", func(in *CreateTransactionInput) { in.Direction = "sideways" }, "direction"},
		{"zero amount", func(in *CreateTransactionInput) { in.AmountCents = 0 }, "amountCents"},
		{"negative amount", func(in *CreateTransactionInput) { in.AmountCents = -5 }, "amountCents"},
		{"long description", func(in *CreateTransactionInput) { in.Description = strings.Repeat("x", 501) }, "description"},
		{"bad currency", func(in *CreateTransactionInput) { in.Currency = "EURO" }, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := v.ValidateCreate(in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v; want validation error", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Fields[0].Field != tt.field {
				t.Fatalf("field = %q; want %q", verr.Fields[0].Field, tt.field)
			}
		})
	}
}

func TestValidateCreateDomainRules(t *testing.T) {
	v := NewTransactionValidator()

	tests := []struct {
		kind      domain.Kind
		direction domain.Direction
		mode      domain.Mode
		message   string
	}{
		{domain.KindIncome, domain.DirectionDebit, domain.ModeSalary, "income must be credit"},
		{domain.KindExpense, domain.DirectionCredit, domain.ModeCash, "expense must be debit"},
		{domain.KindExpense, domain.DirectionDebit, domain.ModeSalary, "mode salary is not valid for expense"},
		{domain.KindIncome, domain.DirectionCredit, domain.ModeCreditCard, "mode credit_card is not valid for income"},
	}

	for _, tt := range tests {
		in := validInput()
		in.Kind, in.Direction, in.Mode = tt.kind, tt.direction, tt.mode

		_, err := v.ValidateCreate(in)
		if !errors.Is(err, domain.ErrDomainRule) {
			t.Fatalf("%s/%s/%s: err = %v; want domain rule violation", tt.kind, tt.direction, tt.mode, err)
		}
		if errors.Is(err, domain.ErrValidation) {
			t.Fatalf("domain rule violation must not be reported as a validation error")
		}
		if err.Error() != tt.message {
			t.Fatalf("message = %q; want %q", err.Error(), tt.message)
		}
	}
}

func TestValidatePatch(t *testing.T) {
	v := NewTransactionValidator()
	zero := int64(0)
	bad := domain.Mode("cheque")
	cur := "usd"
	ok := domain.ModeTransfer

	if err := v.ValidatePatch(domain.TransactionPatch{Mode: &ok}); err != nil {
		t.Fatalf("valid patch rejected: %v", err)
	}
	for name, patch := range map[string]domain.TransactionPatch{
		"amount":   {AmountCents: &zero},
		"mode":     {Mode: &bad},
		"currency": {Currency: &cur},
	} {
		if err := v.ValidatePatch(patch); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: err = %v; want validation error", name, err)
		}
	}
}
