package domain

type (
	Kind      string
	Direction string
	Mode      string
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"

	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"

	// income modes
	ModeCash            Mode = "cash"
	ModeInboundTransfer Mode = "inbound_transfer"
	ModeSalary          Mode = "salary"

	// expense modes
	ModeDirectDebit Mode = "direct_debit"
	ModeCreditCard  Mode = "credit_card"
	ModeTransfer    Mode = "transfer"
)

const (
	DefaultCurrency      = "EUR"
	MaxDescriptionLength = 500
)

// Transaction is one income or expense entry. The upper-case attributes are
// the storage keys: the primary pair plus one pair per projection.
type Transaction struct {
	PK     string `json:"PK" dynamodbav:"PK"`
	SK     string `json:"SK" dynamodbav:"SK"`
	GSI1PK string `json:"GSI1PK" dynamodbav:"GSI1PK"`
	GSI1SK string `json:"GSI1SK" dynamodbav:"GSI1SK"`
	GSI2PK string `json:"GSI2PK" dynamodbav:"GSI2PK"`
	GSI2SK string `json:"GSI2SK" dynamodbav:"GSI2SK"`
	GSI3PK string `json:"GSI3PK" dynamodbav:"GSI3PK"`
	GSI3SK string `json:"GSI3SK" dynamodbav:"GSI3SK"`

	UserID      string    `json:"userId" dynamodbav:"userId"`
	ID          string    `json:"id" dynamodbav:"id"`
	Timestamp   string    `json:"timestamp" dynamodbav:"timestamp"`
	Date        string    `json:"date" dynamodbav:"date"`
	YearMonth   string    `json:"yearMonth" dynamodbav:"yearMonth"`
	Kind        Kind      `json:"kind" dynamodbav:"kind"`
	Direction   Direction `json:"direction" dynamodbav:"direction"`
	Mode        Mode      `json:"mode" dynamodbav:"mode"`
	Description string    `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Currency    string    `json:"currency" dynamodbav:"currency"`
	AmountCents int64     `json:"amountCents" dynamodbav:"amountCents"`
}

// TransactionPatch is the closed set of mutable fields. A nil field is left
// untouched.
type TransactionPatch struct {
	Description *string `json:"description" validate:"omitnil,max=500"`
	Mode        *Mode   `json:"mode" validate:"omitnil,oneof=cash inbound_transfer salary direct_debit credit_card transfer"`
	AmountCents *int64  `json:"amountCents" validate:"omitnil,min=1"`
	Currency    *string `json:"currency" validate:"omitnil,iso4217"`
}

func (p TransactionPatch) IsEmpty() bool {
	return p.Description == nil && p.Mode == nil && p.AmountCents == nil && p.Currency == nil
}

// ListFilter selects one lookup path. When several dimensions are set the
// first non-empty one in the order Month, Direction, Mode wins.
type ListFilter struct {
	Month     string
	Direction Direction
	Mode      Mode
	Limit     int
	Cursor    string
}

// Page is one slice of a listing, newest first. NextCursor is empty on the
// last page.
type Page struct {
	Items      []*Transaction
	NextCursor string
}

var incomeModes = map[Mode]bool{
	ModeCash:            true,
	ModeInboundTransfer: true,
	ModeSalary:          true,
}

var expenseModes = map[Mode]bool{
	ModeDirectDebit: true,
	ModeCreditCard:  true,
	ModeTransfer:    true,
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Direction returns the only direction a kind may be recorded with.
func (k Kind) Direction() Direction {
	if k == KindIncome {
		return DirectionCredit
	}
	return DirectionDebit
}

// AllowsMode reports whether m is a payment method for this kind.
func (k Kind) AllowsMode(m Mode) bool {
	switch k {
	case KindIncome:
		return incomeModes[m]
	case KindExpense:
		return expenseModes[m]
	}
	return false
}

func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Code is the single letter used inside projection keys.
func (d Direction) Code() string {
	if d == DirectionCredit {
		return "C"
	}
	return "D"
}

func (m Mode) Valid() bool {
	return incomeModes[m] || expenseModes[m]
}

// Modes lists every payment method, income ones first.
func Modes() []Mode {
	return []Mode{ModeCash, ModeInboundTransfer, ModeSalary, ModeDirectDebit, ModeCreditCard, ModeTransfer}
}
