// Package finance provides loan issuance, interest collection, and
// default tracking against the shared ledger.
package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talgya/coinage/internal/agents"
)

// loanTermDays is how many interest-bearing days a fresh loan carries.
const loanTermDays = 30

// Loan is a record of money lent. Immutable after creation except for
// DaysRemaining, which interest collection decrements, and Defaulted,
// which is permanent once set. Loans are never deleted.
type Loan struct {
	ID              uuid.UUID      `json:"id"`
	LenderID        agents.AgentID `json:"lender_id"`
	BorrowerID      agents.AgentID `json:"borrower_id"`
	Principal       int64          `json:"principal"`
	InterestRate    float64        `json:"interest_rate"`
	DaysRemaining   int            `json:"days_remaining"`
	PaymentSchedule int            `json:"payment_schedule"`
	Defaulted       bool           `json:"defaulted"`
}

// Interest returns the per-collection interest charge: principal × rate,
// truncated to whole coins. Computed in decimal so large principals don't
// pick up float drift.
func (l *Loan) Interest() int64 {
	return decimal.NewFromInt(l.Principal).
		Mul(decimal.NewFromFloat(l.InterestRate)).
		IntPart()
}
