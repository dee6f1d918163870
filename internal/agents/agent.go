// Package agents provides the economic actor data model and the shared
// ledger primitive every actor's money moves through.
package agents

import (
	"errors"
	"math"
)

// AgentID is a unique identifier for an agent within one run.
type AgentID int64

// Ledger bound violations. These abort the offending operation only;
// the caller's other state is untouched.
var (
	ErrBalanceOverflow  = errors.New("balance addition would overflow")
	ErrBalanceUnderflow = errors.New("balance subtraction would underflow")
)

// ErrInvalidValue reports an out-of-range setter argument.
var ErrInvalidValue = errors.New("value out of range")

// Agent is the ledger capability shared by every actor kind: an identity
// plus a signed 64-bit balance. Concrete kinds (Person, Business,
// Government, loan Provider) embed it rather than inheriting from it.
type Agent struct {
	ID      AgentID `json:"id"`
	Balance int64   `json:"balance"`
}

// AddMoney applies a signed amount to the balance. It refuses any addition
// that would leave int64 range, so every transfer in the system is checked
// at the point it happens. This is the only sanctioned way a balance changes.
func (a *Agent) AddMoney(amount int64) error {
	if amount > 0 && a.Balance > math.MaxInt64-amount {
		return ErrBalanceOverflow
	}
	// MinInt64 has no representable negation, so it can never be applied.
	if amount == math.MinInt64 {
		return ErrBalanceUnderflow
	}
	if amount < 0 && a.Balance < math.MinInt64-amount {
		return ErrBalanceUnderflow
	}
	a.Balance += amount
	return nil
}

// CanAdd reports whether AddMoney(amount) would succeed, without mutating.
// Multi-party transfers check both sides with this before moving anything.
func (a *Agent) CanAdd(amount int64) bool {
	if amount > 0 {
		return a.Balance <= math.MaxInt64-amount
	}
	if amount == math.MinInt64 {
		return false
	}
	return a.Balance >= math.MinInt64-amount
}
