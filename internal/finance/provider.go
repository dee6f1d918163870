package finance

import (
	"errors"

	"github.com/google/uuid"

	"github.com/talgya/coinage/internal/agents"
)

var (
	ErrNoBorrower        = errors.New("borrower missing")
	ErrInvalidAmount     = errors.New("loan amount must be positive")
	ErrInsufficientFunds = errors.New("lender cannot cover loan")
)

// Registry resolves borrower ids to their ledger cores. The provider holds
// borrowers by id only; lookup is the collaborator's job.
type Registry interface {
	Resolve(id agents.AgentID) (*agents.Agent, bool)
}

// Provider lends against its own balance and bills interest daily. A loan
// whose borrower can't be resolved or billed is marked defaulted and never
// touched again.
type Provider struct {
	agents.Agent

	BaseInterestRate float64

	loans    []*Loan
	registry Registry
}

// NewProvider creates a loan provider backed by the given registry for
// borrower resolution. A nil registry means no borrower ever resolves, so
// every loan defaults at the first interest pass.
func NewProvider(id agents.AgentID, registry Registry) *Provider {
	return &Provider{
		Agent:            agents.Agent{ID: id},
		BaseInterestRate: 0.05,
		registry:         registry,
	}
}

// SetRegistry swaps the borrower-resolution registry. Used when the
// provider is constructed before the full agent set is known.
func (p *Provider) SetRegistry(registry Registry) {
	p.registry = registry
}

// ProvideLoan lends amount to the borrower: debits the provider, credits
// the borrower, and opens a 30-day loan at the base rate. Nothing moves on
// a failed precondition.
func (p *Provider) ProvideLoan(borrower *agents.Agent, amount int64) error {
	if borrower == nil {
		return ErrNoBorrower
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Balance < amount {
		return ErrInsufficientFunds
	}
	if !borrower.CanAdd(amount) {
		return agents.ErrBalanceOverflow
	}
	if err := p.AddMoney(-amount); err != nil {
		return err
	}
	if err := borrower.AddMoney(amount); err != nil {
		p.AddMoney(amount)
		return err
	}
	p.loans = append(p.loans, &Loan{
		ID:            uuid.New(),
		LenderID:      p.ID,
		BorrowerID:    borrower.ID,
		Principal:     amount,
		InterestRate:  p.BaseInterestRate,
		DaysRemaining: loanTermDays,
	})
	return nil
}

// CollectInterest bills every non-defaulted loan. A borrower that can't be
// resolved, or whose balance won't cover the charge, defaults the loan
// permanently. Reports whether every active loan was serviced.
func (p *Provider) CollectInterest() bool {
	allCollected := true
	for _, loan := range p.loans {
		if loan.Defaulted {
			continue
		}
		var borrower *agents.Agent
		if p.registry != nil {
			borrower, _ = p.registry.Resolve(loan.BorrowerID)
		}
		if borrower == nil {
			loan.Defaulted = true
			allCollected = false
			continue
		}
		interest := loan.Interest()
		if borrower.Balance < interest {
			loan.Defaulted = true
			allCollected = false
			continue
		}
		// The balance check covers the debit; the credit can overflow only
		// if the provider's balance is already at the int64 ceiling.
		if !p.CanAdd(interest) {
			allCollected = false
			continue
		}
		if err := borrower.AddMoney(-interest); err != nil {
			allCollected = false
			continue
		}
		if err := p.AddMoney(interest); err != nil {
			borrower.AddMoney(interest)
			allCollected = false
			continue
		}
		loan.DaysRemaining--
	}
	return allCollected
}

// ActiveLoans returns the provider's loan book, defaulted loans included.
func (p *Provider) ActiveLoans() []*Loan { return p.loans }

// RestoreLoans reinstates a saved loan book (used when loading from DB).
func (p *Provider) RestoreLoans(loans []*Loan) {
	p.loans = loans
}
