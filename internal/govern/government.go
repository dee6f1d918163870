// Package govern provides the government actor: tax collection, subsidy and
// price-control policies, and approval-rating dynamics.
package govern

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/talgya/coinage/internal/agents"
)

// Recognized policy kinds.
const (
	PolicySubsidy      = "subsidy"
	PolicyPriceControl = "price_control"
)

var (
	ErrNoTarget         = errors.New("policy target missing")
	ErrBelowSubsistence = errors.New("balance at or below subsistence floor")
	ErrNoSubsidy        = errors.New("no subsidy configured for sector")
	ErrCannotAfford     = errors.New("government cannot afford subsidy")
	ErrInvalidPrice     = errors.New("target price not positive")
	ErrUnknownPolicy    = errors.New("unknown policy")
)

// Taxpayer is any agent the government can tax: it exposes its ledger core
// and the floor below which collection is refused.
type Taxpayer interface {
	Ledger() *agents.Agent
	SubsistenceFloor() int64
}

// Government holds the treasury and policy state. ApprovalRating stays in
// [0, 100] through every mutation.
type Government struct {
	agents.Agent

	TaxRate         int                `json:"tax_rate"` // integer percent
	ApprovalRating  float64            `json:"approval_rating"`
	SectorSubsidies map[string]float64 `json:"sector_subsidies"`
	Policies        []string           `json:"policies"`
}

// NewGovernment creates a government with a 10% tax rate and a neutral
// approval rating.
func NewGovernment(id agents.AgentID) *Government {
	return &Government{
		Agent:           agents.Agent{ID: id},
		TaxRate:         10,
		ApprovalRating:  50,
		SectorSubsidies: make(map[string]float64),
	}
}

// CollectTax takes TaxRate percent of the taxpayer's balance (floored),
// refusing entirely when the balance sits at or below the taxpayer's
// subsistence floor. Each successful collection costs a point of approval.
func (g *Government) CollectTax(t Taxpayer) error {
	if t == nil {
		return ErrNoTarget
	}
	ledger := t.Ledger()
	if ledger.Balance <= t.SubsistenceFloor() {
		return ErrBelowSubsistence
	}
	tax := ledger.Balance * int64(g.TaxRate) / 100
	if err := ledger.AddMoney(-tax); err != nil {
		return err
	}
	if err := g.AddMoney(tax); err != nil {
		ledger.AddMoney(tax)
		return err
	}
	g.adjustApproval(-1.0)
	return nil
}

// ImplementPolicy applies a recognized policy to a business. Subsidies move
// money from the treasury through the ledger; price controls shave 10% off
// the target's quoted price. Failed preconditions leave everything untouched.
func (g *Government) ImplementPolicy(kind string, target *agents.Business) error {
	if target == nil {
		return ErrNoTarget
	}
	switch kind {
	case PolicySubsidy:
		configured, ok := g.SectorSubsidies[target.Sector]
		if !ok {
			return ErrNoSubsidy
		}
		amount := decimal.NewFromFloat(configured).IntPart()
		if g.Balance < amount {
			return ErrCannotAfford
		}
		if err := g.AddMoney(-amount); err != nil {
			return err
		}
		if err := target.AddMoney(amount); err != nil {
			g.AddMoney(amount)
			return err
		}
		g.Policies = append(g.Policies, kind)
		g.adjustApproval(5.0)
		return nil

	case PolicyPriceControl:
		if target.Price <= 0 {
			return ErrInvalidPrice
		}
		target.Price = int64(math.Floor(float64(target.Price) * 0.9))
		g.Policies = append(g.Policies, kind)
		g.adjustApproval(3.0)
		return nil

	default:
		return ErrUnknownPolicy
	}
}

// UpdateApprovalRating applies the standing penalty for a tax rate above
// 15%: two points per percentage point over the line.
func (g *Government) UpdateApprovalRating() {
	if g.TaxRate > 15 {
		g.adjustApproval(-float64(g.TaxRate-15) * 2.0)
		return
	}
	g.adjustApproval(0)
}

func (g *Government) adjustApproval(delta float64) {
	g.ApprovalRating += delta
	if g.ApprovalRating < 0 {
		g.ApprovalRating = 0
	}
	if g.ApprovalRating > 100 {
		g.ApprovalRating = 100
	}
}
