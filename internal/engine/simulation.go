// Simulation ties the economy's actors together and runs them day by day.
package engine

import (
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/coinage/internal/agents"
	"github.com/talgya/coinage/internal/economy"
	"github.com/talgya/coinage/internal/finance"
	"github.com/talgya/coinage/internal/govern"
)

// Config carries the tunable parts of a simulation.
type Config struct {
	Seed        int64
	FoodProduct string // product persons buy daily
	LoanFloor   int64  // businesses below this balance get a loan offer
	LoanAmount  int64
	PriceCapX   int64 // price-control trigger: quoted price > PriceCapX × base
}

// DefaultConfig returns the standard simulation tuning.
func DefaultConfig() Config {
	return Config{
		Seed:        42,
		FoodProduct: "wheat",
		LoanFloor:   500,
		LoanAmount:  1000,
		PriceCapX:   3,
	}
}

// Simulation holds the complete economy state and wires the components
// together. All money movement between its actors goes through the ledger.
type Simulation struct {
	People     []*agents.Person
	Businesses []*agents.Business
	Gov        *govern.Government
	Lender     *finance.Provider
	Market     *economy.Market
	Registry   *agents.Registry

	Events  []Event
	LastDay uint64
	Stats   SimStats

	cfg Config

	// producers maps product name to the business that makes it.
	producers map[string]*agents.Business
	// basePrices remembers each product's first quote for policy triggers.
	basePrices map[string]int64
	// producedToday tracks per-business output between the production and
	// listing phases.
	producedToday map[agents.AgentID]int64

	yield opensimplex.Noise
}

// Event is a notable occurrence in the economy.
type Event struct {
	Day         uint64 `json:"day"`
	Description string `json:"description"`
	Category    string `json:"category"` // "economy", "tax", "loan", "policy", ...
}

// SimStats tracks aggregate economy statistics, recomputed daily.
type SimStats struct {
	Population      int     `json:"population"`
	TotalMoney      int64   `json:"total_money"` // every ledger, treasury and lender included
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	ActiveLoans     int     `json:"active_loans"`
	DefaultedLoans  int     `json:"defaulted_loans"`
	ApprovalRating  float64 `json:"approval_rating"`
}

// NewSimulation wires people, businesses, government, and the loan provider
// into a shared market and registry. Every actor is registered so the loan
// provider can resolve borrowers, and every product gets its first quote.
func NewSimulation(cfg Config, people []*agents.Person, businesses []*agents.Business,
	gov *govern.Government, lender *finance.Provider) *Simulation {

	s := &Simulation{
		People:        people,
		Businesses:    businesses,
		Gov:           gov,
		Lender:        lender,
		Market:        economy.NewMarket(),
		Registry:      agents.NewRegistry(),
		cfg:           cfg,
		producers:     make(map[string]*agents.Business),
		basePrices:    make(map[string]int64),
		producedToday: make(map[agents.AgentID]int64),
		yield:         opensimplex.NewNormalized(cfg.Seed),
	}

	for _, p := range people {
		s.Registry.Register(&p.Agent)
	}
	for _, b := range businesses {
		s.Registry.Register(&b.Agent)
		s.Market.RegisterProduct(b.Product, b.Price)
		s.producers[b.Product] = b
		s.basePrices[b.Product] = b.Price
	}
	s.Registry.Register(&gov.Agent)
	s.Registry.Register(&lender.Agent)

	s.updateStats()
	return s
}

// CurrentDay returns the most recently processed day.
func (s *Simulation) CurrentDay() uint64 { return s.LastDay }

// EmitEvent appends an event to the log.
func (s *Simulation) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
}

func (s *Simulation) updateStats() {
	total := int64(0)
	satisfaction := 0
	for _, p := range s.People {
		total += p.Balance
		satisfaction += p.Satisfaction
	}
	for _, b := range s.Businesses {
		total += b.Balance
	}
	total += s.Gov.Balance
	total += s.Lender.Balance

	active, defaulted := 0, 0
	for _, loan := range s.Lender.ActiveLoans() {
		if loan.Defaulted {
			defaulted++
		} else {
			active++
		}
	}

	s.Stats = SimStats{
		Population:     len(s.People),
		TotalMoney:     total,
		ActiveLoans:    active,
		DefaultedLoans: defaulted,
		ApprovalRating: s.Gov.ApprovalRating,
	}
	if len(s.People) > 0 {
		s.Stats.AvgSatisfaction = float64(satisfaction) / float64(len(s.People))
	}
}

// TickWeek runs the weekly phase: policy application, the standing
// approval-rating update, and a summary log. Old events are trimmed so the
// log doesn't grow without bound.
func (s *Simulation) TickWeek(day uint64) {
	s.applyPolicies(day)
	s.Gov.UpdateApprovalRating()

	slog.Info("weekly summary",
		"day", day,
		"approval", s.Gov.ApprovalRating,
		"policies_applied", len(s.Gov.Policies),
		"events_logged", len(s.Events),
	)

	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}
