package engine_test

import (
	"testing"

	"github.com/talgya/coinage/internal/agents"
	"github.com/talgya/coinage/internal/engine"
	"github.com/talgya/coinage/internal/finance"
	"github.com/talgya/coinage/internal/govern"
)

// newTestSim builds a one-person, one-business economy with the default
// tuning: the person eats wheat, the business farms it.
func newTestSim() *engine.Simulation {
	p := agents.NewPerson(1, "Aldric", "farmer")
	p.Balance = 1000

	b := agents.NewBusiness(2, "wheat", "agriculture", 5, 10, 2)
	b.Balance = 2000

	gov := govern.NewGovernment(1000)
	gov.Balance = 10000

	lender := finance.NewProvider(1001, nil)
	lender.Balance = 50000

	sim := engine.NewSimulation(engine.DefaultConfig(),
		[]*agents.Person{p}, []*agents.Business{b}, gov, lender)
	lender.SetRegistry(sim.Registry)
	return sim
}

func TestNewSimulation_WiresEverything(t *testing.T) {
	sim := newTestSim()

	for _, id := range []agents.AgentID{1, 2, 1000, 1001} {
		if _, ok := sim.Registry.Resolve(id); !ok {
			t.Errorf("agent %d not in registry", id)
		}
	}
	if got := sim.Market.Price("wheat"); got != 5 {
		t.Errorf("initial quote: got %d, want 5", got)
	}
	if sim.Stats.Population != 1 {
		t.Errorf("population: got %d, want 1", sim.Stats.Population)
	}
	want := int64(1000 + 2000 + 10000 + 50000)
	if sim.Stats.TotalMoney != want {
		t.Errorf("total money: got %d, want %d", sim.Stats.TotalMoney, want)
	}
}

func TestTickDay_ConservesMoney(t *testing.T) {
	sim := newTestSim()
	before := sim.Stats.TotalMoney

	// With no external incomes or expenses, a day's taxes, loans, interest,
	// and purchases only move money between ledgers.
	for day := uint64(1); day <= 10; day++ {
		sim.TickDay(day)
		if sim.Stats.TotalMoney != before {
			t.Fatalf("day %d: total money %d, want %d",
				day, sim.Stats.TotalMoney, before)
		}
	}
}

func TestTickDay_FeedsPeople(t *testing.T) {
	sim := newTestSim()
	p := sim.People[0]

	sim.TickDay(1)

	if len(p.Inventory) != 1 || p.Inventory[0] != "wheat" {
		t.Errorf("inventory after a fed day: %v", p.Inventory)
	}
	if p.Satisfaction != 55 {
		t.Errorf("satisfaction: got %d, want 55", p.Satisfaction)
	}
	// Taxed 10% of 1000, then paid 5 for food.
	if p.Balance != 1000-100-5 {
		t.Errorf("balance: got %d, want 895", p.Balance)
	}
	if sim.Gov.Balance != 10000+100 {
		t.Errorf("treasury: got %d, want 10100", sim.Gov.Balance)
	}
}

func TestTickDay_StarvationCostsSatisfaction(t *testing.T) {
	sim := newTestSim()
	p := sim.People[0]
	p.Balance = 0 // can't afford food, and sits under the tax floor

	sim.TickDay(1)

	if len(p.Inventory) != 0 {
		t.Errorf("broke person acquired inventory: %v", p.Inventory)
	}
	if p.Satisfaction != 40 {
		t.Errorf("satisfaction: got %d, want 40", p.Satisfaction)
	}
}

func TestTickDay_ProducesAndLists(t *testing.T) {
	sim := newTestSim()
	b := sim.Businesses[0]

	sim.TickDay(1)

	// Nominal output is 10/day with a ±20% yield swing; one unit was eaten.
	if b.Stock < 7 || b.Stock > 11 {
		t.Errorf("stock after one day: got %d, want 7..11", b.Stock)
	}
	if got := sim.Market.Stock("wheat"); got != b.Stock {
		t.Errorf("market books (%d) out of step with producer stock (%d)",
			got, b.Stock)
	}
}

func TestTickDay_IssuesLoanToPoorBusiness(t *testing.T) {
	sim := newTestSim()
	b := sim.Businesses[0]
	b.Balance = 100 // under the 500-coin loan floor

	sim.TickDay(1)

	loans := sim.Lender.ActiveLoans()
	if len(loans) != 1 {
		t.Fatalf("loan book: got %d loans, want 1", len(loans))
	}
	if loans[0].BorrowerID != b.ID {
		t.Errorf("borrower: got %d, want %d", loans[0].BorrowerID, b.ID)
	}
	if sim.Stats.ActiveLoans != 1 {
		t.Errorf("stats active loans: got %d, want 1", sim.Stats.ActiveLoans)
	}

	found := false
	for _, e := range sim.Events {
		if e.Category == "loan" {
			found = true
		}
	}
	if !found {
		t.Error("no loan event emitted")
	}
}

func TestTickDay_WellCapitalizedBusinessBorrowsNothing(t *testing.T) {
	sim := newTestSim()

	sim.TickDay(1)

	if got := len(sim.Lender.ActiveLoans()); got != 0 {
		t.Errorf("loan book: got %d loans, want 0", got)
	}
}

func TestTickWeek_AppliesConfiguredSubsidy(t *testing.T) {
	sim := newTestSim()
	sim.Gov.SectorSubsidies["agriculture"] = 100
	b := sim.Businesses[0]
	treasury := sim.Gov.Balance

	sim.TickWeek(7)

	if b.Balance != 2000+100 {
		t.Errorf("business balance: got %d, want 2100", b.Balance)
	}
	if sim.Gov.Balance != treasury-100 {
		t.Errorf("treasury: got %d, want %d", sim.Gov.Balance, treasury-100)
	}
	if sim.Gov.ApprovalRating != 55 {
		t.Errorf("approval: got %g, want 55", sim.Gov.ApprovalRating)
	}
}

func TestTickWeek_PriceControlOnRunawayQuote(t *testing.T) {
	sim := newTestSim()
	b := sim.Businesses[0]
	b.Price = 20 // base was 5, cap is 3×

	sim.TickWeek(7)

	if b.Price != 18 { // floor(20 × 0.9)
		t.Errorf("price after control: got %d, want 18", b.Price)
	}
}

func TestTickWeek_TrimsEventLog(t *testing.T) {
	sim := newTestSim()
	for i := 0; i < 1500; i++ {
		sim.EmitEvent(engine.Event{Day: 1, Description: "noise", Category: "economy"})
	}

	sim.TickWeek(7)

	if len(sim.Events) > 1000 {
		t.Errorf("event log: got %d entries, want at most 1000", len(sim.Events))
	}
}

func TestEngine_RunDays(t *testing.T) {
	eng := engine.NewEngine()

	var days []uint64
	var weeks []uint64
	eng.OnDay = func(d uint64) { days = append(days, d) }
	eng.OnWeek = func(d uint64) { weeks = append(weeks, d) }

	eng.RunDays(15)

	if len(days) != 15 {
		t.Fatalf("day callbacks: got %d, want 15", len(days))
	}
	if days[0] != 1 || days[14] != 15 {
		t.Errorf("day sequence: first %d last %d", days[0], days[14])
	}
	wantWeeks := []uint64{7, 14}
	if len(weeks) != len(wantWeeks) {
		t.Fatalf("week callbacks: got %v, want %v", weeks, wantWeeks)
	}
	for i, w := range wantWeeks {
		if weeks[i] != w {
			t.Errorf("week %d: got day %d, want %d", i, weeks[i], w)
		}
	}
	if eng.Day != 15 {
		t.Errorf("engine day: got %d, want 15", eng.Day)
	}
}

func TestEngine_RunDaysWithoutCallbacks(t *testing.T) {
	eng := engine.NewEngine()
	eng.RunDays(7) // must not panic with nil callbacks
	if eng.Day != 7 {
		t.Errorf("engine day: got %d, want 7", eng.Day)
	}
}
