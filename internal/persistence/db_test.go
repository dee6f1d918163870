package persistence_test

import (
	"path/filepath"
	"testing"

	"github.com/talgya/coinage/internal/agents"
	"github.com/talgya/coinage/internal/economy"
	"github.com/talgya/coinage/internal/engine"
	"github.com/talgya/coinage/internal/finance"
	"github.com/talgya/coinage/internal/govern"
	"github.com/talgya/coinage/internal/persistence"
)

func openTestDB(t *testing.T) *persistence.DB {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHasState_EmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	if db.HasState() {
		t.Error("fresh database should have no state")
	}
}

func TestPersons_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	p := agents.NewPerson(1, "Aldric", "farmer")
	p.Balance = 950
	p.DailyIncome = 50
	p.DailyExpense = 10
	p.Satisfaction = 62
	p.RiskTolerance = 35
	p.Health = agents.HealthSick
	p.Crime = agents.CrimeMedium
	p.Inventory = []string{"wheat", "wheat", "bread"}

	if err := db.SavePersons([]*agents.Person{p}); err != nil {
		t.Fatalf("SavePersons: %v", err)
	}
	if !db.HasState() {
		t.Error("HasState false after save")
	}

	people, err := db.LoadPersons()
	if err != nil {
		t.Fatalf("LoadPersons: %v", err)
	}
	if len(people) != 1 {
		t.Fatalf("got %d persons, want 1", len(people))
	}
	got := people[0]
	if got.ID != 1 || got.Name != "Aldric" || got.Job != "farmer" {
		t.Errorf("identity: %+v", got)
	}
	if got.Balance != 950 || got.DailyIncome != 50 || got.DailyExpense != 10 {
		t.Errorf("money fields: %+v", got)
	}
	if got.Satisfaction != 62 || got.RiskTolerance != 35 {
		t.Errorf("temperament: %+v", got)
	}
	if got.Health != agents.HealthSick || got.Crime != agents.CrimeMedium {
		t.Errorf("status: %+v", got)
	}
	if len(got.Inventory) != 3 || got.Inventory[2] != "bread" {
		t.Errorf("inventory: %v", got.Inventory)
	}
}

func TestBusinesses_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	b := agents.NewBusiness(2, "wheat", "agriculture", 5, 10, 2)
	b.Balance = 2200
	b.Stock = 47

	if err := db.SaveBusinesses([]*agents.Business{b}); err != nil {
		t.Fatalf("SaveBusinesses: %v", err)
	}
	businesses, err := db.LoadBusinesses()
	if err != nil {
		t.Fatalf("LoadBusinesses: %v", err)
	}
	if len(businesses) != 1 {
		t.Fatalf("got %d businesses, want 1", len(businesses))
	}
	got := businesses[0]
	if got.ID != 2 || got.Product != "wheat" || got.Sector != "agriculture" {
		t.Errorf("identity: %+v", got)
	}
	if got.Balance != 2200 || got.Stock != 47 || got.Price != 5 {
		t.Errorf("state: %+v", got)
	}
	if got.DailyProduction != 10 || got.Workers != 2 {
		t.Errorf("production profile: %+v", got)
	}
}

func TestMarket_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	m := economy.NewMarket()
	m.RegisterProduct("wheat", 5)
	if err := m.Sell("wheat", 100, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Buy("wheat", 30); err != nil {
		t.Fatal(err)
	}
	m.SetVolatility(0.37)

	if err := db.SaveMarket(m); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}
	loaded, err := db.LoadMarket()
	if err != nil {
		t.Fatalf("LoadMarket: %v", err)
	}

	if loaded.Price("wheat") != m.Price("wheat") {
		t.Errorf("price: got %d, want %d", loaded.Price("wheat"), m.Price("wheat"))
	}
	if loaded.Stock("wheat") != 70 {
		t.Errorf("stock: got %d, want 70", loaded.Stock("wheat"))
	}
	if loaded.Volatility() != 0.37 {
		t.Errorf("volatility: got %g, want 0.37", loaded.Volatility())
	}

	want := m.Snapshot()
	got := loaded.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("snapshot: got %d products, want %d", len(got), len(want))
	}
	if len(got[0].Demand) != len(want[0].Demand) || len(got[0].Supply) != len(want[0].Supply) {
		t.Errorf("histories truncated: got %+v, want %+v", got[0], want[0])
	}
}

func TestLender_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	reg := agents.NewRegistry()
	borrower := &agents.Agent{ID: 7, Balance: 500}
	reg.Register(borrower)

	lender := finance.NewProvider(1001, reg)
	lender.Balance = 50000
	if err := lender.ProvideLoan(borrower, 1000); err != nil {
		t.Fatal(err)
	}
	lender.CollectInterest() // one serviced day: 29 remaining

	if err := db.SaveLender(lender); err != nil {
		t.Fatalf("SaveLender: %v", err)
	}
	loaded, err := db.LoadLender(reg)
	if err != nil {
		t.Fatalf("LoadLender: %v", err)
	}

	if loaded.ID != 1001 || loaded.Balance != lender.Balance {
		t.Errorf("provider: id %d balance %d", loaded.ID, loaded.Balance)
	}
	if loaded.BaseInterestRate != 0.05 {
		t.Errorf("rate: got %g, want 0.05", loaded.BaseInterestRate)
	}

	loans := loaded.ActiveLoans()
	if len(loans) != 1 {
		t.Fatalf("loan book: got %d, want 1", len(loans))
	}
	orig := lender.ActiveLoans()[0]
	got := loans[0]
	if got.ID != orig.ID {
		t.Errorf("loan id: got %s, want %s", got.ID, orig.ID)
	}
	if got.Principal != 1000 || got.BorrowerID != 7 || got.DaysRemaining != 29 {
		t.Errorf("loan: %+v", got)
	}
	if got.Defaulted {
		t.Error("loan restored as defaulted")
	}
}

func TestGovernment_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	g := govern.NewGovernment(1000)
	g.Balance = 9900
	g.TaxRate = 12
	g.ApprovalRating = 47.5
	g.SectorSubsidies["agriculture"] = 100
	g.Policies = []string{govern.PolicySubsidy, govern.PolicyPriceControl}

	if err := db.SaveGovernment(g); err != nil {
		t.Fatalf("SaveGovernment: %v", err)
	}
	got, err := db.LoadGovernment()
	if err != nil {
		t.Fatalf("LoadGovernment: %v", err)
	}

	if got.ID != 1000 || got.Balance != 9900 || got.TaxRate != 12 {
		t.Errorf("government: %+v", got)
	}
	if got.ApprovalRating != 47.5 {
		t.Errorf("approval: got %g, want 47.5", got.ApprovalRating)
	}
	if got.SectorSubsidies["agriculture"] != 100 {
		t.Errorf("subsidies: %v", got.SectorSubsidies)
	}
	if len(got.Policies) != 2 || got.Policies[1] != govern.PolicyPriceControl {
		t.Errorf("policies: %v", got.Policies)
	}
}

func TestEvents_AppendAndLoadRecent(t *testing.T) {
	db := openTestDB(t)

	var events []engine.Event
	for day := uint64(1); day <= 5; day++ {
		events = append(events, engine.Event{
			Day:         day,
			Description: "something happened",
			Category:    "economy",
		})
	}
	if err := db.AppendEvents(events); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	got, err := db.LoadRecentEvents(3)
	if err != nil {
		t.Fatalf("LoadRecentEvents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	// Newest three, chronological order.
	for i, wantDay := range []uint64{3, 4, 5} {
		if got[i].Day != wantDay {
			t.Errorf("event %d: day %d, want %d", i, got[i].Day, wantDay)
		}
	}
}

func TestMeta_SetGetAndRunID(t *testing.T) {
	db := openTestDB(t)

	if err := db.SetMeta("last_day", "42"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if err := db.SetMeta("last_day", "43"); err != nil {
		t.Fatalf("SetMeta overwrite: %v", err)
	}
	got, err := db.GetMeta("last_day")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if got != "43" {
		t.Errorf("meta: got %q, want 43", got)
	}

	id1, err := db.EnsureRunID()
	if err != nil {
		t.Fatalf("EnsureRunID: %v", err)
	}
	id2, err := db.EnsureRunID()
	if err != nil {
		t.Fatalf("EnsureRunID again: %v", err)
	}
	if id1 == "" || id1 != id2 {
		t.Errorf("run id not stable: %q vs %q", id1, id2)
	}
}
