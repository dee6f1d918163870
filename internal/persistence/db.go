// Package persistence provides SQLite-based economy state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/coinage/internal/agents"
	"github.com/talgya/coinage/internal/economy"
	"github.com/talgya/coinage/internal/engine"
	"github.com/talgya/coinage/internal/finance"
	"github.com/talgya/coinage/internal/govern"
)

// DB wraps a SQLite connection for economy state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		job TEXT NOT NULL,
		balance INTEGER NOT NULL,
		daily_income INTEGER NOT NULL,
		daily_expense INTEGER NOT NULL,
		health INTEGER NOT NULL,
		crime INTEGER NOT NULL,
		satisfaction INTEGER NOT NULL,
		risk_tolerance INTEGER NOT NULL,
		inventory_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS businesses (
		id INTEGER PRIMARY KEY,
		product TEXT NOT NULL,
		sector TEXT NOT NULL,
		balance INTEGER NOT NULL,
		stock INTEGER NOT NULL,
		price INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		daily_production INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		name TEXT PRIMARY KEY,
		price INTEGER NOT NULL,
		stock INTEGER NOT NULL,
		demand_json TEXT NOT NULL,
		supply_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		lender_id INTEGER NOT NULL,
		borrower_id INTEGER NOT NULL,
		principal INTEGER NOT NULL,
		interest_rate REAL NOT NULL,
		days_remaining INTEGER NOT NULL,
		payment_schedule INTEGER NOT NULL,
		defaulted INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS government (
		id INTEGER PRIMARY KEY,
		balance INTEGER NOT NULL,
		tax_rate INTEGER NOT NULL,
		approval_rating REAL NOT NULL,
		subsidies_json TEXT NOT NULL,
		policies_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lender (
		id INTEGER PRIMARY KEY,
		balance INTEGER NOT NULL,
		base_interest_rate REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasState reports whether a saved economy exists in this database.
func (db *DB) HasState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM persons"); err != nil {
		return false
	}
	return count > 0
}

// SavePersons writes all persons (full replace).
func (db *DB) SavePersons(people []*agents.Person) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM persons"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO persons
		(id, name, job, balance, daily_income, daily_expense,
		 health, crime, satisfaction, risk_tolerance, inventory_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range people {
		invJSON, _ := json.Marshal(p.Inventory)
		_, err := stmt.Exec(
			p.ID, p.Name, p.Job, p.Balance, p.DailyIncome, p.DailyExpense,
			p.Health, p.Crime, p.Satisfaction, p.RiskTolerance, string(invJSON),
		)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// LoadPersons reads all persons back.
func (db *DB) LoadPersons() ([]*agents.Person, error) {
	rows, err := db.conn.Queryx("SELECT * FROM persons ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []*agents.Person
	for rows.Next() {
		var row struct {
			ID            int64  `db:"id"`
			Name          string `db:"name"`
			Job           string `db:"job"`
			Balance       int64  `db:"balance"`
			DailyIncome   int64  `db:"daily_income"`
			DailyExpense  int64  `db:"daily_expense"`
			Health        uint8  `db:"health"`
			Crime         uint8  `db:"crime"`
			Satisfaction  int    `db:"satisfaction"`
			RiskTolerance int    `db:"risk_tolerance"`
			InventoryJSON string `db:"inventory_json"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}

		p := agents.NewPerson(agents.AgentID(row.ID), row.Name, row.Job)
		p.Balance = row.Balance
		p.DailyIncome = row.DailyIncome
		p.DailyExpense = row.DailyExpense
		p.Health = agents.HealthStatus(row.Health)
		p.Crime = agents.CrimeTendency(row.Crime)
		p.Satisfaction = row.Satisfaction
		p.RiskTolerance = row.RiskTolerance
		if err := json.Unmarshal([]byte(row.InventoryJSON), &p.Inventory); err != nil {
			return nil, fmt.Errorf("person %d inventory: %w", row.ID, err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// SaveBusinesses writes all businesses (full replace).
func (db *DB) SaveBusinesses(businesses []*agents.Business) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM businesses"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO businesses
		(id, product, sector, balance, stock, price, workers, daily_production)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range businesses {
		_, err := stmt.Exec(
			b.ID, b.Product, b.Sector, b.Balance, b.Stock, b.Price,
			b.Workers, b.DailyProduction,
		)
		if err != nil {
			return fmt.Errorf("insert business %d: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// LoadBusinesses reads all businesses back.
func (db *DB) LoadBusinesses() ([]*agents.Business, error) {
	rows, err := db.conn.Queryx("SELECT * FROM businesses ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []*agents.Business
	for rows.Next() {
		var row struct {
			ID              int64  `db:"id"`
			Product         string `db:"product"`
			Sector          string `db:"sector"`
			Balance         int64  `db:"balance"`
			Stock           int64  `db:"stock"`
			Price           int64  `db:"price"`
			Workers         int    `db:"workers"`
			DailyProduction int64  `db:"daily_production"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}

		b := agents.NewBusiness(agents.AgentID(row.ID), row.Product, row.Sector,
			row.Price, row.DailyProduction, row.Workers)
		b.Balance = row.Balance
		b.Stock = row.Stock
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

// SaveMarket writes every product record and the volatility scalar.
func (db *DB) SaveMarket(m *economy.Market) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM products"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO products
		(name, price, stock, demand_json, supply_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range m.Snapshot() {
		demandJSON, _ := json.Marshal(st.Demand)
		supplyJSON, _ := json.Marshal(st.Supply)
		if _, err := stmt.Exec(st.Name, st.Price, st.Stock, string(demandJSON), string(supplyJSON)); err != nil {
			return fmt.Errorf("insert product %s: %w", st.Name, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO sim_meta (key, value) VALUES ('volatility', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%g", m.Volatility())); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadMarket rebuilds the market from saved product records.
func (db *DB) LoadMarket() (*economy.Market, error) {
	m := economy.NewMarket()

	rows, err := db.conn.Queryx("SELECT * FROM products ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row struct {
			Name       string `db:"name"`
			Price      int64  `db:"price"`
			Stock      int64  `db:"stock"`
			DemandJSON string `db:"demand_json"`
			SupplyJSON string `db:"supply_json"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}

		st := economy.ProductState{Name: row.Name, Price: row.Price, Stock: row.Stock}
		if err := json.Unmarshal([]byte(row.DemandJSON), &st.Demand); err != nil {
			return nil, fmt.Errorf("product %s demand: %w", row.Name, err)
		}
		if err := json.Unmarshal([]byte(row.SupplyJSON), &st.Supply); err != nil {
			return nil, fmt.Errorf("product %s supply: %w", row.Name, err)
		}
		m.RestoreProduct(st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var volStr string
	err = db.conn.Get(&volStr, "SELECT value FROM sim_meta WHERE key = 'volatility'")
	if err == nil {
		var vol float64
		if _, err := fmt.Sscanf(volStr, "%g", &vol); err == nil {
			m.SetVolatility(vol)
		}
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	return m, nil
}

// SaveLender writes the loan provider and its full loan book.
func (db *DB) SaveLender(p *finance.Provider) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM lender"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO lender (id, balance, base_interest_rate) VALUES (?, ?, ?)",
		p.ID, p.Balance, p.BaseInterestRate); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM loans"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO loans
		(id, lender_id, borrower_id, principal, interest_rate,
		 days_remaining, payment_schedule, defaulted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, loan := range p.ActiveLoans() {
		defaulted := 0
		if loan.Defaulted {
			defaulted = 1
		}
		_, err := stmt.Exec(
			loan.ID.String(), loan.LenderID, loan.BorrowerID, loan.Principal,
			loan.InterestRate, loan.DaysRemaining, loan.PaymentSchedule, defaulted,
		)
		if err != nil {
			return fmt.Errorf("insert loan %s: %w", loan.ID, err)
		}
	}

	return tx.Commit()
}

// LoadLender rebuilds the loan provider with the given registry for
// borrower resolution.
func (db *DB) LoadLender(registry finance.Registry) (*finance.Provider, error) {
	var row struct {
		ID               int64   `db:"id"`
		Balance          int64   `db:"balance"`
		BaseInterestRate float64 `db:"base_interest_rate"`
	}
	if err := db.conn.Get(&row, "SELECT * FROM lender LIMIT 1"); err != nil {
		return nil, err
	}

	p := finance.NewProvider(agents.AgentID(row.ID), registry)
	p.Balance = row.Balance
	p.BaseInterestRate = row.BaseInterestRate

	rows, err := db.conn.Queryx("SELECT * FROM loans")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*finance.Loan
	for rows.Next() {
		var lr struct {
			ID              string  `db:"id"`
			LenderID        int64   `db:"lender_id"`
			BorrowerID      int64   `db:"borrower_id"`
			Principal       int64   `db:"principal"`
			InterestRate    float64 `db:"interest_rate"`
			DaysRemaining   int     `db:"days_remaining"`
			PaymentSchedule int     `db:"payment_schedule"`
			Defaulted       int     `db:"defaulted"`
		}
		if err := rows.StructScan(&lr); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(lr.ID)
		if err != nil {
			return nil, fmt.Errorf("loan id %q: %w", lr.ID, err)
		}
		loans = append(loans, &finance.Loan{
			ID:              id,
			LenderID:        agents.AgentID(lr.LenderID),
			BorrowerID:      agents.AgentID(lr.BorrowerID),
			Principal:       lr.Principal,
			InterestRate:    lr.InterestRate,
			DaysRemaining:   lr.DaysRemaining,
			PaymentSchedule: lr.PaymentSchedule,
			Defaulted:       lr.Defaulted != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p.RestoreLoans(loans)
	return p, nil
}

// SaveGovernment writes the government row (full replace).
func (db *DB) SaveGovernment(g *govern.Government) error {
	subsidiesJSON, _ := json.Marshal(g.SectorSubsidies)
	policiesJSON, _ := json.Marshal(g.Policies)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM government"); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO government
		(id, balance, tax_rate, approval_rating, subsidies_json, policies_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Balance, g.TaxRate, g.ApprovalRating,
		string(subsidiesJSON), string(policiesJSON)); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadGovernment reads the government row back.
func (db *DB) LoadGovernment() (*govern.Government, error) {
	var row struct {
		ID             int64   `db:"id"`
		Balance        int64   `db:"balance"`
		TaxRate        int     `db:"tax_rate"`
		ApprovalRating float64 `db:"approval_rating"`
		SubsidiesJSON  string  `db:"subsidies_json"`
		PoliciesJSON   string  `db:"policies_json"`
	}
	if err := db.conn.Get(&row, "SELECT * FROM government LIMIT 1"); err != nil {
		return nil, err
	}

	g := govern.NewGovernment(agents.AgentID(row.ID))
	g.Balance = row.Balance
	g.TaxRate = row.TaxRate
	g.ApprovalRating = row.ApprovalRating
	if err := json.Unmarshal([]byte(row.SubsidiesJSON), &g.SectorSubsidies); err != nil {
		return nil, fmt.Errorf("government subsidies: %w", err)
	}
	if err := json.Unmarshal([]byte(row.PoliciesJSON), &g.Policies); err != nil {
		return nil, fmt.Errorf("government policies: %w", err)
	}
	return g, nil
}

// AppendEvents appends events to the durable log.
func (db *DB) AppendEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (day, description, category) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(e.Day, e.Description, e.Category); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecentEvents reads the newest n events, oldest first.
func (db *DB) LoadRecentEvents(n int) ([]engine.Event, error) {
	rows, err := db.conn.Queryx(
		"SELECT day, description, category FROM events ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []engine.Event
	for rows.Next() {
		var e engine.Event
		if err := rows.StructScan(&e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// SetMeta stores a key/value pair in the run metadata.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(`INSERT INTO sim_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// GetMeta reads a run metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}

// EnsureRunID returns the run's uuid, creating one on first use.
func (db *DB) EnsureRunID() (string, error) {
	id, err := db.GetMeta("run_id")
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	id = uuid.NewString()
	if err := db.SetMeta("run_id", id); err != nil {
		return "", err
	}
	return id, nil
}
