package agents

// HealthStatus tracks a person's physical condition.
type HealthStatus uint8

const (
	HealthDead HealthStatus = iota
	HealthSick
	HealthHealthy
)

// CrimeTendency buckets a person's inclination toward crime.
type CrimeTendency uint8

const (
	CrimeLow CrimeTendency = iota
	CrimeMedium
	CrimeHigh
)

// Person is an individual economic actor: earns a daily income, pays a
// daily expense, and consumes through the market.
type Person struct {
	Agent

	Name         string   `json:"name"`
	Job          string   `json:"job"`
	DailyIncome  int64    `json:"daily_income"`
	DailyExpense int64    `json:"daily_expense"`
	Inventory    []string `json:"inventory"`

	Health        HealthStatus  `json:"health"`
	Crime         CrimeTendency `json:"crime"`
	Satisfaction  int           `json:"satisfaction"`   // 0–100
	RiskTolerance int           `json:"risk_tolerance"` // 0–100
}

// personSubsistence is the balance below which a person cannot be taxed.
const personSubsistence = 100

// NewPerson creates a healthy person with middling satisfaction and risk
// tolerance.
func NewPerson(id AgentID, name, job string) *Person {
	return &Person{
		Agent:         Agent{ID: id},
		Name:          name,
		Job:           job,
		Health:        HealthHealthy,
		Satisfaction:  50,
		RiskTolerance: 50,
	}
}

// Ledger exposes the person's money core for transfer operations.
func (p *Person) Ledger() *Agent { return &p.Agent }

// SubsistenceFloor is the minimum balance the tax collector must leave alone.
func (p *Person) SubsistenceFloor() int64 { return personSubsistence }

// SetSatisfaction sets satisfaction, rejecting values outside 0–100.
func (p *Person) SetSatisfaction(v int) error {
	if v < 0 || v > 100 {
		return ErrInvalidValue
	}
	p.Satisfaction = v
	return nil
}

// SetRiskTolerance sets risk tolerance, rejecting values outside 0–100.
func (p *Person) SetRiskTolerance(v int) error {
	if v < 0 || v > 100 {
		return ErrInvalidValue
	}
	p.RiskTolerance = v
	return nil
}

// AdjustSatisfaction shifts satisfaction by delta, clamped to 0–100.
func (p *Person) AdjustSatisfaction(delta int) {
	p.Satisfaction += delta
	if p.Satisfaction < 0 {
		p.Satisfaction = 0
	}
	if p.Satisfaction > 100 {
		p.Satisfaction = 100
	}
}
