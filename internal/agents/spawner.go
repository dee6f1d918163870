// Agent spawning — creates the starting cast with unique ids and
// lightly randomized temperament.
package agents

import "math/rand"

// Spawner creates agents for the simulation, issuing ids that are unique
// within a run.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
	}
}

// SetNextID sets the next id to be issued (used when restoring from DB).
func (s *Spawner) SetNextID(id AgentID) {
	s.nextID = id
}

func (s *Spawner) issueID() AgentID {
	id := s.nextID
	s.nextID++
	return id
}

// SpawnPerson creates a person with a starting balance and income profile.
// Satisfaction and risk tolerance are jittered around the middle so the
// starting cast isn't perfectly uniform.
func (s *Spawner) SpawnPerson(name, job string, money, income, expense int64) *Person {
	p := NewPerson(s.issueID(), name, job)
	p.Balance = money
	p.DailyIncome = income
	p.DailyExpense = expense
	p.Satisfaction = 40 + s.rng.Intn(21)
	p.RiskTolerance = 30 + s.rng.Intn(41)
	return p
}

// SpawnBusiness creates a business with a starting balance.
func (s *Spawner) SpawnBusiness(product, sector string, money, price, production int64, workers int) *Business {
	b := NewBusiness(s.issueID(), product, sector, price, production, workers)
	b.Balance = money
	return b
}
