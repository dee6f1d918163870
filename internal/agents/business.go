package agents

// Business is a producing actor: it holds private stock of one product,
// quotes a price, and sells through the market. Sector classifies it for
// government subsidy lookups.
type Business struct {
	Agent

	Product         string `json:"product"`
	Sector          string `json:"sector"`
	Stock           int64  `json:"stock"`
	Price           int64  `json:"price"`
	Workers         int    `json:"workers"`
	DailyProduction int64  `json:"daily_production"`
}

// businessSubsistence is the operating capital the tax collector must leave alone.
const businessSubsistence = 1000

// NewBusiness creates a business quoting the given price for its product.
func NewBusiness(id AgentID, product, sector string, price, dailyProduction int64, workers int) *Business {
	if price < 1 {
		price = 1
	}
	return &Business{
		Agent:           Agent{ID: id},
		Product:         product,
		Sector:          sector,
		Price:           price,
		Workers:         workers,
		DailyProduction: dailyProduction,
	}
}

// Ledger exposes the business's money core for transfer operations.
func (b *Business) Ledger() *Agent { return &b.Agent }

// SubsistenceFloor is the minimum balance the tax collector must leave alone.
func (b *Business) SubsistenceFloor() int64 { return businessSubsistence }

// SetStock sets private stock, rejecting negative quantities.
func (b *Business) SetStock(v int64) error {
	if v < 0 {
		return ErrInvalidValue
	}
	b.Stock = v
	return nil
}

// SetPrice sets the quoted price, rejecting anything below 1.
func (b *Business) SetPrice(v int64) error {
	if v < 1 {
		return ErrInvalidValue
	}
	b.Price = v
	return nil
}
