// Package economy provides the shared market: per-product stock and price
// records, bounded demand/supply history, and the volatility-scaled price
// discovery rule.
package economy

import (
	"math"
	"sort"

	"github.com/talgya/coinage/internal/agents"
)

const (
	// HistoryCap bounds each product's demand and supply history; the
	// oldest sample is evicted first.
	HistoryCap = 100

	// MaxVolatility caps how strongly an imbalance can move prices.
	MaxVolatility = 2.0

	initialVolatility = 0.1
	volatilityStep    = 0.01
)

// productRecord holds one product's market state. Prices never drop below 1
// and stock never goes negative; both histories always hold at least one
// sample.
type productRecord struct {
	price  int64
	stock  int64
	demand []int64
	supply []int64
}

// Market is the single shared trading venue. All product state lives behind
// its methods; nothing outside the package touches the records directly.
type Market struct {
	products   map[string]*productRecord
	volatility float64
	routes     []TradeRoute
}

// NewMarket creates an empty market.
func NewMarket() *Market {
	return &Market{
		products:   make(map[string]*productRecord),
		volatility: initialVolatility,
	}
}

// RegisterProduct creates a product lazily. Re-registering refreshes the
// quoted price but never clears accumulated history or stock. Histories
// start with a single zero sample as the day's baseline.
func (m *Market) RegisterProduct(name string, initialPrice int64) {
	if initialPrice < 1 {
		initialPrice = 1
	}
	if rec, ok := m.products[name]; ok {
		rec.price = initialPrice
		return
	}
	m.products[name] = &productRecord{
		price:  initialPrice,
		demand: []int64{0},
		supply: []int64{0},
	}
}

// Price returns the current price, or 0 for an unknown product.
func (m *Market) Price(name string) int64 {
	if rec, ok := m.products[name]; ok {
		return rec.price
	}
	return 0
}

// Stock returns the current market stock, or 0 for an unknown product.
func (m *Market) Stock(name string) int64 {
	if rec, ok := m.products[name]; ok {
		return rec.stock
	}
	return 0
}

// Volatility returns the current price volatility scalar.
func (m *Market) Volatility() float64 { return m.volatility }

// SetVolatility overrides the volatility scalar, clamped to [0, MaxVolatility].
// Used when restoring saved state.
func (m *Market) SetVolatility(v float64) {
	if v < 0 {
		v = 0
	}
	if v > MaxVolatility {
		v = MaxVolatility
	}
	m.volatility = v
}

// Sell stocks the market with quantity units of a product (the producer
// path). Unknown products are registered at the quoted price. Supplying
// less than the latest recorded demand signals a shortfall and nudges
// volatility up.
func (m *Market) Sell(name string, quantity, price int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	rec, ok := m.products[name]
	if !ok {
		m.RegisterProduct(name, price)
		rec = m.products[name]
	}
	m.addStock(rec, quantity)
	return nil
}

// addStock appends to market stock and the supply history, nudging
// volatility when the new supply falls short of the latest demand.
func (m *Market) addStock(rec *productRecord, quantity int64) {
	if rec.stock <= math.MaxInt64-quantity {
		rec.stock += quantity
	} else {
		rec.stock = math.MaxInt64
	}
	rec.supply = appendCapped(rec.supply, quantity)
	if n := len(rec.demand); n > 0 && quantity < rec.demand[n-1] {
		m.bumpVolatility()
	}
}

// recordDemand appends to the demand history, nudging volatility when
// demand outruns the latest supply.
func (m *Market) recordDemand(rec *productRecord, quantity int64) {
	rec.demand = appendCapped(rec.demand, quantity)
	if n := len(rec.supply); n > 0 && quantity > rec.supply[n-1] {
		m.bumpVolatility()
	}
}

func (m *Market) bumpVolatility() {
	m.volatility += volatilityStep
	if m.volatility > MaxVolatility {
		m.volatility = MaxVolatility
	}
}

func appendCapped(history []int64, v int64) []int64 {
	history = append(history, v)
	if len(history) > HistoryCap {
		history = history[len(history)-HistoryCap:]
	}
	return history
}

// Buy withdraws quantity units from market stock (no seller involved) and
// returns the cost at the pre-update price. The caller settles payment.
func (m *Market) Buy(name string, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	rec, ok := m.products[name]
	if !ok {
		return 0, ErrProductNotFound
	}
	if rec.stock < quantity {
		return 0, ErrInsufficientStock
	}
	cost, ok := totalCost(rec.price, quantity)
	if !ok {
		return 0, ErrCostOverflow
	}
	rec.stock -= quantity
	m.recordDemand(rec, quantity)
	rec.updatePrice(m.volatility)
	return cost, nil
}

// Transact executes the three-party trade protocol: buyer funds, seller
// private stock, market stock. Steps 1–6 are pure checks; money and stock
// move only once every check has passed, so a failure never leaves a
// partial trade behind.
func (m *Market) Transact(buyer *agents.Agent, seller *agents.Business, name string, quantity int64) error {
	if buyer == nil || seller == nil {
		return ErrMissingParty
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	rec, ok := m.products[name]
	if !ok {
		// New product: take the seller's quote.
		m.RegisterProduct(name, seller.Price)
		rec = m.products[name]
	}

	cost, ok := totalCost(rec.price, quantity)
	if !ok {
		return ErrCostOverflow
	}
	if buyer.Balance < cost {
		return ErrInsufficientFunds
	}
	if seller.Stock < quantity {
		return ErrInsufficientStock
	}
	// The debit side is covered by the affordability check; the credit side
	// needs the ledger's own overflow bound so the mutation phase cannot fail.
	if !seller.CanAdd(cost) {
		return ErrCostOverflow
	}

	if rec.stock < quantity {
		// The seller lists their whole private holding on the market books.
		m.addStock(rec, seller.Stock)
		if rec.stock < quantity {
			return ErrInsufficientStock
		}
	}

	// Mutation phase. The prechecks guarantee neither ledger call can fail;
	// the compensation below is unreachable but keeps the no-partial-effect
	// guarantee explicit.
	if err := buyer.AddMoney(-cost); err != nil {
		return err
	}
	if err := seller.AddMoney(cost); err != nil {
		buyer.AddMoney(cost)
		return err
	}
	seller.Stock -= quantity
	rec.stock -= quantity

	m.recordDemand(rec, quantity)
	rec.updatePrice(m.volatility)
	return nil
}

// totalCost multiplies price by quantity, reporting false when the product
// leaves int64 range. Both inputs are non-negative here.
func totalCost(price, quantity int64) (int64, bool) {
	if price != 0 && quantity > math.MaxInt64/price {
		return 0, false
	}
	return price * quantity, true
}

// updatePrice applies the proportional-feedback price rule: the latest
// demand/supply ratio moves the price, scaled by volatility. Prices rise
// when demand outruns supply and fall when supply outruns demand, never
// dropping below 1.
func (rec *productRecord) updatePrice(volatility float64) {
	if len(rec.supply) == 0 || len(rec.demand) == 0 {
		return
	}
	supply := rec.supply[len(rec.supply)-1]
	demand := rec.demand[len(rec.demand)-1]
	if supply == 0 {
		return
	}
	ratio := float64(demand) / float64(supply)
	delta := (ratio - 1) * volatility
	price := int64(math.Floor(float64(rec.price) * (1 + delta)))
	if price < 1 {
		price = 1
	}
	rec.price = price
}

// ClearDaily resets every product's demand and supply history to a single
// zero baseline for the next day. Prices and stock are untouched.
func (m *Market) ClearDaily() {
	for _, rec := range m.products {
		rec.demand = rec.demand[:0]
		rec.demand = append(rec.demand, 0)
		rec.supply = rec.supply[:0]
		rec.supply = append(rec.supply, 0)
	}
}

// ProductState is a read-only snapshot of one product's record, used by
// persistence and the API.
type ProductState struct {
	Name   string  `json:"name"`
	Price  int64   `json:"price"`
	Stock  int64   `json:"stock"`
	Demand []int64 `json:"demand"`
	Supply []int64 `json:"supply"`
}

// Snapshot returns the state of every product, sorted by name.
func (m *Market) Snapshot() []ProductState {
	states := make([]ProductState, 0, len(m.products))
	for name, rec := range m.products {
		states = append(states, ProductState{
			Name:   name,
			Price:  rec.price,
			Stock:  rec.stock,
			Demand: append([]int64(nil), rec.demand...),
			Supply: append([]int64(nil), rec.supply...),
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

// RestoreProduct reinstates a saved product record, replacing any existing
// record of the same name. Empty histories are reset to the zero baseline.
func (m *Market) RestoreProduct(st ProductState) {
	rec := &productRecord{
		price:  st.Price,
		stock:  st.Stock,
		demand: append([]int64(nil), st.Demand...),
		supply: append([]int64(nil), st.Supply...),
	}
	if rec.price < 1 {
		rec.price = 1
	}
	if rec.stock < 0 {
		rec.stock = 0
	}
	if len(rec.demand) == 0 {
		rec.demand = []int64{0}
	}
	if len(rec.supply) == 0 {
		rec.supply = []int64{0}
	}
	m.products[st.Name] = rec
}
