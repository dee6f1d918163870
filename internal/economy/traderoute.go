package economy

// TradeRoute records goods moving between two locations. Pure bookkeeping:
// no engine logic attaches to it, the market just keeps the list.
type TradeRoute struct {
	FromLocationID int64            `json:"from_location_id"`
	ToLocationID   int64            `json:"to_location_id"`
	Goods          map[string]int64 `json:"goods"`
	TravelTime     int              `json:"travel_time"`
}

// AddRoute records a trade route.
func (m *Market) AddRoute(r TradeRoute) {
	m.routes = append(m.routes, r)
}

// Routes returns the recorded trade routes.
func (m *Market) Routes() []TradeRoute { return m.routes }
