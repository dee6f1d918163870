// The daily phase sequence: production, market listing, incomes, taxation,
// lending, interest, consumption, market clear.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/coinage/internal/economy"
	"github.com/talgya/coinage/internal/govern"
)

// TickDay runs one full simulated day. Each phase is a sequence of whole
// operations against the components; a failed operation is logged and
// skipped, never retried mid-day.
func (s *Simulation) TickDay(day uint64) {
	s.LastDay = day

	s.produceGoods(day)
	s.listGoods(day)
	s.payIncomes(day)
	s.collectTaxes(day)
	s.issueLoans(day)
	s.collectInterest(day)
	s.consume(day)
	s.Market.ClearDaily()

	s.updateStats()
	slog.Info("daily report",
		"day", day,
		"population", s.Stats.Population,
		"total_money", s.Stats.TotalMoney,
		"avg_satisfaction", fmt.Sprintf("%.1f", s.Stats.AvgSatisfaction),
		"active_loans", s.Stats.ActiveLoans,
		"defaulted_loans", s.Stats.DefaultedLoans,
		"approval", fmt.Sprintf("%.1f", s.Stats.ApprovalRating),
		"volatility", fmt.Sprintf("%.2f", s.Market.Volatility()),
	)
}

// produceGoods adds each business's daily output to its private stock.
// Yields drift smoothly between 80% and 120% of nominal over the days, so
// supply is never perfectly flat.
func (s *Simulation) produceGoods(day uint64) {
	for _, b := range s.Businesses {
		if b.DailyProduction <= 0 {
			continue
		}
		noise := s.yield.Eval2(float64(day)*0.1, float64(b.ID))
		produced := int64(float64(b.DailyProduction) * (0.8 + 0.4*noise))
		if produced < 1 {
			produced = 1
		}
		b.Stock += produced
		s.producedToday[b.ID] = produced
	}
}

// listGoods puts each day's fresh production on the market books at the
// producer's quoted price. The goods themselves stay in the business's
// private stock until a transaction moves them.
func (s *Simulation) listGoods(day uint64) {
	for _, b := range s.Businesses {
		produced := s.producedToday[b.ID]
		if produced <= 0 {
			continue
		}
		if err := s.Market.Sell(b.Product, produced, b.Price); err != nil {
			slog.Warn("listing failed", "product", b.Product, "error", err)
			continue
		}
		delete(s.producedToday, b.ID)
	}
}

// payIncomes credits daily income and debits daily expenses. An expense a
// person can't cover is skipped and costs satisfaction instead.
func (s *Simulation) payIncomes(day uint64) {
	for _, p := range s.People {
		if p.DailyIncome > 0 {
			if err := p.AddMoney(p.DailyIncome); err != nil {
				slog.Warn("income payment failed", "person", p.Name, "error", err)
				continue
			}
		}
		if p.DailyExpense > 0 {
			if p.Balance >= p.DailyExpense {
				p.AddMoney(-p.DailyExpense)
			} else {
				p.AdjustSatisfaction(-5)
			}
		}
	}
}

// collectTaxes runs the government over every person and business. Refusals
// at the subsistence floor are normal and not logged.
func (s *Simulation) collectTaxes(day uint64) {
	collected := 0
	for _, p := range s.People {
		err := s.Gov.CollectTax(p)
		switch {
		case err == nil:
			collected++
		case errors.Is(err, govern.ErrBelowSubsistence):
		default:
			slog.Warn("tax collection failed", "person", p.Name, "error", err)
		}
	}
	for _, b := range s.Businesses {
		err := s.Gov.CollectTax(b)
		switch {
		case err == nil:
			collected++
		case errors.Is(err, govern.ErrBelowSubsistence):
		default:
			slog.Warn("tax collection failed", "business", b.Product, "error", err)
		}
	}
	if collected > 0 {
		s.EmitEvent(Event{
			Day:         day,
			Description: fmt.Sprintf("government collected tax from %d agents", collected),
			Category:    "tax",
		})
	}
}

// issueLoans offers credit to undercapitalized businesses.
func (s *Simulation) issueLoans(day uint64) {
	for _, b := range s.Businesses {
		if b.Balance >= s.cfg.LoanFloor {
			continue
		}
		if err := s.Lender.ProvideLoan(&b.Agent, s.cfg.LoanAmount); err != nil {
			continue
		}
		s.EmitEvent(Event{
			Day:         day,
			Description: fmt.Sprintf("%s producer borrowed %d coins", b.Product, s.cfg.LoanAmount),
			Category:    "loan",
		})
	}
}

// collectInterest bills every active loan; missed payments default.
func (s *Simulation) collectInterest(day uint64) {
	if len(s.Lender.ActiveLoans()) == 0 {
		return
	}
	if !s.Lender.CollectInterest() {
		s.EmitEvent(Event{
			Day:         day,
			Description: "interest collection incomplete, defaults recorded",
			Category:    "loan",
		})
	}
}

// consume has every person buy a unit of food through the three-party
// transaction protocol. A fed person gains satisfaction; going without
// costs more than eating gains, as in lean times.
func (s *Simulation) consume(day uint64) {
	producer, ok := s.producers[s.cfg.FoodProduct]
	if !ok {
		return
	}
	for _, p := range s.People {
		err := s.Market.Transact(&p.Agent, producer, s.cfg.FoodProduct, 1)
		if err == nil {
			p.Inventory = append(p.Inventory, s.cfg.FoodProduct)
			p.AdjustSatisfaction(5)
			continue
		}
		p.AdjustSatisfaction(-10)
		if !errors.Is(err, economy.ErrInsufficientFunds) && !errors.Is(err, economy.ErrInsufficientStock) {
			slog.Warn("consumption failed", "person", p.Name, "error", err)
		}
	}
}

// applyPolicies runs weekly: subsidize configured sectors and rein in any
// quote that has run past the price cap.
func (s *Simulation) applyPolicies(day uint64) {
	for _, b := range s.Businesses {
		if err := s.Gov.ImplementPolicy(govern.PolicySubsidy, b); err == nil {
			s.EmitEvent(Event{
				Day:         day,
				Description: fmt.Sprintf("subsidy paid to %s sector", b.Sector),
				Category:    "policy",
			})
		}

		base := s.basePrices[b.Product]
		if base > 0 && b.Price > base*s.cfg.PriceCapX {
			if err := s.Gov.ImplementPolicy(govern.PolicyPriceControl, b); err == nil {
				s.EmitEvent(Event{
					Day:         day,
					Description: fmt.Sprintf("price control imposed on %s", b.Product),
					Category:    "policy",
				})
			}
		}
	}
}
