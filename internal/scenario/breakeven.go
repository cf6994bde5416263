// Package scenario holds the pure numeric models behind the break-even
// simulator and the markup calculator. Nothing here touches the
// network or the cache; callers own all state and recompute on every
// parameter change.
package scenario

import (
	"errors"
	"fmt"

	"avrora/internal/core"
)

// daysPerMonth is the planning horizon every simulator figure is
// expressed against.
const daysPerMonth = 30

// Commissions are the percentage deductions applied to a unit price.
type Commissions struct {
	Kaspi   float64 `json:"kaspi"`
	Florist float64 `json:"florist"`
	Manager float64 `json:"manager"`
	Tax     float64 `json:"tax"`
}

// DefaultCommissions returns the business defaults.
func DefaultCommissions() Commissions {
	return Commissions{Kaspi: 0.95, Florist: 2.0, Manager: 2.0, Tax: 3.0}
}

// Total is the summed percentage.
func (c Commissions) Total() float64 {
	return c.Kaspi + c.Florist + c.Manager + c.Tax
}

// Validate rejects negative percentages.
func (c Commissions) Validate() error {
	for _, v := range []float64{c.Kaspi, c.Florist, c.Manager, c.Tax} {
		if v < 0 {
			return errors.New("commission percentages must be >= 0")
		}
	}
	return nil
}

// Params is the full input set of the break-even model. A nil
// Commissions means the business defaults; an explicit all-zero value
// models a commission-free scenario and is used as given.
type Params struct {
	FixedCosts          float64      `json:"fixed_costs"`           // monthly baseline from the costs sheet
	DailyAdSpend        float64      `json:"daily_ad_spend"`        // multiplied by the 30-day month
	SimulationAdd       float64      `json:"simulation_add"`        // what-if addition to fixed costs
	VariableCostPerUnit float64      `json:"variable_cost_per_unit"` // packaging etc.
	UnitPrice           float64      `json:"unit_price"`            // average check
	Markup              float64      `json:"markup"`                // price = markup x cost, e.g. 2.2
	Commissions         *Commissions `json:"commissions,omitempty"`
}

// EffectiveCommissions resolves the nil-means-defaults rule.
func (p Params) EffectiveCommissions() Commissions {
	if p.Commissions == nil {
		return DefaultCommissions()
	}
	return *p.Commissions
}

// Validate checks the ranges a caller can get wrong.
func (p Params) Validate() error {
	if p.UnitPrice <= 0 {
		return errors.New("unit price must be positive")
	}
	if p.Markup <= 0 {
		return errors.New("markup must be positive")
	}
	if err := p.EffectiveCommissions().Validate(); err != nil {
		return err
	}
	return nil
}

// TotalFixedCosts is the monthly fixed-cost load the margin has to
// cover.
func (p Params) TotalFixedCosts() float64 {
	return p.FixedCosts + p.DailyAdSpend*daysPerMonth + p.SimulationAdd
}

// CostPerUnit is cost of goods plus packaging plus commissions for one
// unit at the current price.
func (p Params) CostPerUnit() float64 {
	return p.cogs() + p.VariableCostPerUnit + p.commissionPerUnit()
}

func (p Params) cogs() float64 {
	return core.Ratio(p.UnitPrice, p.Markup)
}

func (p Params) commissionPerUnit() float64 {
	return p.UnitPrice * p.EffectiveCommissions().Total() / 100
}

// Result is the evaluated model. When the margin per unit is not
// positive the model is infeasible: Infeasible is set, the break-even
// figures are zero and MarginPerUnit carries the (non-positive) margin
// so callers can show the loss per order. An infeasible result must
// never be rendered as a break-even number.
type Result struct {
	COGS              float64 `json:"cogs"`
	CommissionPerUnit float64 `json:"commission_per_unit"`
	MarginPerUnit     float64 `json:"margin_per_unit"`
	TotalFixedCosts   float64 `json:"total_fixed_costs"`

	Infeasible bool `json:"infeasible"`

	BreakEvenQty     float64 `json:"break_even_qty"`
	BreakEvenRevenue float64 `json:"break_even_revenue"`
	DailyRevenue     float64 `json:"daily_revenue"`
	DailyQty         float64 `json:"daily_qty"`
}

// Evaluate runs the break-even model.
func Evaluate(p Params) Result {
	r := Result{
		COGS:              p.cogs(),
		CommissionPerUnit: p.commissionPerUnit(),
		TotalFixedCosts:   p.TotalFixedCosts(),
	}
	r.MarginPerUnit = p.UnitPrice - r.COGS - p.VariableCostPerUnit - r.CommissionPerUnit

	if r.MarginPerUnit <= 0 {
		r.Infeasible = true
		return r
	}
	r.BreakEvenQty = r.TotalFixedCosts / r.MarginPerUnit
	r.BreakEvenRevenue = r.BreakEvenQty * p.UnitPrice
	r.DailyRevenue = r.BreakEvenRevenue / daysPerMonth
	r.DailyQty = r.BreakEvenQty / daysPerMonth
	return r
}

// Profit is the answer to "what do I earn at this revenue".
type Profit struct {
	Revenue        float64 `json:"revenue"`
	Units          float64 `json:"units"`
	VariableCost   float64 `json:"variable_cost"`
	NetProfit      float64 `json:"net_profit"`
	RentabilityPct float64 `json:"rentability_pct"`
	DailyRevenue   float64 `json:"daily_revenue"`
}

// ProfitAt projects the net profit at a hypothetical monthly revenue.
func ProfitAt(revenue float64, p Params) Profit {
	units := core.Ratio(revenue, p.UnitPrice)
	variable := units * p.CostPerUnit()
	net := revenue - p.TotalFixedCosts() - variable
	return Profit{
		Revenue:        revenue,
		Units:          units,
		VariableCost:   variable,
		NetProfit:      net,
		RentabilityPct: core.Ratio(net, revenue) * 100,
		DailyRevenue:   revenue / daysPerMonth,
	}
}

// Summary renders the headline figure for logs and plain-text
// consumers.
func (r Result) Summary() string {
	if r.Infeasible {
		return fmt.Sprintf("infeasible: margin per unit %s", core.FormatAmount(r.MarginPerUnit))
	}
	return fmt.Sprintf("break-even at %s (%s/day)",
		core.FormatWhole(r.BreakEvenRevenue), core.FormatWhole(r.DailyRevenue))
}
