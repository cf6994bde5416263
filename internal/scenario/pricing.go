package scenario

import "avrora/internal/core"

// Quote is the markup calculator's answer for one assembled combo.
type Quote struct {
	MaterialCost   float64 `json:"material_cost"`
	SuggestedPrice float64 `json:"suggested_price"` // material cost x target markup
	FinalPrice     float64 `json:"final_price"`
	CommissionCost float64 `json:"commission_cost"`
	TotalExpenses  float64 `json:"total_expenses"`
	NetProfit      float64 `json:"net_profit"`
	GrossMarkup    float64 `json:"gross_markup"` // price / material cost
	NetMarkup      float64 `json:"net_markup"`   // price / (material cost + commissions)
}

// PriceQuote prices a combo with the given material cost. When
// finalPrice is zero or negative the suggested price is used, matching
// the calculator's prefilled input.
func PriceQuote(materialCost, targetMarkup, finalPrice float64, c Commissions) Quote {
	q := Quote{
		MaterialCost:   materialCost,
		SuggestedPrice: materialCost * targetMarkup,
	}
	q.FinalPrice = finalPrice
	if q.FinalPrice <= 0 {
		q.FinalPrice = q.SuggestedPrice
	}
	q.CommissionCost = q.FinalPrice * c.Total() / 100
	q.TotalExpenses = q.MaterialCost + q.CommissionCost
	q.NetProfit = q.FinalPrice - q.TotalExpenses
	q.GrossMarkup = core.Ratio(q.FinalPrice, q.MaterialCost)
	q.NetMarkup = core.Ratio(q.FinalPrice, q.TotalExpenses)
	return q
}

// QuoteCart prices the current cart contents.
func QuoteCart(cart *Cart, targetMarkup, finalPrice float64, c Commissions) Quote {
	return PriceQuote(cart.MaterialCost(), targetMarkup, finalPrice, c)
}
