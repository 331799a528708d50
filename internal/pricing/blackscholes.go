// Package pricing provides closed-form option valuation and historical
// volatility estimation. Pure math, no state.
package pricing

import (
	"math"

	"market-replay/internal/models"
)

// Inputs are the Black-Scholes pricing inputs.
type Inputs struct {
	Spot   float64 // current underlying price
	Strike float64
	TTE    float64 // time to expiry in years
	Rate   float64 // risk-free rate, annualized decimal
	Sigma  float64 // volatility, annualized decimal
	Type   models.OptionType
}

// Result holds the option price and standard Greeks.
type Result struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64 // per day
	Vega  float64
	Rho   float64
}

// BlackScholes computes the fair value and Greeks of a European option.
// At or past expiry it returns intrinsic value with degenerate delta and
// zero remaining Greeks.
func BlackScholes(in Inputs) Result {
	if in.TTE <= 0 {
		var intrinsic float64
		if in.Type == models.OptionCall {
			intrinsic = math.Max(in.Spot-in.Strike, 0)
		} else {
			intrinsic = math.Max(in.Strike-in.Spot, 0)
		}
		delta := 0.0
		if intrinsic > 0 {
			if in.Type == models.OptionCall {
				delta = 1
			} else {
				delta = -1
			}
		}
		return Result{Price: intrinsic, Delta: delta}
	}

	sqrtT := math.Sqrt(in.TTE)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate+in.Sigma*in.Sigma/2)*in.TTE) / (in.Sigma * sqrtT)
	d2 := d1 - in.Sigma*sqrtT
	discount := math.Exp(-in.Rate * in.TTE)

	var price, delta, theta, rho float64
	if in.Type == models.OptionCall {
		price = in.Spot*normCDF(d1) - in.Strike*discount*normCDF(d2)
		delta = normCDF(d1)
		theta = -(in.Spot*normPDF(d1)*in.Sigma)/(2*sqrtT) - in.Rate*in.Strike*discount*normCDF(d2)
		rho = in.Strike * in.TTE * discount * normCDF(d2)
	} else {
		price = in.Strike*discount*normCDF(-d2) - in.Spot*normCDF(-d1)
		delta = normCDF(d1) - 1
		theta = -(in.Spot*normPDF(d1)*in.Sigma)/(2*sqrtT) + in.Rate*in.Strike*discount*normCDF(-d2)
		rho = -in.Strike * in.TTE * discount * normCDF(-d2)
	}

	return Result{
		Price: math.Max(price, 0),
		Delta: delta,
		Gamma: normPDF(d1) / (in.Spot * in.Sigma * sqrtT),
		Theta: theta / 365,
		Vega:  in.Spot * normPDF(d1) * sqrtT,
		Rho:   rho,
	}
}

// normCDF is the Abramowitz & Stegun approximation of the standard normal
// CDF (error < 7.5e-8).
func normCDF(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	sign := 1.0
	if x < 0 {
		sign = -1
	}
	ax := math.Abs(x)
	t := 1.0 / (1.0 + p*ax)
	y := 1.0 - ((((a5*t+a4)*t+a3)*t+a2)*t+a1)*t*math.Exp(-ax*ax)
	return 0.5 * (1.0 + sign*y)
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
