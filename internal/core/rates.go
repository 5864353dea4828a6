package core

import "math"

// Display-only exchange rates. These are rough constants used for chart and
// report scaling; real amounts stay in their own currency and nothing derived
// from these values is ever persisted or returned as financial data.

// usdRates maps a currency to its approximate USD value per unit.
var usdRates = map[Currency]float64{
	USD:  1,
	EGP:  0.032,
	EUR:  1.1,
	GBP:  1.27,
	VISA: 1,
}

// egpPerUSD is the approximate EGP price of one USD-pegged unit, used by the
// report breakdown to collapse mixed-currency totals into one display column.
const egpPerUSD = 31.25

// ApproxUSD sums per-currency amounts into a single approximate USD figure.
// Unknown currencies are treated as already being USD.
func ApproxUSD(amounts []CurrencyAmount) Money {
	var total float64
	for _, a := range amounts {
		rate, ok := usdRates[a.Currency]
		if !ok {
			rate = 1
		}
		total += a.Amount.Decimal() * rate
	}
	return Money{Cents: int64(math.Round(total * 100))}
}

// ApproxEGP converts a single amount into approximate EGP. EGP amounts pass
// through unchanged; everything else is treated as USD-pegged.
func ApproxEGP(m Money, c Currency) Money {
	if c == EGP {
		return m
	}
	return Money{Cents: int64(math.Round(m.Decimal() * egpPerUSD * 100))}
}
