package api

import (
	"math"

	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

// Formatter renders money and percentages with two fixed decimals.
type Formatter struct {
	currency string
}

// NewFormatter returns a Formatter using the given currency symbol.
func NewFormatter(currency string) Formatter {
	return Formatter{currency: currency}
}

// Price renders "₹123.45", or "N/A" when v is undefined.
func (f Formatter) Price(v *float64) string {
	if v == nil || !finite(*v) {
		return notAvailable
	}
	return f.currency + fixed2(*v)
}

// Change renders "+₹10.00" for a rising series and "₹-5.00" for a falling one.
func (f Formatter) Change(v float64, positive bool) string {
	if !finite(v) {
		return notAvailable
	}
	return sign(positive) + f.currency + fixed2(v)
}

// Percent renders "+10.00%", or "N/A" when the percentage is undefined.
func (f Formatter) Percent(v float64, positive bool) string {
	if !finite(v) {
		return notAvailable
	}
	return sign(positive) + fixed2(v) + "%"
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func sign(positive bool) string {
	if positive {
		return "+"
	}
	return ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
