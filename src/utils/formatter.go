package utils

import "math"

type Formatter struct {
}

// QuantizePrice snaps a price down to the exchange tick size.
func (m *Formatter) QuantizePrice(tickSize float64, price float64) float64 {
	if tickSize <= 0.00 {
		return price
	}

	ticks := math.Floor(price/tickSize + 1e-9)

	return ticks * tickSize
}

func (m *Formatter) Round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func (m *Formatter) ToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(m.Round(num*output)) / output
}

func (m *Formatter) Floor(num float64) int64 {
	return int64(math.Floor(num))
}
