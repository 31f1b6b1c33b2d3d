package strategy

import (
	"fmt"
	"math"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const BandPeriod = 20
const BandDeviation = 2.00

// BandWidthStrategy is a mean-reversion voter built on Bollinger bands:
// a price under the lower band votes BUY, a price over the upper band
// votes SELL. Confidence scales with how far outside the band the
// price sits, relative to the band width.
type BandWidthStrategy struct {
}

func (s *BandWidthStrategy) GetStrategyId() string {
	return "band_width"
}

func (s *BandWidthStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	closes := snapshot.Window.Closes()

	if len(closes) < BandPeriod {
		return model.HoldVote(s.GetStrategyId(), fmt.Sprintf("not enough samples for bands: %d", len(closes))), nil
	}

	tail := closes[len(closes)-BandPeriod:]
	middle := mean(tail)
	deviation := stdDev(tail, middle)

	upper := middle + BandDeviation*deviation
	lower := middle - BandDeviation*deviation
	width := upper - lower

	price := snapshot.CurrentPrice

	indicators := map[string]float64{
		"upperBand": upper,
		"lowerBand": lower,
		"middle":    middle,
		"price":     price,
	}

	if width <= 0.00 {
		return model.HoldVote(s.GetStrategyId(), "flat band, no signal"), nil
	}

	if price < lower {
		confidence := clamp01((lower - price) / width)

		return model.NewVote(
			s.GetStrategyId(),
			model.ActionBuy,
			confidence,
			confidence,
			fmt.Sprintf("price %.4f below lower band %.4f", price, lower),
			indicators,
		)
	}

	if price > upper {
		confidence := clamp01((price - upper) / width)

		return model.NewVote(
			s.GetStrategyId(),
			model.ActionSell,
			confidence,
			confidence,
			fmt.Sprintf("price %.4f above upper band %.4f", price, upper),
			indicators,
		)
	}

	return model.NewVote(
		s.GetStrategyId(),
		model.ActionHold,
		0.50,
		0.00,
		fmt.Sprintf("price %.4f inside bands [%.4f, %.4f]", price, lower, upper),
		indicators,
	)
}

func mean(values []float64) float64 {
	sum := 0.00
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

func stdDev(values []float64, average float64) float64 {
	sum := 0.00
	for _, value := range values {
		sum += (value - average) * (value - average)
	}

	return math.Sqrt(sum / float64(len(values)))
}
