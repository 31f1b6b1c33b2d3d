package strategy

import (
	"errors"
	"fmt"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const RsiPeriod = 14
const RsiOversold = 30.00
const RsiOverbought = 70.00

// RsiMomentumStrategy votes on RSI extremes: oversold markets produce
// BUY votes, overbought markets produce SELL votes, everything in
// between is a HOLD. Confidence scales with the distance from the
// threshold.
type RsiMomentumStrategy struct {
}

func (s *RsiMomentumStrategy) GetStrategyId() string {
	return "rsi_momentum"
}

func (s *RsiMomentumStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	closes := snapshot.Window.Closes()

	if len(closes) < RsiPeriod+1 {
		return model.HoldVote(s.GetStrategyId(), fmt.Sprintf("not enough samples for RSI: %d", len(closes))), nil
	}

	rsi, err := calculateRsi(closes, RsiPeriod)

	if err != nil {
		return model.Vote{}, err
	}

	indicators := map[string]float64{
		"rsi":   rsi,
		"price": snapshot.CurrentPrice,
	}

	if rsi <= RsiOversold {
		confidence := clamp01((RsiOversold - rsi) / RsiOversold)

		return model.NewVote(
			s.GetStrategyId(),
			model.ActionBuy,
			confidence,
			confidence,
			fmt.Sprintf("RSI oversold: %.2f", rsi),
			indicators,
		)
	}

	if rsi >= RsiOverbought {
		confidence := clamp01((rsi - RsiOverbought) / (100.00 - RsiOverbought))

		return model.NewVote(
			s.GetStrategyId(),
			model.ActionSell,
			confidence,
			confidence,
			fmt.Sprintf("RSI overbought: %.2f", rsi),
			indicators,
		)
	}

	return model.NewVote(
		s.GetStrategyId(),
		model.ActionHold,
		0.50,
		0.00,
		fmt.Sprintf("RSI neutral: %.2f", rsi),
		indicators,
	)
}

func calculateRsi(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0.00, errors.New(fmt.Sprintf("RSI needs %d samples, got %d", period+1, len(closes)))
	}

	tail := closes[len(closes)-period-1:]

	gainSum := 0.00
	lossSum := 0.00

	for i := 1; i < len(tail); i++ {
		delta := tail[i] - tail[i-1]

		if delta > 0.00 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}

	if lossSum == 0.00 {
		return 100.00, nil
	}

	rs := (gainSum / float64(period)) / (lossSum / float64(period))

	return 100.00 - (100.00 / (1.00 + rs)), nil
}

func clamp01(value float64) float64 {
	if value < 0.00 {
		return 0.00
	}

	if value > 1.00 {
		return 1.00
	}

	return value
}
