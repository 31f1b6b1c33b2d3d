package risk

import (
	"errors"
	"fmt"
	"math"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const MinKellyFraction = 0.05
const AtrFallbackRatio = 0.01
const AtrMinSamples = 3

// PositionSizer turns a non-HOLD decision into a concrete order size
// and protective levels. It holds no state: every call is a pure
// function of the decision, balance, window and settings.
type PositionSizer struct {
}

// CalculateAtr averages the true range over the configured window.
// With fewer than three usable samples it falls back to 1% of the
// entry price so a cold start stays conservatively sized.
func (s *PositionSizer) CalculateAtr(window model.KLineWindow, atrWindow int64, entryPrice float64) float64 {
	if atrWindow <= 0 {
		atrWindow = 14
	}

	// one extra sample for the previous close of the oldest range
	tail := window.Tail(int(atrWindow) + 1)

	if tail.Len() < AtrMinSamples+1 {
		return entryPrice * AtrFallbackRatio
	}

	trueRangeSum := 0.00
	samples := 0

	for i := 1; i < tail.Len(); i++ {
		high := tail[i].High.Value()
		low := tail[i].Low.Value()
		previousClose := tail[i-1].Close.Value()

		trueRange := math.Max(
			high-low,
			math.Max(math.Abs(high-previousClose), math.Abs(low-previousClose)),
		)

		trueRangeSum += trueRange
		samples++
	}

	if samples == 0 {
		return entryPrice * AtrFallbackRatio
	}

	return trueRangeSum / float64(samples)
}

// Calculate produces the risk metrics for one candidate trade or an
// error describing why the candidate must be rejected. A rejected
// candidate is never rounded up to a tradeable size.
func (s *PositionSizer) Calculate(
	decision model.Decision,
	balance float64,
	window model.KLineWindow,
	entryPrice float64,
	settings model.TradingSettings,
) (*model.RiskMetrics, error) {
	if decision.IsHold() {
		return nil, errors.New("hold decision has no size")
	}

	if entryPrice <= 0.00 {
		return nil, errors.New(fmt.Sprintf("invalid entry price: %f", entryPrice))
	}

	if balance <= 0.00 {
		return nil, errors.New(fmt.Sprintf("no balance available: %f", balance))
	}

	atr := s.CalculateAtr(window, settings.AtrWindow, entryPrice)

	fraction := s.kellyFraction(decision.Confidence, settings)

	volatilityRatio := atr / entryPrice
	volatilityCap := balance * settings.KellyCap / (1.00 + volatilityRatio*10.00)

	amount := math.Min(settings.TradeAmountCap, math.Min(balance*fraction, volatilityCap))

	if amount < settings.MinOrderAmount {
		return nil, errors.New(fmt.Sprintf(
			"position size %.2f below minimum order amount %.2f",
			amount,
			settings.MinOrderAmount,
		))
	}

	stopDistance := settings.AtrMultiplier * atr
	targetDistance := settings.RiskRewardRatio * stopDistance

	stopLoss := entryPrice - stopDistance
	takeProfit := entryPrice + targetDistance

	if decision.IsSell() {
		stopLoss = entryPrice + stopDistance
		takeProfit = entryPrice - targetDistance
	}

	return &model.RiskMetrics{
		PositionSize:  amount,
		KellyFraction: fraction,
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
		RiskReward:    settings.RiskRewardRatio,
		Atr:           atr,
	}, nil
}

// kellyFraction is the capped Kelly criterion: the historical edge
// scaled by decision confidence, floored at 5% and never above the
// configured cap.
func (s *PositionSizer) kellyFraction(confidence float64, settings model.TradingSettings) float64 {
	baseEdge := settings.MinWinRate - (1.00-settings.MinWinRate)/settings.AvgWinLossRatio

	if baseEdge < 0.00 {
		baseEdge = 0.00
	}

	fraction := math.Max(MinKellyFraction, baseEdge*confidence)

	return math.Min(settings.KellyCap, fraction)
}
