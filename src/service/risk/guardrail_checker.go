package risk

import (
	"errors"
	"fmt"
	"math"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const correlationMinSamples = 10

// CandidateTrade is the proposal handed to the guardrails after the
// sizer has accepted it.
type CandidateTrade struct {
	StrategyId string
	Symbol     string
	Side       string
	Amount     float64
}

// CloseHistorySourceInterface provides recent close prices per symbol
// for the pairwise correlation check.
type CloseHistorySourceInterface interface {
	GetCloses(symbol string) []float64
}

// GuardrailChecker runs the portfolio limits in a fixed order and
// rejects on the first violation. Every rejection reason names the
// limit that fired so the audit trail stays unambiguous.
type GuardrailChecker struct {
	CloseHistory CloseHistorySourceInterface
}

func (c *GuardrailChecker) Check(
	candidate CandidateTrade,
	portfolio *model.PortfolioState,
	openPositions []model.Position,
	equity float64,
	settings model.TradingSettings,
) error {
	if portfolio.OpenPositions >= settings.MaxPositions {
		return errors.New(fmt.Sprintf(
			"max open positions reached: %d/%d",
			portfolio.OpenPositions,
			settings.MaxPositions,
		))
	}

	if equity > 0.00 && (portfolio.TotalExposure+candidate.Amount)/equity > settings.MaxTotalExposureRatio {
		return errors.New(fmt.Sprintf(
			"total exposure limit exceeded: %.2f + %.2f over %.0f%% of equity %.2f",
			portfolio.TotalExposure,
			candidate.Amount,
			settings.MaxTotalExposureRatio*100.00,
			equity,
		))
	}

	strategyExposure := portfolio.StrategyExposure[candidate.StrategyId]
	if equity > 0.00 && (strategyExposure+candidate.Amount)/equity > settings.MaxStrategyExposureRatio {
		return errors.New(fmt.Sprintf(
			"strategy exposure limit exceeded for %s: %.2f + %.2f over %.0f%% of equity %.2f",
			candidate.StrategyId,
			strategyExposure,
			candidate.Amount,
			settings.MaxStrategyExposureRatio*100.00,
			equity,
		))
	}

	if portfolio.DailyTrades >= settings.MaxDailyTrades {
		return errors.New(fmt.Sprintf(
			"daily trade limit reached: %d/%d",
			portfolio.DailyTrades,
			settings.MaxDailyTrades,
		))
	}

	if portfolio.DailyPnl <= -settings.DailyLossLimit {
		return errors.New(fmt.Sprintf(
			"daily loss limit reached: %.2f against limit %.2f",
			portfolio.DailyPnl,
			settings.DailyLossLimit,
		))
	}

	correlated := c.countCorrelated(candidate, openPositions, settings.MaxCorrelation)
	if correlated >= settings.MaxCorrelatedPositions {
		return errors.New(fmt.Sprintf(
			"too many correlated positions: %d at correlation above %.2f",
			correlated,
			settings.MaxCorrelation,
		))
	}

	return nil
}

func (c *GuardrailChecker) countCorrelated(
	candidate CandidateTrade,
	openPositions []model.Position,
	maxCorrelation float64,
) int64 {
	if c.CloseHistory == nil {
		return 0
	}

	candidateCloses := c.CloseHistory.GetCloses(candidate.Symbol)

	counted := make(map[string]bool)
	correlated := int64(0)

	for _, position := range openPositions {
		if !position.IsOpen() || counted[position.Symbol] {
			continue
		}

		counted[position.Symbol] = true

		if position.Symbol == candidate.Symbol {
			correlated++
			continue
		}

		correlation := PearsonCorrelation(candidateCloses, c.CloseHistory.GetCloses(position.Symbol))

		if math.Abs(correlation) > maxCorrelation {
			correlated++
		}
	}

	return correlated
}

// PearsonCorrelation over the overlapping tail of both series. Too few
// samples yields 0 so a cold cache never blocks a trade by itself.
func PearsonCorrelation(first []float64, second []float64) float64 {
	length := len(first)
	if len(second) < length {
		length = len(second)
	}

	if length < correlationMinSamples {
		return 0.00
	}

	a := first[len(first)-length:]
	b := second[len(second)-length:]

	meanA := 0.00
	meanB := 0.00
	for i := 0; i < length; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(length)
	meanB /= float64(length)

	covariance := 0.00
	varianceA := 0.00
	varianceB := 0.00

	for i := 0; i < length; i++ {
		deltaA := a[i] - meanA
		deltaB := b[i] - meanB
		covariance += deltaA * deltaB
		varianceA += deltaA * deltaA
		varianceB += deltaB * deltaB
	}

	if varianceA == 0.00 || varianceB == 0.00 {
		return 0.00
	}

	return covariance / math.Sqrt(varianceA*varianceB)
}
