package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

func sizerSettings() model.TradingSettings {
	settings := model.DefaultTradingSettings()
	settings.KellyCap = 0.25
	settings.MinWinRate = 0.55
	settings.AvgWinLossRatio = 1.00
	settings.TradeAmountCap = 1_000_000.00
	settings.MinOrderAmount = 5_000.00
	settings.AtrWindow = 14
	settings.AtrMultiplier = 1.50
	settings.RiskRewardRatio = 2.00

	return settings
}

func buyDecision(confidence float64) model.Decision {
	return model.Decision{
		Action:     model.ActionBuy,
		Confidence: confidence,
		Strategies: []string{"rsi_momentum"},
	}
}

func flatWindow(count int, price float64) model.KLineWindow {
	window := make(model.KLineWindow, 0, count)
	for i := 0; i < count; i++ {
		window = append(window, model.KLine{
			Open:      model.Price(price),
			High:      model.Price(price),
			Low:       model.Price(price),
			Close:     model.Price(price),
			Timestamp: model.TimestampMilli(int64(i) * 60_000),
		})
	}

	return window
}

func TestKellyCappedSizing(t *testing.T) {
	assertion := assert.New(t)

	sizer := PositionSizer{}

	// edge = 0.55 - 0.45/1.0 = 0.10, fraction = 0.10 * 0.8 = 0.08
	metrics, err := sizer.Calculate(buyDecision(0.80), 1_000_000.00, flatWindow(30, 100.00), 100.00, sizerSettings())

	assertion.Nil(err)
	assertion.InDelta(0.08, metrics.KellyFraction, 0.0001)
	assertion.InDelta(80_000.00, metrics.PositionSize, 0.01)
}

func TestKellyFractionNeverExceedsCap(t *testing.T) {
	assertion := assert.New(t)

	settings := sizerSettings()
	settings.MinWinRate = 0.90
	settings.AvgWinLossRatio = 5.00

	sizer := PositionSizer{}

	metrics, err := sizer.Calculate(buyDecision(1.00), 1_000_000.00, flatWindow(30, 100.00), 100.00, settings)

	assertion.Nil(err)
	assertion.Equal(0.25, metrics.KellyFraction)
}

func TestKellyFractionFloor(t *testing.T) {
	assertion := assert.New(t)

	settings := sizerSettings()
	settings.MinWinRate = 0.40

	sizer := PositionSizer{}

	// negative edge floors at the 5% minimum fraction
	metrics, err := sizer.Calculate(buyDecision(0.50), 1_000_000.00, flatWindow(30, 100.00), 100.00, settings)

	assertion.Nil(err)
	assertion.Equal(0.05, metrics.KellyFraction)
}

func TestAtrFallbackOnShortWindow(t *testing.T) {
	assertion := assert.New(t)

	sizer := PositionSizer{}

	atr := sizer.CalculateAtr(flatWindow(2, 100.00), 14, 200.00)

	assertion.InDelta(2.00, atr, 0.0001)
}

func TestAtrFromTrueRanges(t *testing.T) {
	assertion := assert.New(t)

	window := model.KLineWindow{}
	prices := []float64{100.00, 102.00, 101.00, 104.00, 103.00}
	for i, price := range prices {
		window = append(window, model.KLine{
			High:      model.Price(price + 1.00),
			Low:       model.Price(price - 1.00),
			Close:     model.Price(price),
			Timestamp: model.TimestampMilli(int64(i) * 60_000),
		})
	}

	sizer := PositionSizer{}

	// true ranges: 3, 2, 4, 2 -> average 2.75
	atr := sizer.CalculateAtr(window, 14, 100.00)

	assertion.InDelta(2.75, atr, 0.0001)
}

func TestProtectiveLevelsLong(t *testing.T) {
	assertion := assert.New(t)

	settings := sizerSettings()
	sizer := PositionSizer{}

	window := flatWindow(2, 100.00) // forces the 1% ATR fallback

	metrics, err := sizer.Calculate(buyDecision(0.80), 1_000_000.00, window, 100.00, settings)

	assertion.Nil(err)
	assertion.InDelta(1.00, metrics.Atr, 0.0001)
	assertion.InDelta(98.50, metrics.StopLoss, 0.0001)
	assertion.InDelta(103.00, metrics.TakeProfit, 0.0001)
	assertion.Equal(2.00, metrics.RiskReward)
}

func TestProtectiveLevelsShort(t *testing.T) {
	assertion := assert.New(t)

	decision := model.Decision{Action: model.ActionSell, Confidence: 0.80}
	sizer := PositionSizer{}

	metrics, err := sizer.Calculate(decision, 1_000_000.00, flatWindow(2, 100.00), 100.00, sizerSettings())

	assertion.Nil(err)
	assertion.InDelta(101.50, metrics.StopLoss, 0.0001)
	assertion.InDelta(97.00, metrics.TakeProfit, 0.0001)
}

func TestBelowMinimumIsRejected(t *testing.T) {
	assertion := assert.New(t)

	sizer := PositionSizer{}

	metrics, err := sizer.Calculate(buyDecision(0.80), 50_000.00, flatWindow(30, 100.00), 100.00, sizerSettings())

	assertion.Nil(metrics)
	assertion.NotNil(err)
	assertion.Contains(err.Error(), "below minimum order amount")
}

func TestHoldDecisionHasNoSize(t *testing.T) {
	assertion := assert.New(t)

	sizer := PositionSizer{}

	metrics, err := sizer.Calculate(model.HoldDecision("no consensus"), 1_000_000.00, flatWindow(30, 100.00), 100.00, sizerSettings())

	assertion.Nil(metrics)
	assertion.NotNil(err)
}
