package model

import (
	"database/sql/driver"
	"encoding/json"
)

// TradingSettings is the live parameter set. Re-read at the start of
// every cycle, never cached across cycles.
type TradingSettings struct {
	SystemEnabled  bool   `json:"systemEnabled"`
	TradingEnabled bool   `json:"tradingEnabled"`
	Symbol         string `json:"symbol"`

	CycleIntervalSeconds   int64 `json:"cycleIntervalSeconds"`
	MonitorIntervalSeconds int64 `json:"monitorIntervalSeconds"`
	CycleCooldownSeconds   int64 `json:"cycleCooldownSeconds"`
	StrategyTimeoutSeconds int64 `json:"strategyTimeoutSeconds"`

	SignalTimeoutSeconds int64   `json:"signalTimeoutSeconds"`
	MinSignalStrength    float64 `json:"minSignalStrength"`
	MinParticipationRate float64 `json:"minParticipationRate"`
	DecisionThreshold    float64 `json:"decisionThreshold"`

	TradeAmountCap  float64 `json:"tradeAmountCap"`
	MinOrderAmount  float64 `json:"minOrderAmount"`
	TickSize        float64 `json:"tickSize"`
	KellyCap        float64 `json:"kellyCap"`
	MinWinRate      float64 `json:"minWinRate"`
	AvgWinLossRatio float64 `json:"avgWinLossRatio"`
	AtrWindow       int64   `json:"atrWindow"`
	AtrMultiplier   float64 `json:"atrMultiplier"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`

	MaxPositions             int64   `json:"maxPositions"`
	MaxTotalExposureRatio    float64 `json:"maxTotalExposureRatio"`
	MaxStrategyExposureRatio float64 `json:"maxStrategyExposureRatio"`
	MaxDailyTrades           int64   `json:"maxDailyTrades"`
	DailyLossLimit           float64 `json:"dailyLossLimit"`
	MaxCorrelation           float64 `json:"maxCorrelation"`
	MaxCorrelatedPositions   int64   `json:"maxCorrelatedPositions"`

	TrailingStopEnabled  bool    `json:"trailingStopEnabled"`
	TrailingStopDistance float64 `json:"trailingStopDistance"`

	OrderRetryCount     int64 `json:"orderRetryCount"`
	OrderRetryBackoffMs int64 `json:"orderRetryBackoffMs"`
	LockWaitTimeoutMs   int64 `json:"lockWaitTimeoutMs"`
}

func (s *TradingSettings) Scan(src interface{}) error {
	return json.Unmarshal(src.([]byte), &s)
}

func (s TradingSettings) Value() (driver.Value, error) {
	jsonV, err := json.Marshal(s)
	return string(jsonV), err
}

func DefaultTradingSettings() TradingSettings {
	return TradingSettings{
		SystemEnabled:  true,
		TradingEnabled: true,
		Symbol:         "KRW-BTC",

		CycleIntervalSeconds:   60,
		MonitorIntervalSeconds: 5,
		CycleCooldownSeconds:   30,
		StrategyTimeoutSeconds: 10,

		SignalTimeoutSeconds: 300,
		MinSignalStrength:    0.10,
		MinParticipationRate: 0.60,
		DecisionThreshold:    0.30,

		TradeAmountCap:  300000.00,
		MinOrderAmount:  5000.00,
		TickSize:        1.00,
		KellyCap:        0.25,
		MinWinRate:      0.55,
		AvgWinLossRatio: 1.50,
		AtrWindow:       14,
		AtrMultiplier:   1.50,
		RiskRewardRatio: 2.00,

		MaxPositions:             5,
		MaxTotalExposureRatio:    0.50,
		MaxStrategyExposureRatio: 0.20,
		MaxDailyTrades:           10,
		DailyLossLimit:           50000.00,
		MaxCorrelation:           0.70,
		MaxCorrelatedPositions:   2,

		TrailingStopEnabled:  true,
		TrailingStopDistance: 0.03,

		OrderRetryCount:     3,
		OrderRetryBackoffMs: 500,
		LockWaitTimeoutMs:   2000,
	}
}
