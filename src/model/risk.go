package model

// RiskMetrics is the sizer output for one candidate trade.
// Computed fresh per candidate, never persisted as mutable state.
type RiskMetrics struct {
	PositionSize  float64 `json:"positionSize"`
	KellyFraction float64 `json:"kellyFraction"`
	StopLoss      float64 `json:"stopLoss"`
	TakeProfit    float64 `json:"takeProfit"`
	RiskReward    float64 `json:"riskReward"`
	Atr           float64 `json:"atr"`
}
