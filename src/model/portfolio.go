package model

// PortfolioState is shared between the execution coordinator and the
// lifecycle monitor. Mutated only inside their critical sections.
type PortfolioState struct {
	TotalExposure    float64            `json:"totalExposure"`
	StrategyExposure map[string]float64 `json:"strategyExposure"`
	OpenPositions    int64              `json:"openPositions"`
	DailyTrades      int64              `json:"dailyTrades"`
	DailyPnl         float64            `json:"dailyPnl"`
	Day              string             `json:"day"`
}

func NewPortfolioState(day string) *PortfolioState {
	return &PortfolioState{
		StrategyExposure: make(map[string]float64),
		Day:              day,
	}
}

// Rollover resets the daily counters when the trading day changes.
func (s *PortfolioState) Rollover(day string) bool {
	if s.Day == day {
		return false
	}

	s.Day = day
	s.DailyTrades = 0
	s.DailyPnl = 0.00

	return true
}

func (s *PortfolioState) GetStrategyExposure(strategyId string) float64 {
	return s.StrategyExposure[strategyId]
}

func (s *PortfolioState) RegisterOpen(strategyId string, amount float64) {
	s.TotalExposure += amount
	s.StrategyExposure[strategyId] += amount
	s.OpenPositions++
	s.DailyTrades++
}

func (s *PortfolioState) RegisterClose(strategyId string, amount float64, pnl float64) {
	s.TotalExposure -= amount
	if s.TotalExposure < 0.00 {
		s.TotalExposure = 0.00
	}

	s.StrategyExposure[strategyId] -= amount
	if s.StrategyExposure[strategyId] < 0.00 {
		s.StrategyExposure[strategyId] = 0.00
	}

	if s.OpenPositions > 0 {
		s.OpenPositions--
	}

	s.DailyPnl += pnl
}
