package service

import (
	"sync"

	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/utils"
)

const performanceRefreshSeconds = 300
const performanceMinTrades = 5

type StrategyStatsSourceInterface interface {
	GetStrategyStats() []model.StrategyStats
}

// PerformanceTracker maps realized per-strategy win rates onto vote
// weight multipliers. Strategies with too little history stay neutral
// at 1.0; the consensus engine clamps the output to [0.5, 1.5].
type PerformanceTracker struct {
	StatsSource StrategyStatsSourceInterface
	TimeService utils.TimeServiceInterface

	mu          sync.Mutex
	multipliers map[string]float64
	refreshedAt int64
}

func (t *PerformanceTracker) GetPerformanceMultiplier(strategyId string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.TimeService.GetNowUnix()

	if t.multipliers == nil || now-t.refreshedAt > performanceRefreshSeconds {
		t.refresh(now)
	}

	if multiplier, ok := t.multipliers[strategyId]; ok {
		return multiplier
	}

	return 1.00
}

func (t *PerformanceTracker) refresh(now int64) {
	t.multipliers = make(map[string]float64)
	t.refreshedAt = now

	for _, stats := range t.StatsSource.GetStrategyStats() {
		total := stats.Wins + stats.Losses

		if total < performanceMinTrades {
			continue
		}

		winRate := float64(stats.Wins) / float64(total)

		// win rate 0.0 -> 0.5, win rate 1.0 -> 1.5
		t.multipliers[stats.StrategyId] = 0.50 + winRate
	}
}
