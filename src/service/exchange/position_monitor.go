package exchange

import (
	"context"
	"log"
	"time"

	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
)

// SettingsSourceInterface provides the current parameter set; the
// monitor re-reads it every tick so interval and trailing changes take
// effect without a restart.
type SettingsSourceInterface interface {
	GetActual() model.TradingSettings
}

// PositionMonitor is the lifecycle worker. It runs at a higher
// frequency than the decision cycle: refresh prices, tighten trailing
// stops, and route triggered exits through the coordinator.
type PositionMonitor struct {
	Coordinator      *ExecutionCoordinator
	MarketRepository repository.MarketReaderInterface
	SettingsSource   SettingsSourceInterface
}

func (m *PositionMonitor) Start(ctx context.Context) {
	for {
		settings := m.SettingsSource.GetActual()

		interval := settings.MonitorIntervalSeconds
		if interval < 1 {
			interval = 1
		}

		select {
		case <-ctx.Done():
			log.Printf("[monitor] Stopped")

			return
		case <-time.After(time.Duration(interval) * time.Second):
			m.Tick(settings)
		}
	}
}

// Tick processes every active position once. Exit submission happens
// outside the coordinator's data mutex, so a slow exchange never
// blocks price refreshes.
func (m *PositionMonitor) Tick(settings model.TradingSettings) {
	if !settings.SystemEnabled {
		return
	}

	for _, position := range m.Coordinator.ActivePositions() {
		price := m.currentPrice(position.Symbol)

		if price <= 0.00 {
			log.Printf("[%s] No fresh price for position %s, skipping tick", position.Symbol, position.Id)
			continue
		}

		triggered, reason, exitPrice := m.Coordinator.RefreshPosition(position.Id, price)

		if !triggered {
			continue
		}

		if err := m.Coordinator.ClosePosition(position.Id, reason, exitPrice, settings); err != nil {
			log.Printf("[%s] Close failed for %s: %s", position.Symbol, position.Id, err.Error())
		}
	}
}

func (m *PositionMonitor) currentPrice(symbol string) float64 {
	snapshot := m.MarketRepository.GetSnapshot(symbol)

	if snapshot == nil {
		return 0.00
	}

	return snapshot.CurrentPrice
}
