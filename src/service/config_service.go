package service

import (
	"log"
	"sync"

	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
)

type ConfigServiceInterface interface {
	GetActual() model.TradingSettings
	Subscribe(listener func(settings model.TradingSettings))
}

// ConfigService re-reads the live parameter set on every call. A
// storage failure never stops trading on stale-but-valid parameters:
// the service falls back to the last-known-good snapshot (memory, then
// Redis) and logs a warning, then to compiled defaults as the final
// resort.
type ConfigService struct {
	SettingsRepository repository.SettingsStorageInterface

	mu        sync.Mutex
	lastGood  *model.TradingSettings
	listeners []func(settings model.TradingSettings)
}

func (s *ConfigService) GetActual() model.TradingSettings {
	settings, err := s.SettingsRepository.GetSettings()

	if err == nil {
		s.remember(settings)

		return settings
	}

	log.Printf("[config] Settings read failed, using last known good: %s", err.Error())

	s.mu.Lock()
	cached := s.lastGood
	s.mu.Unlock()

	if cached != nil {
		return *cached
	}

	if snapshot := s.SettingsRepository.GetLastKnownGood(); snapshot != nil {
		s.mu.Lock()
		s.lastGood = snapshot
		s.mu.Unlock()

		return *snapshot
	}

	log.Printf("[config] No last known good snapshot, using defaults")

	return model.DefaultTradingSettings()
}

func (s *ConfigService) Subscribe(listener func(settings model.TradingSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, listener)
}

func (s *ConfigService) remember(settings model.TradingSettings) {
	s.mu.Lock()

	changed := s.lastGood == nil || *s.lastGood != settings
	s.lastGood = &settings
	listeners := s.listeners

	s.mu.Unlock()

	s.SettingsRepository.SaveLastKnownGood(settings)

	if changed {
		for _, listener := range listeners {
			listener(settings)
		}
	}
}
