package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type SettingsStorageMock struct {
	mock.Mock
}

func (m *SettingsStorageMock) GetSettings() (model.TradingSettings, error) {
	args := m.Called()
	return args.Get(0).(model.TradingSettings), args.Error(1)
}
func (m *SettingsStorageMock) SaveLastKnownGood(settings model.TradingSettings) {
	m.Called(settings)
}
func (m *SettingsStorageMock) GetLastKnownGood() *model.TradingSettings {
	args := m.Called()
	result := args.Get(0)
	if result == nil {
		return nil
	}
	return result.(*model.TradingSettings)
}

func TestGetActualSavesLastKnownGood(t *testing.T) {
	assertion := assert.New(t)

	storage := new(SettingsStorageMock)

	stored := model.DefaultTradingSettings()
	stored.CycleIntervalSeconds = 15

	storage.On("GetSettings").Return(stored, nil)
	storage.On("SaveLastKnownGood", stored).Return()

	configService := ConfigService{SettingsRepository: storage}

	settings := configService.GetActual()

	assertion.Equal(int64(15), settings.CycleIntervalSeconds)
	storage.AssertCalled(t, "SaveLastKnownGood", stored)
}

func TestStorageFailureFallsBackToMemory(t *testing.T) {
	assertion := assert.New(t)

	storage := new(SettingsStorageMock)

	stored := model.DefaultTradingSettings()
	stored.MaxPositions = 3

	storage.On("GetSettings").Return(stored, nil).Once()
	storage.On("SaveLastKnownGood", stored).Return()
	storage.On("GetSettings").Return(model.TradingSettings{}, errors.New("connection refused"))

	configService := ConfigService{SettingsRepository: storage}

	first := configService.GetActual()
	second := configService.GetActual()

	assertion.Equal(first, second)
	assertion.Equal(int64(3), second.MaxPositions)
}

func TestStorageFailureFallsBackToSnapshot(t *testing.T) {
	assertion := assert.New(t)

	storage := new(SettingsStorageMock)

	snapshot := model.DefaultTradingSettings()
	snapshot.MaxDailyTrades = 7

	storage.On("GetSettings").Return(model.TradingSettings{}, errors.New("connection refused"))
	storage.On("GetLastKnownGood").Return(&snapshot)

	configService := ConfigService{SettingsRepository: storage}

	settings := configService.GetActual()

	assertion.Equal(int64(7), settings.MaxDailyTrades)
}

func TestStorageFailureFallsBackToDefaults(t *testing.T) {
	assertion := assert.New(t)

	storage := new(SettingsStorageMock)

	storage.On("GetSettings").Return(model.TradingSettings{}, errors.New("connection refused"))
	storage.On("GetLastKnownGood").Return(nil)

	configService := ConfigService{SettingsRepository: storage}

	settings := configService.GetActual()

	assertion.Equal(model.DefaultTradingSettings(), settings)
}

func TestSubscribersSeeChanges(t *testing.T) {
	assertion := assert.New(t)

	storage := new(SettingsStorageMock)

	stored := model.DefaultTradingSettings()

	storage.On("GetSettings").Return(stored, nil)
	storage.On("SaveLastKnownGood", mock.Anything).Return()

	configService := ConfigService{SettingsRepository: storage}

	notified := 0
	configService.Subscribe(func(settings model.TradingSettings) {
		notified++
	})

	configService.GetActual()
	// unchanged settings do not re-notify
	configService.GetActual()

	assertion.Equal(1, notified)
}
