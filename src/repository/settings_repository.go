package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type SettingsStorageInterface interface {
	GetSettings() (model.TradingSettings, error)
	SaveLastKnownGood(settings model.TradingSettings)
	GetLastKnownGood() *model.TradingSettings
}

// SettingsRepository stores the live parameter set in MySQL and keeps
// a last-known-good snapshot in Redis for degraded operation.
type SettingsRepository struct {
	DB         *sql.DB
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
}

func (repo *SettingsRepository) GetSettings() (model.TradingSettings, error) {
	var settings model.TradingSettings

	err := repo.DB.QueryRow(`
		SELECT s.settings as Settings
		FROM trading_settings s
		WHERE s.bot_id = ?`,
		repo.CurrentBot.Id,
	).Scan(&settings)

	if err != nil {
		return settings, err
	}

	return settings, nil
}

func (repo *SettingsRepository) UpdateSettings(settings model.TradingSettings) error {
	_, err := repo.DB.Exec(`
		UPDATE trading_settings s SET s.settings = ?
		WHERE s.bot_id = ?
	`,
		settings,
		repo.CurrentBot.Id,
	)

	if err != nil {
		log.Println(err)

		return err
	}

	return nil
}

func (repo *SettingsRepository) CreateSettings(settings model.TradingSettings) error {
	_, err := repo.DB.Exec(`
		INSERT INTO trading_settings SET
			bot_id = ?,
			settings = ?
	`,
		repo.CurrentBot.Id,
		settings,
	)

	if err != nil {
		log.Println(err)

		return err
	}

	return nil
}

func (repo *SettingsRepository) SaveLastKnownGood(settings model.TradingSettings) {
	encoded, err := json.Marshal(settings)

	if err == nil {
		repo.RDB.Set(*repo.Ctx, repo.getLastKnownGoodCacheKey(), string(encoded), 0)
	}
}

func (repo *SettingsRepository) GetLastKnownGood() *model.TradingSettings {
	cached := repo.RDB.Get(*repo.Ctx, repo.getLastKnownGoodCacheKey()).Val()

	if len(cached) == 0 {
		return nil
	}

	var settings model.TradingSettings
	if err := json.Unmarshal([]byte(cached), &settings); err != nil {
		return nil
	}

	return &settings
}

func (repo *SettingsRepository) getLastKnownGoodCacheKey() string {
	return fmt.Sprintf("trading-settings-lkg-bot-%d", repo.CurrentBot.Id)
}
