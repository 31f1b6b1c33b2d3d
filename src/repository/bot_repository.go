package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type BotRepository struct {
	DB  *sql.DB
	RDB *redis.Client
	Ctx *context.Context
}

func (repo *BotRepository) GetCurrentBot(botUuid string) *model.Bot {
	var bot model.Bot

	err := repo.DB.QueryRow(`
		SELECT
			b.id as Id,
			b.uuid as BotUuid,
			b.exchange as Exchange
		FROM bots b
		WHERE b.uuid = ?`,
		botUuid,
	).Scan(
		&bot.Id,
		&bot.BotUuid,
		&bot.Exchange,
	)

	if err != nil {
		return nil
	}

	return &bot
}

func (repo *BotRepository) Create(bot model.Bot) error {
	_, err := repo.DB.Exec(`
		INSERT INTO bots SET
			uuid = ?,
			exchange = ?
	`,
		bot.BotUuid,
		bot.Exchange,
	)

	if err != nil {
		log.Println(err)

		return err
	}

	return nil
}
