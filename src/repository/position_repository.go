package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type PositionStorageInterface interface {
	Create(position model.Position) error
	Update(position model.Position) error
	GetOpenPositions() []model.Position
}

type PositionRepository struct {
	DB         *sql.DB
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
}

func (repo *PositionRepository) Create(position model.Position) error {
	_, err := repo.DB.Exec(`
		INSERT INTO positions SET
			id = ?,
			bot_id = ?,
			strategy_id = ?,
			symbol = ?,
			side = ?,
			size = ?,
			entry_price = ?,
			current_price = ?,
			stop_loss = ?,
			take_profit = ?,
			trailing_stop = ?,
			trailing_distance = ?,
			status = ?,
			unrealized_pnl = ?,
			max_drawdown = ?,
			order_id = ?,
			close_reason = ?,
			created_at = ?
	`,
		position.Id,
		repo.CurrentBot.Id,
		position.StrategyId,
		position.Symbol,
		position.Side,
		position.Size,
		position.EntryPrice,
		position.CurrentPrice,
		position.StopLoss,
		position.TakeProfit,
		position.TrailingStop,
		position.TrailingDistance,
		position.Status,
		position.UnrealizedPnl,
		position.MaxDrawdown,
		position.OrderId,
		position.CloseReason,
		position.CreatedAt,
	)

	if err != nil {
		log.Println(err)

		return err
	}

	repo.savePositionCache(position)

	return nil
}

func (repo *PositionRepository) Update(position model.Position) error {
	_, err := repo.DB.Exec(`
		UPDATE positions p SET
			p.current_price = ?,
			p.stop_loss = ?,
			p.take_profit = ?,
			p.status = ?,
			p.unrealized_pnl = ?,
			p.max_drawdown = ?,
			p.order_id = ?,
			p.close_reason = ?
		WHERE p.id = ? AND p.bot_id = ?
	`,
		position.CurrentPrice,
		position.StopLoss,
		position.TakeProfit,
		position.Status,
		position.UnrealizedPnl,
		position.MaxDrawdown,
		position.OrderId,
		position.CloseReason,
		position.Id,
		repo.CurrentBot.Id,
	)

	if err != nil {
		log.Println(err)

		return err
	}

	if position.IsTerminal() {
		repo.deletePositionCache(position)
	} else {
		repo.savePositionCache(position)
	}

	return nil
}

func (repo *PositionRepository) Find(id string) (model.Position, error) {
	var position model.Position

	err := repo.DB.QueryRow(`
		SELECT
			p.id as Id,
			p.strategy_id as StrategyId,
			p.symbol as Symbol,
			p.side as Side,
			p.size as Size,
			p.entry_price as EntryPrice,
			p.current_price as CurrentPrice,
			p.stop_loss as StopLoss,
			p.take_profit as TakeProfit,
			p.trailing_stop as TrailingStop,
			p.trailing_distance as TrailingDistance,
			p.status as Status,
			p.unrealized_pnl as UnrealizedPnl,
			p.max_drawdown as MaxDrawdown,
			p.order_id as OrderId,
			p.close_reason as CloseReason,
			p.created_at as CreatedAt
		FROM positions p
		WHERE p.id = ? AND p.bot_id = ?`,
		id,
		repo.CurrentBot.Id,
	).Scan(
		&position.Id,
		&position.StrategyId,
		&position.Symbol,
		&position.Side,
		&position.Size,
		&position.EntryPrice,
		&position.CurrentPrice,
		&position.StopLoss,
		&position.TakeProfit,
		&position.TrailingStop,
		&position.TrailingDistance,
		&position.Status,
		&position.UnrealizedPnl,
		&position.MaxDrawdown,
		&position.OrderId,
		&position.CloseReason,
		&position.CreatedAt,
	)

	if err != nil {
		return position, err
	}

	return position, nil
}

// GetOpenPositions loads every non-terminal position, used to rebuild
// the in-memory set after a restart.
func (repo *PositionRepository) GetOpenPositions() []model.Position {
	positions := make([]model.Position, 0)

	res, err := repo.DB.Query(`
		SELECT
			p.id as Id,
			p.strategy_id as StrategyId,
			p.symbol as Symbol,
			p.side as Side,
			p.size as Size,
			p.entry_price as EntryPrice,
			p.current_price as CurrentPrice,
			p.stop_loss as StopLoss,
			p.take_profit as TakeProfit,
			p.trailing_stop as TrailingStop,
			p.trailing_distance as TrailingDistance,
			p.status as Status,
			p.unrealized_pnl as UnrealizedPnl,
			p.max_drawdown as MaxDrawdown,
			p.order_id as OrderId,
			p.close_reason as CloseReason,
			p.created_at as CreatedAt
		FROM positions p
		WHERE p.status = ? AND p.bot_id = ?`,
		model.PositionStatusOpen,
		repo.CurrentBot.Id,
	)

	if err != nil {
		log.Println(err)

		return positions
	}

	defer res.Close()

	for res.Next() {
		var position model.Position

		err := res.Scan(
			&position.Id,
			&position.StrategyId,
			&position.Symbol,
			&position.Side,
			&position.Size,
			&position.EntryPrice,
			&position.CurrentPrice,
			&position.StopLoss,
			&position.TakeProfit,
			&position.TrailingStop,
			&position.TrailingDistance,
			&position.Status,
			&position.UnrealizedPnl,
			&position.MaxDrawdown,
			&position.OrderId,
			&position.CloseReason,
			&position.CreatedAt,
		)

		if err != nil {
			log.Println(err)
			continue
		}

		positions = append(positions, position)
	}

	return positions
}

func (repo *PositionRepository) savePositionCache(position model.Position) {
	encoded, err := json.Marshal(position)

	if err == nil {
		repo.RDB.Set(*repo.Ctx, repo.getPositionCacheKey(position.Id), string(encoded), time.Hour)
	}
}

func (repo *PositionRepository) deletePositionCache(position model.Position) {
	repo.RDB.Del(*repo.Ctx, repo.getPositionCacheKey(position.Id))
}

func (repo *PositionRepository) getPositionCacheKey(id string) string {
	return fmt.Sprintf("position-%s-bot-%d", id, repo.CurrentBot.Id)
}
