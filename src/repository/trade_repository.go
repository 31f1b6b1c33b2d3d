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

type AuditStorageInterface interface {
	CreateVote(vote model.Vote) error
	CreateDecision(decision model.Decision) error
	CreateTrade(trade model.Trade) error
}

// TradeRepository is the append-only audit log for votes, decisions
// and executed trades.
type TradeRepository struct {
	DB         *sql.DB
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
}

func (repo *TradeRepository) CreateVote(vote model.Vote) error {
	indicators, err := json.Marshal(vote.Indicators)

	if err != nil {
		return err
	}

	_, err = repo.DB.Exec(`
		INSERT INTO votes SET
			bot_id = ?,
			strategy_id = ?,
			action = ?,
			confidence = ?,
			strength = ?,
			reasoning = ?,
			indicators = ?,
			timestamp = ?
	`,
		repo.CurrentBot.Id,
		vote.StrategyId,
		vote.Action,
		vote.Confidence,
		vote.Strength,
		vote.Reasoning,
		string(indicators),
		vote.Timestamp.Value(),
	)

	if err != nil {
		log.Println(err)

		return err
	}

	return nil
}

func (repo *TradeRepository) CreateDecision(decision model.Decision) error {
	distribution, err := json.Marshal(decision.Distribution)

	if err != nil {
		return err
	}

	strategies, err := json.Marshal(decision.Strategies)

	if err != nil {
		return err
	}

	_, err = repo.DB.Exec(`
		INSERT INTO decisions SET
			bot_id = ?,
			action = ?,
			confidence = ?,
			total_votes = ?,
			distribution = ?,
			strategies = ?,
			reasoning = ?,
			timestamp = ?
	`,
		repo.CurrentBot.Id,
		decision.Action,
		decision.Confidence,
		decision.TotalVotes,
		string(distribution),
		string(strategies),
		decision.Reasoning,
		decision.Timestamp.Value(),
	)

	if err != nil {
		log.Println(err)

		return err
	}

	repo.saveLastDecisionCache(decision)

	return nil
}

func (repo *TradeRepository) CreateTrade(trade model.Trade) error {
	_, err := repo.DB.Exec(`
		INSERT INTO trades SET
			bot_id = ?,
			position_id = ?,
			strategy_id = ?,
			symbol = ?,
			side = ?,
			price = ?,
			amount = ?,
			pnl = ?,
			reason = ?,
			created_at = ?
	`,
		repo.CurrentBot.Id,
		trade.PositionId,
		trade.StrategyId,
		trade.Symbol,
		trade.Side,
		trade.Price,
		trade.Amount,
		trade.Pnl,
		trade.Reason,
		trade.CreatedAt,
	)

	if err != nil {
		log.Println(err)

		return err
	}

	return nil
}

// GetLastDecision reads the most recent decision from the Redis cache.
func (repo *TradeRepository) GetLastDecision() *model.Decision {
	cached := repo.RDB.Get(*repo.Ctx, repo.getLastDecisionCacheKey()).Val()

	if len(cached) == 0 {
		return nil
	}

	var decision model.Decision
	if err := json.Unmarshal([]byte(cached), &decision); err != nil {
		return nil
	}

	return &decision
}

func (repo *TradeRepository) saveLastDecisionCache(decision model.Decision) {
	encoded, err := json.Marshal(decision)

	if err == nil {
		repo.RDB.Set(*repo.Ctx, repo.getLastDecisionCacheKey(), string(encoded), time.Hour)
	}
}

func (repo *TradeRepository) getLastDecisionCacheKey() string {
	return fmt.Sprintf("decision-last-bot-%d", repo.CurrentBot.Id)
}

// GetStrategyStats aggregates realized wins and losses per strategy,
// used to weight future votes by recent performance.
func (repo *TradeRepository) GetStrategyStats() []model.StrategyStats {
	stats := make([]model.StrategyStats, 0)

	res, err := repo.DB.Query(`
		SELECT
			t.strategy_id as StrategyId,
			SUM(t.pnl > 0) as Wins,
			SUM(t.pnl < 0) as Losses
		FROM trades t
		WHERE t.bot_id = ? AND t.pnl != 0
		GROUP BY t.strategy_id`,
		repo.CurrentBot.Id,
	)

	if err != nil {
		log.Println(err)

		return stats
	}

	defer res.Close()

	for res.Next() {
		var item model.StrategyStats

		err := res.Scan(&item.StrategyId, &item.Wins, &item.Losses)

		if err != nil {
			log.Println(err)
			continue
		}

		stats = append(stats, item)
	}

	return stats
}

func (repo *TradeRepository) GetRecentDecisions(limit int64) []model.Decision {
	decisions := make([]model.Decision, 0)

	res, err := repo.DB.Query(`
		SELECT
			d.action as Action,
			d.confidence as Confidence,
			d.total_votes as TotalVotes,
			d.distribution as Distribution,
			d.strategies as Strategies,
			d.reasoning as Reasoning,
			d.timestamp as Timestamp
		FROM decisions d
		WHERE d.bot_id = ?
		ORDER BY d.id DESC
		LIMIT ?`,
		repo.CurrentBot.Id,
		limit,
	)

	if err != nil {
		log.Println(err)

		return decisions
	}

	defer res.Close()

	for res.Next() {
		var decision model.Decision
		var distribution []byte
		var strategies []byte

		err := res.Scan(
			&decision.Action,
			&decision.Confidence,
			&decision.TotalVotes,
			&distribution,
			&strategies,
			&decision.Reasoning,
			&decision.Timestamp,
		)

		if err != nil {
			log.Println(err)
			continue
		}

		_ = json.Unmarshal(distribution, &decision.Distribution)
		_ = json.Unmarshal(strategies, &decision.Strategies)

		decisions = append(decisions, decision)
	}

	return decisions
}
