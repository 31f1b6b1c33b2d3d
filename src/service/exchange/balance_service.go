package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/client"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type BalanceServiceInterface interface {
	GetBalance(currency string, cache bool) (float64, error)
	InvalidateBalanceCache(currency string)
}

// BalanceService caches the exchange account balance in Redis for a
// short window; order execution invalidates the cache so sizing always
// sees funds spent by the previous trade.
type BalanceService struct {
	Exchange   client.ExchangeAPIInterface
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot
}

func (s *BalanceService) GetBalance(currency string, cache bool) (float64, error) {
	if cache {
		cached := s.RDB.Get(*s.Ctx, s.getBalanceCacheKey(currency)).Val()
		if len(cached) > 0 {
			value, err := strconv.ParseFloat(cached, 64)
			if err == nil {
				return value, nil
			}
		}
	}

	balance, err := s.Exchange.GetBalance(currency)

	if err != nil {
		return 0.00, err
	}

	s.RDB.Set(
		*s.Ctx,
		s.getBalanceCacheKey(currency),
		strconv.FormatFloat(balance, 'f', -1, 64),
		time.Second*30,
	)

	return balance, nil
}

func (s *BalanceService) InvalidateBalanceCache(currency string) {
	s.RDB.Del(*s.Ctx, s.getBalanceCacheKey(currency))
}

func (s *BalanceService) getBalanceCacheKey(currency string) string {
	return fmt.Sprintf("balance-%s-bot-%d", currency, s.CurrentBot.Id)
}
