package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gitlab.com/open-soft/go-vote-trader/src/client"
	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
)

const backfillCandleCount = 200
const candleRefreshSeconds = 60

// MarketFeedService keeps the market repository warm: a REST backfill
// of recent candles at startup and once a minute afterwards, plus a
// live ticker stream over websocket in between.
type MarketFeedService struct {
	Exchange         client.ExchangeAPIInterface
	MarketRepository *repository.MarketRepository
	ConfigService    ConfigServiceInterface
	StreamAddress    string
}

func (s *MarketFeedService) Start(ctx context.Context) {
	settings := s.ConfigService.GetActual()

	s.backfill(settings.Symbol)

	tickerChannel := make(chan []byte, 64)
	connection := client.Listen(s.StreamAddress, tickerChannel, []string{settings.Symbol}, 1)
	defer connection.Close()

	refresh := time.NewTicker(time.Duration(candleRefreshSeconds) * time.Second)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[feed] Stopped")

			return
		case message := <-tickerChannel:
			var ticker model.Ticker
			if err := json.Unmarshal(message, &ticker); err != nil {
				log.Printf("[feed] Unreadable ticker frame: %s", err.Error())
				continue
			}

			if len(ticker.Symbol) == 0 || ticker.Price.Value() <= 0.00 {
				continue
			}

			s.MarketRepository.SetTicker(ticker)
		case <-refresh.C:
			s.backfill(s.ConfigService.GetActual().Symbol)
		}
	}
}

func (s *MarketFeedService) backfill(symbol string) {
	kLines, err := s.Exchange.GetCandles(symbol, "1", backfillCandleCount)

	if err != nil {
		log.Printf("[%s] Candle backfill failed: %s", symbol, err.Error())

		return
	}

	for _, kLine := range kLines {
		s.MarketRepository.AddKLine(kLine)
	}
}
