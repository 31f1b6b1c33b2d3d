package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const kLineWindowLimit = 500

type MarketReaderInterface interface {
	GetLastKLine(symbol string) *model.KLine
	GetSnapshot(symbol string) *model.MarketSnapshot
}

// MarketRepository keeps the recent OHLC window and last ticker per
// symbol in memory; the last ticker is mirrored into Redis so other
// processes can observe the feed.
type MarketRepository struct {
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot

	mu      sync.RWMutex
	kLines  map[string]model.KLineWindow
	tickers map[string]model.Ticker
}

func (repo *MarketRepository) AddKLine(kLine model.KLine) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.kLines == nil {
		repo.kLines = make(map[string]model.KLineWindow)
	}

	window := repo.kLines[kLine.Symbol]

	if len(window) > 0 && window[len(window)-1].Timestamp == kLine.Timestamp {
		window[len(window)-1] = kLine
	} else {
		window = append(window, kLine)
	}

	if len(window) > kLineWindowLimit {
		window = window[len(window)-kLineWindowLimit:]
	}

	repo.kLines[kLine.Symbol] = window
}

func (repo *MarketRepository) SetTicker(ticker model.Ticker) {
	repo.mu.Lock()
	if repo.tickers == nil {
		repo.tickers = make(map[string]model.Ticker)
	}
	repo.tickers[ticker.Symbol] = ticker
	repo.mu.Unlock()

	if encoded, err := json.Marshal(ticker); err == nil {
		repo.RDB.Set(*repo.Ctx, repo.getTickerCacheKey(ticker.Symbol), string(encoded), time.Minute)
	}
}

func (repo *MarketRepository) GetTicker(symbol string) *model.Ticker {
	repo.mu.RLock()
	ticker, ok := repo.tickers[symbol]
	repo.mu.RUnlock()

	if ok {
		return &ticker
	}

	cached := repo.RDB.Get(*repo.Ctx, repo.getTickerCacheKey(symbol)).Val()
	if len(cached) > 0 {
		var dto model.Ticker
		if err := json.Unmarshal([]byte(cached), &dto); err == nil {
			return &dto
		}
	}

	return nil
}

func (repo *MarketRepository) GetLastKLine(symbol string) *model.KLine {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	return repo.kLines[symbol].Last()
}

func (repo *MarketRepository) GetKLineWindow(symbol string) model.KLineWindow {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	window := repo.kLines[symbol]
	copied := make(model.KLineWindow, len(window))
	copy(copied, window)

	return copied
}

// GetCloses exposes the close series for correlation checks.
func (repo *MarketRepository) GetCloses(symbol string) []float64 {
	return repo.GetKLineWindow(symbol).Closes()
}

// GetSnapshot builds the read-only market view used for the whole of
// one decision cycle.
func (repo *MarketRepository) GetSnapshot(symbol string) *model.MarketSnapshot {
	window := repo.GetKLineWindow(symbol)
	ticker := repo.GetTicker(symbol)

	currentPrice := 0.00
	if ticker != nil {
		currentPrice = ticker.Price.Value()
	} else if last := window.Last(); last != nil {
		currentPrice = last.Close.Value()
	}

	if currentPrice <= 0.00 {
		return nil
	}

	return &model.MarketSnapshot{
		Symbol:       symbol,
		CurrentPrice: currentPrice,
		Window:       window,
		UpdatedAt:    time.Now().Unix(),
	}
}

func (repo *MarketRepository) getTickerCacheKey(symbol string) string {
	return fmt.Sprintf("ticker-%s-bot-%d", symbol, repo.CurrentBot.Id)
}
