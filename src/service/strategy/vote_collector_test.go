package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type fixedStrategy struct {
	strategyId string
	vote       model.Vote
}

func (s *fixedStrategy) GetStrategyId() string {
	return s.strategyId
}

func (s *fixedStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	return s.vote, nil
}

type failingStrategy struct {
}

func (s *failingStrategy) GetStrategyId() string {
	return "failing"
}

func (s *failingStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	return model.Vote{}, errors.New("indicator source unavailable")
}

type panickingStrategy struct {
}

func (s *panickingStrategy) GetStrategyId() string {
	return "panicking"
}

func (s *panickingStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	panic("division by zero")
}

type slowStrategy struct {
}

func (s *slowStrategy) GetStrategyId() string {
	return "slow"
}

func (s *slowStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	time.Sleep(2 * time.Second)

	return model.HoldVote("slow", "too late"), nil
}

type outOfRangeStrategy struct {
}

func (s *outOfRangeStrategy) GetStrategyId() string {
	return "out_of_range"
}

func (s *outOfRangeStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	return model.Vote{
		StrategyId: "out_of_range",
		Action:     model.ActionBuy,
		Confidence: 1.70,
	}, nil
}

func collectorSettings() model.TradingSettings {
	settings := model.DefaultTradingSettings()
	settings.StrategyTimeoutSeconds = 1

	return settings
}

func TestCollectReplacesFailuresWithHold(t *testing.T) {
	assertion := assert.New(t)

	goodVote, _ := model.NewVote("good", model.ActionBuy, 0.80, 0.80, "oversold", nil)

	registry := NewRegistry()
	registry.Register(&fixedStrategy{strategyId: "good", vote: goodVote})
	registry.Register(&failingStrategy{})
	registry.Register(&panickingStrategy{})
	registry.Register(&outOfRangeStrategy{})

	collector := VoteCollector{Registry: registry}

	votes := collector.Collect(model.MarketSnapshot{Symbol: "KRW-BTC", CurrentPrice: 100.00}, collectorSettings())

	assertion.Len(votes, 4)
	assertion.Equal(model.ActionBuy, votes[0].Action)

	for _, vote := range votes[1:] {
		assertion.Equal(model.ActionHold, vote.Action)
		assertion.Equal(0.00, vote.Confidence)
	}

	assertion.Contains(votes[1].Reasoning, "indicator source unavailable")
	assertion.Contains(votes[2].Reasoning, "strategy panic")
	assertion.Contains(votes[3].Reasoning, "confidence out of range")
}

func TestCollectTimesOutSlowStrategy(t *testing.T) {
	assertion := assert.New(t)

	registry := NewRegistry()
	registry.Register(&slowStrategy{})

	collector := VoteCollector{Registry: registry}

	started := time.Now()
	votes := collector.Collect(model.MarketSnapshot{Symbol: "KRW-BTC", CurrentPrice: 100.00}, collectorSettings())

	assertion.Len(votes, 1)
	assertion.Equal(model.ActionHold, votes[0].Action)
	assertion.Equal("strategy timeout", votes[0].Reasoning)
	assertion.Less(time.Since(started), 2*time.Second)
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	assertion := assert.New(t)

	registry := NewRegistry()
	registry.Register(&RsiMomentumStrategy{})
	registry.Register(&BandWidthStrategy{})

	assertion.Equal(2, registry.Count())
	assertion.Equal("rsi_momentum", registry.All()[0].GetStrategyId())
	assertion.Equal("band_width", registry.All()[1].GetStrategyId())
	assertion.NotNil(registry.Get("band_width"))
	assertion.Nil(registry.Get("unknown"))
}
