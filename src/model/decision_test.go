package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributedStrategy(t *testing.T) {
	assertion := assert.New(t)

	sole := Decision{Strategies: []string{"rsi_momentum"}}
	assertion.Equal("rsi_momentum", sole.AttributedStrategy())

	shared := Decision{Strategies: []string{"rsi_momentum", "band_width"}}
	assertion.Equal("consensus", shared.AttributedStrategy())

	empty := Decision{Strategies: make([]string, 0)}
	assertion.Equal("consensus", empty.AttributedStrategy())
}

func TestDecisionJsonRoundTrip(t *testing.T) {
	assertion := assert.New(t)

	decision := Decision{
		Action:     ActionBuy,
		Confidence: 0.42,
		TotalVotes: 5,
		Distribution: VoteDistribution{
			Buy:  3,
			Sell: 1,
			Hold: 1,
		},
		Strategies: []string{"rsi_momentum", "band_width"},
		Reasoning:  "5 votes | buy(3) sell(1) hold(1) | buy score 0.4200, sell score 0.1100",
		Timestamp:  TimestampMilli(1_750_000_000_000),
	}

	encoded, err := json.Marshal(decision)
	assertion.Nil(err)

	var restored Decision
	assertion.Nil(json.Unmarshal(encoded, &restored))
	assertion.Equal(decision, restored)
}

func TestPositionJsonRoundTrip(t *testing.T) {
	assertion := assert.New(t)

	position := Position{
		Id:               "c2a8f3e1-1111-2222-3333-444455556666",
		StrategyId:       "consensus",
		Symbol:           "BTC-KRW",
		Side:             SideLong,
		Size:             0.50,
		EntryPrice:       100.00,
		CurrentPrice:     106.70,
		StopLoss:         103.50,
		TakeProfit:       120.00,
		TrailingStop:     true,
		TrailingDistance: 0.03,
		Status:           PositionStatusOpen,
		UnrealizedPnl:    3.35,
		OrderId:          "order-1",
		CreatedAt:        "2026-08-23 10:00:00",
		Timestamp:        TimestampMilli(1_750_000_000_000),
	}

	encoded, err := json.Marshal(position)
	assertion.Nil(err)

	var restored Position
	assertion.Nil(json.Unmarshal(encoded, &restored))
	assertion.Equal(position, restored)
}
