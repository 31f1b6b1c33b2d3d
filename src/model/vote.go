package model

import (
	"errors"
	"fmt"
	"time"
)

const ActionBuy = "BUY"
const ActionSell = "SELL"
const ActionHold = "HOLD"

// Vote is a single strategy opinion for the current cycle.
// Immutable once created, one per strategy per cycle.
type Vote struct {
	StrategyId string             `json:"strategyId"`
	Action     string             `json:"action"`
	Confidence float64            `json:"confidence"`
	Strength   float64            `json:"strength"`
	Reasoning  string             `json:"reasoning"`
	Indicators map[string]float64 `json:"indicators"`
	Timestamp  TimestampMilli     `json:"timestamp"`
}

func NewVote(
	strategyId string,
	action string,
	confidence float64,
	strength float64,
	reasoning string,
	indicators map[string]float64,
) (Vote, error) {
	if action != ActionBuy && action != ActionSell && action != ActionHold {
		return Vote{}, errors.New(fmt.Sprintf("[%s] Unknown vote action: %s", strategyId, action))
	}

	if confidence < 0.00 || confidence > 1.00 {
		return Vote{}, errors.New(fmt.Sprintf("[%s] Confidence must be between 0.0 and 1.0, got %f", strategyId, confidence))
	}

	if strength < 0.00 || strength > 1.00 {
		return Vote{}, errors.New(fmt.Sprintf("[%s] Strength must be between 0.0 and 1.0, got %f", strategyId, strength))
	}

	if indicators == nil {
		indicators = make(map[string]float64)
	}

	return Vote{
		StrategyId: strategyId,
		Action:     action,
		Confidence: confidence,
		Strength:   strength,
		Reasoning:  reasoning,
		Indicators: indicators,
		Timestamp:  TimestampMilli(time.Now().UnixMilli()),
	}, nil
}

// HoldVote is the implicit zero-confidence vote used when a strategy
// call fails, times out or returns an out-of-range value.
func HoldVote(strategyId string, reasoning string) Vote {
	return Vote{
		StrategyId: strategyId,
		Action:     ActionHold,
		Confidence: 0.00,
		Strength:   0.00,
		Reasoning:  reasoning,
		Indicators: make(map[string]float64),
		Timestamp:  TimestampMilli(time.Now().UnixMilli()),
	}
}

func (v *Vote) IsExpired(timeoutSeconds int64, nowMilli int64) bool {
	return (nowMilli - v.Timestamp.Value()) > timeoutSeconds*1000
}

func (v *Vote) IsHold() bool {
	return v.Action == ActionHold
}
