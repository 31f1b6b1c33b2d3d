package model

import "time"

type VoteDistribution struct {
	Buy  int64 `json:"buy"`
	Sell int64 `json:"sell"`
	Hold int64 `json:"hold"`
}

// Decision is the consensus output of one cycle. Created once by the
// consensus engine, never mutated afterwards.
type Decision struct {
	Action       string           `json:"action"`
	Confidence   float64          `json:"confidence"`
	TotalVotes   int64            `json:"totalVotes"`
	Distribution VoteDistribution `json:"distribution"`
	Strategies   []string         `json:"strategies"`
	Reasoning    string           `json:"reasoning"`
	Timestamp    TimestampMilli   `json:"timestamp"`
}

func HoldDecision(reasoning string) Decision {
	return Decision{
		Action:       ActionHold,
		Confidence:   0.00,
		TotalVotes:   0,
		Distribution: VoteDistribution{},
		Strategies:   make([]string, 0),
		Reasoning:    reasoning,
		Timestamp:    TimestampMilli(time.Now().UnixMilli()),
	}
}

// AttributedStrategy names the position owner: the sole surviving
// strategy when there is one, the shared consensus bucket otherwise.
func (d *Decision) AttributedStrategy() string {
	if len(d.Strategies) == 1 {
		return d.Strategies[0]
	}

	return "consensus"
}

func (d *Decision) IsHold() bool {
	return d.Action == ActionHold
}

func (d *Decision) IsBuy() bool {
	return d.Action == ActionBuy
}

func (d *Decision) IsSell() bool {
	return d.Action == ActionSell
}
