package strategy

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type voteResult struct {
	vote model.Vote
	err  error
}

// VoteCollector polls every registered strategy once per cycle against
// the same snapshot. A strategy that errors, panics, times out or
// returns an out-of-range vote is replaced by an implicit HOLD so a
// single bad collaborator never stalls the cycle.
type VoteCollector struct {
	Registry *Registry
}

func (c *VoteCollector) Collect(snapshot model.MarketSnapshot, settings model.TradingSettings) []model.Vote {
	votes := make([]model.Vote, 0, c.Registry.Count())

	for _, item := range c.Registry.All() {
		votes = append(votes, c.collectOne(item, snapshot, settings))
	}

	return votes
}

func (c *VoteCollector) collectOne(
	item StrategyInterface,
	snapshot model.MarketSnapshot,
	settings model.TradingSettings,
) model.Vote {
	strategyId := item.GetStrategyId()
	resultChannel := make(chan voteResult, 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				resultChannel <- voteResult{
					err: errors.New(fmt.Sprintf("strategy panic: %v", recovered)),
				}
			}
		}()

		vote, err := item.Analyze(snapshot, settings)
		resultChannel <- voteResult{vote: vote, err: err}
	}()

	select {
	case result := <-resultChannel:
		if result.err != nil {
			log.Printf("[%s] Strategy failed: %s", strategyId, result.err.Error())

			return model.HoldVote(strategyId, result.err.Error())
		}

		if err := validateVote(result.vote); err != nil {
			log.Printf("[%s] Strategy returned invalid vote: %s", strategyId, err.Error())

			return model.HoldVote(strategyId, err.Error())
		}

		return result.vote
	case <-time.After(time.Duration(settings.StrategyTimeoutSeconds) * time.Second):
		log.Printf("[%s] Strategy timed out after %d seconds", strategyId, settings.StrategyTimeoutSeconds)

		return model.HoldVote(strategyId, "strategy timeout")
	}
}

func validateVote(vote model.Vote) error {
	if vote.Action != model.ActionBuy && vote.Action != model.ActionSell && vote.Action != model.ActionHold {
		return errors.New(fmt.Sprintf("unknown vote action: %s", vote.Action))
	}

	if vote.Confidence < 0.00 || vote.Confidence > 1.00 {
		return errors.New(fmt.Sprintf("confidence out of range: %f", vote.Confidence))
	}

	if vote.Strength < 0.00 || vote.Strength > 1.00 {
		return errors.New(fmt.Sprintf("strength out of range: %f", vote.Strength))
	}

	return nil
}
