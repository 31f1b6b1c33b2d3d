package consensus

import (
	"fmt"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

const PerformanceMultiplierMin = 0.50
const PerformanceMultiplierMax = 1.50

// ConditionSourceInterface supplies the market-condition weight
// adjustment for a strategy, 1.0 meaning neutral.
type ConditionSourceInterface interface {
	GetConditionMultiplier(strategyId string) float64
}

// PerformanceSourceInterface supplies the recent-performance weight
// adjustment for a strategy. Values are clamped to [0.5, 1.5] before
// use so no single strategy can dominate or vanish.
type PerformanceSourceInterface interface {
	GetPerformanceMultiplier(strategyId string) float64
}

type StaticConditionSource struct {
}

func (s *StaticConditionSource) GetConditionMultiplier(strategyId string) float64 {
	return 1.00
}

type StaticPerformanceSource struct {
}

func (s *StaticPerformanceSource) GetPerformanceMultiplier(strategyId string) float64 {
	return 1.00
}

// Engine folds one round of votes into a single decision. Decide is a
// pure function of its inputs: same votes, same settings, same clock
// value, same decision.
type Engine struct {
	BaseWeights       map[string]float64
	ConditionSource   ConditionSourceInterface
	PerformanceSource PerformanceSourceInterface
}

func (e *Engine) Decide(
	votes []model.Vote,
	registered int64,
	settings model.TradingSettings,
	nowMilli int64,
) model.Decision {
	surviving := make([]model.Vote, 0, len(votes))

	for _, vote := range votes {
		if vote.IsExpired(settings.SignalTimeoutSeconds, nowMilli) {
			continue
		}

		if vote.Confidence < settings.MinSignalStrength {
			continue
		}

		surviving = append(surviving, vote)
	}

	if registered <= 0 {
		return e.holdDecision("no strategies registered", surviving, nowMilli)
	}

	participation := float64(len(surviving)) / float64(registered)

	if participation < settings.MinParticipationRate {
		return e.holdDecision(
			fmt.Sprintf("insufficient participation: %d/%d", len(surviving), registered),
			surviving,
			nowMilli,
		)
	}

	totalWeight := 0.00
	buyScore := 0.00
	sellScore := 0.00

	for _, vote := range surviving {
		weight := e.voteWeight(vote.StrategyId)
		totalWeight += weight

		switch vote.Action {
		case model.ActionBuy:
			buyScore += weight * vote.Confidence
		case model.ActionSell:
			sellScore += weight * vote.Confidence
		}
	}

	if totalWeight <= 0.00 {
		return e.holdDecision("zero total vote weight", surviving, nowMilli)
	}

	rawBuy := buyScore / totalWeight
	rawSell := sellScore / totalWeight

	action := model.ActionHold
	confidence := 0.00

	if rawBuy > rawSell && rawBuy > settings.DecisionThreshold {
		action = model.ActionBuy
		confidence = rawBuy
	} else if rawSell > rawBuy && rawSell > settings.DecisionThreshold {
		action = model.ActionSell
		confidence = rawSell
	}

	distribution := countVotes(surviving)

	return model.Decision{
		Action:       action,
		Confidence:   confidence,
		TotalVotes:   int64(len(surviving)),
		Distribution: distribution,
		Strategies:   strategyIds(surviving),
		Reasoning: fmt.Sprintf(
			"%d votes | buy(%d) sell(%d) hold(%d) | buy score %.4f, sell score %.4f",
			len(surviving),
			distribution.Buy,
			distribution.Sell,
			distribution.Hold,
			rawBuy,
			rawSell,
		),
		Timestamp: model.TimestampMilli(nowMilli),
	}
}

func (e *Engine) voteWeight(strategyId string) float64 {
	base := 1.00
	if configured, ok := e.BaseWeights[strategyId]; ok {
		base = configured
	}

	condition := 1.00
	if e.ConditionSource != nil {
		condition = e.ConditionSource.GetConditionMultiplier(strategyId)
	}

	performance := 1.00
	if e.PerformanceSource != nil {
		performance = e.PerformanceSource.GetPerformanceMultiplier(strategyId)
	}

	if performance < PerformanceMultiplierMin {
		performance = PerformanceMultiplierMin
	}

	if performance > PerformanceMultiplierMax {
		performance = PerformanceMultiplierMax
	}

	return base * condition * performance
}

func (e *Engine) holdDecision(reasoning string, surviving []model.Vote, nowMilli int64) model.Decision {
	return model.Decision{
		Action:       model.ActionHold,
		Confidence:   0.00,
		TotalVotes:   int64(len(surviving)),
		Distribution: countVotes(surviving),
		Strategies:   strategyIds(surviving),
		Reasoning:    reasoning,
		Timestamp:    model.TimestampMilli(nowMilli),
	}
}

func countVotes(votes []model.Vote) model.VoteDistribution {
	distribution := model.VoteDistribution{}

	for _, vote := range votes {
		switch vote.Action {
		case model.ActionBuy:
			distribution.Buy++
		case model.ActionSell:
			distribution.Sell++
		case model.ActionHold:
			distribution.Hold++
		}
	}

	return distribution
}

func strategyIds(votes []model.Vote) []string {
	ids := make([]string, 0, len(votes))
	for _, vote := range votes {
		ids = append(ids, vote.StrategyId)
	}

	return ids
}
