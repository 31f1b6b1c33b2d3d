package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
	"gitlab.com/open-soft/go-vote-trader/src/service"
	"gitlab.com/open-soft/go-vote-trader/src/service/consensus"
	"gitlab.com/open-soft/go-vote-trader/src/service/exchange"
	"gitlab.com/open-soft/go-vote-trader/src/service/risk"
	"gitlab.com/open-soft/go-vote-trader/src/service/strategy"
	"gitlab.com/open-soft/go-vote-trader/src/utils"
)

// DecisionScheduler drives the fixed-interval decision cycle:
// settings, snapshot, votes, consensus, sizing, guardrails, execution.
// Cycles never overlap; a failed cycle triggers a cooldown before the
// next attempt.
type DecisionScheduler struct {
	ConfigService    service.ConfigServiceInterface
	Registry         *strategy.Registry
	VoteCollector    *strategy.VoteCollector
	Consensus        *consensus.Engine
	Sizer            *risk.PositionSizer
	Guardrails       *risk.GuardrailChecker
	Coordinator      *exchange.ExecutionCoordinator
	MarketRepository repository.MarketReaderInterface
	BalanceService   exchange.BalanceServiceInterface
	AuditService     service.AuditServiceInterface
	TimeService      utils.TimeServiceInterface

	inFlight int32
}

func (s *DecisionScheduler) Start(ctx context.Context) {
	for {
		settings := s.ConfigService.GetActual()

		interval := settings.CycleIntervalSeconds
		if interval < 1 {
			interval = 1
		}

		select {
		case <-ctx.Done():
			log.Printf("[scheduler] Stopped")

			return
		case <-time.After(time.Duration(interval) * time.Second):
			if err := s.RunCycle("interval"); err != nil {
				log.Printf("[scheduler] Cycle failed: %s", err.Error())
				s.TimeService.WaitSeconds(settings.CycleCooldownSeconds)
			}
		}
	}
}

// ForceTrigger runs one cycle on demand through the exact same path
// as the interval timer.
func (s *DecisionScheduler) ForceTrigger() error {
	return s.RunCycle("manual")
}

func (s *DecisionScheduler) RunCycle(trigger string) error {
	if !atomic.CompareAndSwapInt32(&s.inFlight, 0, 1) {
		log.Printf("[scheduler] Cycle already in progress, %s cycle skipped", trigger)

		return nil
	}

	defer atomic.StoreInt32(&s.inFlight, 0)

	settings := s.ConfigService.GetActual()

	if !settings.SystemEnabled {
		return nil
	}

	snapshot := s.MarketRepository.GetSnapshot(settings.Symbol)

	if snapshot == nil {
		return errors.New(fmt.Sprintf("[%s] No market data for cycle", settings.Symbol))
	}

	votes := s.VoteCollector.Collect(*snapshot, settings)

	for _, vote := range votes {
		s.AuditService.RecordVote(vote)
	}

	decision := s.Consensus.Decide(
		votes,
		int64(s.Registry.Count()),
		settings,
		s.TimeService.GetNowUnixMilli(),
	)

	s.AuditService.RecordDecision(decision)

	log.Printf(
		"[%s] Decision %s (%.4f): %s",
		settings.Symbol,
		decision.Action,
		decision.Confidence,
		decision.Reasoning,
	)

	if decision.IsHold() {
		return nil
	}

	if !settings.TradingEnabled {
		log.Printf("[%s] Trading disabled, %s decision not executed", settings.Symbol, decision.Action)

		return nil
	}

	balance, err := s.BalanceService.GetBalance(exchange.QuoteCurrency, true)

	if err != nil {
		return err
	}

	metrics, err := s.Sizer.Calculate(decision, balance, snapshot.Window, snapshot.CurrentPrice, settings)

	if err != nil {
		log.Printf("[%s] Trade rejected by sizer: %s", settings.Symbol, err.Error())

		return nil
	}

	side := model.SideLong
	if decision.IsSell() {
		side = model.SideShort
	}

	portfolio := s.Coordinator.GetPortfolio()
	equity := balance + portfolio.TotalExposure

	guardrailErr := s.Guardrails.Check(
		risk.CandidateTrade{
			StrategyId: decision.AttributedStrategy(),
			Symbol:     settings.Symbol,
			Side:       side,
			Amount:     metrics.PositionSize,
		},
		&portfolio,
		s.Coordinator.ActivePositions(),
		equity,
		settings,
	)

	if guardrailErr != nil {
		log.Printf("[%s] Trade rejected by guardrails: %s", settings.Symbol, guardrailErr.Error())

		return nil
	}

	_, err = s.Coordinator.OpenPosition(decision, *metrics, *snapshot, settings)

	if err != nil {
		if exchange.IsLockTimeout(err) {
			log.Printf("[%s] Cycle skipped: %s", settings.Symbol, err.Error())

			return nil
		}

		return err
	}

	return nil
}
