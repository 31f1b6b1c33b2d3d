package service

import (
	"log"

	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
)

type AuditServiceInterface interface {
	RecordVote(vote model.Vote)
	RecordDecision(decision model.Decision)
	RecordTrade(trade model.Trade)
}

// AuditService persists the decision trail asynchronously. A storage
// failure is logged and dropped: the audit log must never block or
// fail a trading cycle.
type AuditService struct {
	TradeRepository repository.AuditStorageInterface
}

func (s *AuditService) RecordVote(vote model.Vote) {
	go func() {
		if err := s.TradeRepository.CreateVote(vote); err != nil {
			log.Printf("[%s] Vote audit write failed: %s", vote.StrategyId, err.Error())
		}
	}()
}

func (s *AuditService) RecordDecision(decision model.Decision) {
	go func() {
		if err := s.TradeRepository.CreateDecision(decision); err != nil {
			log.Printf("[audit] Decision audit write failed: %s", err.Error())
		}
	}()
}

func (s *AuditService) RecordTrade(trade model.Trade) {
	go func() {
		if err := s.TradeRepository.CreateTrade(trade); err != nil {
			log.Printf("[%s] Trade audit write failed: %s", trade.Symbol, err.Error())
		}
	}()
}
