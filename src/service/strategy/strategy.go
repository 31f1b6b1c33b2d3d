package strategy

import (
	"sync"

	"gitlab.com/open-soft/go-vote-trader/src/model"
)

// StrategyInterface is the vote contract every strategy collaborator
// implements. Analyze must be side-effect free: it reads the snapshot
// and returns one opinion for the cycle.
type StrategyInterface interface {
	GetStrategyId() string
	Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error)
}

// Registry is the lookup table of registered strategies, keyed by
// strategy id. Registration order is preserved for deterministic
// iteration.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]StrategyInterface
	order      []string
}

func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]StrategyInterface),
		order:      make([]string, 0),
	}
}

func (r *Registry) Register(strategy StrategyInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	strategyId := strategy.GetStrategyId()

	if _, ok := r.strategies[strategyId]; !ok {
		r.order = append(r.order, strategyId)
	}

	r.strategies[strategyId] = strategy
}

func (r *Registry) Get(strategyId string) StrategyInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.strategies[strategyId]
}

func (r *Registry) All() []StrategyInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]StrategyInterface, 0, len(r.order))
	for _, strategyId := range r.order {
		all = append(all, r.strategies[strategyId])
	}

	return all
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
