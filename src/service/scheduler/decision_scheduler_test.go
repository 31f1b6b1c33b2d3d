package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/service/consensus"
	"gitlab.com/open-soft/go-vote-trader/src/service/strategy"
	"gitlab.com/open-soft/go-vote-trader/src/utils"
)

type ConfigServiceMock struct {
	mock.Mock
}

func (m *ConfigServiceMock) GetActual() model.TradingSettings {
	args := m.Called()
	return args.Get(0).(model.TradingSettings)
}
func (m *ConfigServiceMock) Subscribe(listener func(settings model.TradingSettings)) {
	m.Called(listener)
}

type MarketReaderMock struct {
	mock.Mock
}

func (m *MarketReaderMock) GetLastKLine(symbol string) *model.KLine {
	args := m.Called(symbol)
	result := args.Get(0)
	if result == nil {
		return nil
	}
	return result.(*model.KLine)
}
func (m *MarketReaderMock) GetSnapshot(symbol string) *model.MarketSnapshot {
	args := m.Called(symbol)
	result := args.Get(0)
	if result == nil {
		return nil
	}
	return result.(*model.MarketSnapshot)
}

type AuditServiceMock struct {
	mock.Mock
}

func (m *AuditServiceMock) RecordVote(vote model.Vote) {
	m.Called(vote)
}
func (m *AuditServiceMock) RecordDecision(decision model.Decision) {
	m.Called(decision)
}
func (m *AuditServiceMock) RecordTrade(trade model.Trade) {
	m.Called(trade)
}

type BalanceServiceMock struct {
	mock.Mock
}

func (m *BalanceServiceMock) GetBalance(currency string, cache bool) (float64, error) {
	args := m.Called(currency, cache)
	return args.Get(0).(float64), args.Error(1)
}
func (m *BalanceServiceMock) InvalidateBalanceCache(currency string) {
	m.Called(currency)
}

type holdStrategy struct {
	strategyId string
}

func (s *holdStrategy) GetStrategyId() string {
	return s.strategyId
}

func (s *holdStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	return model.NewVote(s.strategyId, model.ActionHold, 0.50, 0.00, "no signal", nil)
}

type buyStrategy struct {
	strategyId string
}

func (s *buyStrategy) GetStrategyId() string {
	return s.strategyId
}

func (s *buyStrategy) Analyze(snapshot model.MarketSnapshot, settings model.TradingSettings) (model.Vote, error) {
	return model.NewVote(s.strategyId, model.ActionBuy, 0.90, 0.90, "strong signal", nil)
}

func schedulerFixture(strategies ...strategy.StrategyInterface) (*DecisionScheduler, *ConfigServiceMock, *MarketReaderMock, *AuditServiceMock, *BalanceServiceMock) {
	registry := strategy.NewRegistry()
	for _, item := range strategies {
		registry.Register(item)
	}

	configService := new(ConfigServiceMock)
	marketReader := new(MarketReaderMock)
	auditService := new(AuditServiceMock)
	balanceService := new(BalanceServiceMock)

	s := &DecisionScheduler{
		ConfigService:    configService,
		Registry:         registry,
		VoteCollector:    &strategy.VoteCollector{Registry: registry},
		Consensus: &consensus.Engine{
			ConditionSource:   &consensus.StaticConditionSource{},
			PerformanceSource: &consensus.StaticPerformanceSource{},
		},
		MarketRepository: marketReader,
		BalanceService:   balanceService,
		AuditService:     auditService,
		TimeService:      &utils.TimeHelper{},
	}

	return s, configService, marketReader, auditService, balanceService
}

func TestCycleFailsWithoutMarketData(t *testing.T) {
	assertion := assert.New(t)

	s, configService, marketReader, _, _ := schedulerFixture(&holdStrategy{strategyId: "alpha"})

	configService.On("GetActual").Return(model.DefaultTradingSettings())
	marketReader.On("GetSnapshot", "KRW-BTC").Return(nil)

	err := s.RunCycle("interval")

	assertion.NotNil(err)
	assertion.Contains(err.Error(), "No market data")
}

func TestDisabledSystemSkipsCycle(t *testing.T) {
	assertion := assert.New(t)

	s, configService, marketReader, _, _ := schedulerFixture(&holdStrategy{strategyId: "alpha"})

	settings := model.DefaultTradingSettings()
	settings.SystemEnabled = false
	configService.On("GetActual").Return(settings)

	err := s.RunCycle("interval")

	assertion.Nil(err)
	marketReader.AssertNumberOfCalls(t, "GetSnapshot", 0)
}

func TestHoldConsensusStopsBeforeSizing(t *testing.T) {
	assertion := assert.New(t)

	s, configService, marketReader, auditService, balanceService := schedulerFixture(
		&holdStrategy{strategyId: "alpha"},
		&holdStrategy{strategyId: "beta"},
	)

	configService.On("GetActual").Return(model.DefaultTradingSettings())
	marketReader.On("GetSnapshot", "KRW-BTC").
		Return(&model.MarketSnapshot{Symbol: "KRW-BTC", CurrentPrice: 100.00})
	auditService.On("RecordVote", mock.Anything).Return()
	auditService.On("RecordDecision", mock.MatchedBy(func(decision model.Decision) bool {
		return decision.IsHold()
	})).Return()

	err := s.RunCycle("interval")

	assertion.Nil(err)
	auditService.AssertNumberOfCalls(t, "RecordVote", 2)
	auditService.AssertNumberOfCalls(t, "RecordDecision", 1)
	balanceService.AssertNumberOfCalls(t, "GetBalance", 0)
}

func TestTradingDisabledRecordsDecisionOnly(t *testing.T) {
	assertion := assert.New(t)

	s, configService, marketReader, auditService, balanceService := schedulerFixture(
		&buyStrategy{strategyId: "alpha"},
		&buyStrategy{strategyId: "beta"},
	)

	settings := model.DefaultTradingSettings()
	settings.TradingEnabled = false
	configService.On("GetActual").Return(settings)
	marketReader.On("GetSnapshot", "KRW-BTC").
		Return(&model.MarketSnapshot{Symbol: "KRW-BTC", CurrentPrice: 100.00})
	auditService.On("RecordVote", mock.Anything).Return()
	auditService.On("RecordDecision", mock.MatchedBy(func(decision model.Decision) bool {
		return decision.IsBuy()
	})).Return()

	err := s.RunCycle("interval")

	assertion.Nil(err)
	auditService.AssertNumberOfCalls(t, "RecordDecision", 1)
	balanceService.AssertNumberOfCalls(t, "GetBalance", 0)
}

func TestForceTriggerUsesSamePath(t *testing.T) {
	assertion := assert.New(t)

	s, configService, marketReader, auditService, _ := schedulerFixture(&holdStrategy{strategyId: "alpha"})

	configService.On("GetActual").Return(model.DefaultTradingSettings())
	marketReader.On("GetSnapshot", "KRW-BTC").
		Return(&model.MarketSnapshot{Symbol: "KRW-BTC", CurrentPrice: 100.00})
	auditService.On("RecordVote", mock.Anything).Return()
	auditService.On("RecordDecision", mock.Anything).Return()

	assertion.Nil(s.ForceTrigger())
	auditService.AssertNumberOfCalls(t, "RecordDecision", 1)
}
