package exchange

import (
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type ExchangeOrderAPIMock struct {
	mock.Mock
}

func (m *ExchangeOrderAPIMock) PlaceOrder(symbol string, side string, price float64, amount float64, orderType string) (model.OrderResult, error) {
	args := m.Called(symbol, side, price, amount, orderType)
	return args.Get(0).(model.OrderResult), args.Error(1)
}
func (m *ExchangeOrderAPIMock) GetBalance(currency string) (float64, error) {
	args := m.Called(currency)
	return args.Get(0).(float64), args.Error(1)
}
func (m *ExchangeOrderAPIMock) GetCandles(symbol string, interval string, count int) ([]model.KLine, error) {
	args := m.Called(symbol, interval, count)
	return args.Get(0).([]model.KLine), args.Error(1)
}
func (m *ExchangeOrderAPIMock) GetTicker(symbol string) (model.Ticker, error) {
	args := m.Called(symbol)
	return args.Get(0).(model.Ticker), args.Error(1)
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

type PositionStorageMock struct {
	mock.Mock
}

func (m *PositionStorageMock) Create(position model.Position) error {
	args := m.Called(position)
	return args.Error(0)
}
func (m *PositionStorageMock) Update(position model.Position) error {
	args := m.Called(position)
	return args.Error(0)
}
func (m *PositionStorageMock) GetOpenPositions() []model.Position {
	args := m.Called()
	return args.Get(0).([]model.Position)
}

type TradeAuditMock struct {
	mock.Mock
}

func (m *TradeAuditMock) RecordTrade(trade model.Trade) {
	m.Called(trade)
}

type TimeServiceMock struct {
	mock.Mock
}

func (m *TimeServiceMock) WaitSeconds(seconds int64) {
	m.Called(seconds)
}
func (m *TimeServiceMock) WaitMilliseconds(milliseconds int64) {
	m.Called(milliseconds)
}
func (m *TimeServiceMock) GetNowUnix() int64 {
	args := m.Called()
	return int64(args.Int(0))
}
func (m *TimeServiceMock) GetNowUnixMilli() int64 {
	args := m.Called()
	return int64(args.Int(0))
}
func (m *TimeServiceMock) GetNowDateTimeString() string {
	args := m.Called()
	return args.String(0)
}
func (m *TimeServiceMock) GetNowDateString() string {
	args := m.Called()
	return args.String(0)
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

type SettingsSourceMock struct {
	mock.Mock
}

func (m *SettingsSourceMock) GetActual() model.TradingSettings {
	args := m.Called()
	return args.Get(0).(model.TradingSettings)
}
