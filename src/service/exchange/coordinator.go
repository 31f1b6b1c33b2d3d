package exchange

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gitlab.com/open-soft/go-vote-trader/src/client"
	"gitlab.com/open-soft/go-vote-trader/src/model"
	"gitlab.com/open-soft/go-vote-trader/src/repository"
	"gitlab.com/open-soft/go-vote-trader/src/utils"
)

const QuoteCurrency = "KRW"

const lockTimeoutPrefix = "execution lock timeout"

// IsLockTimeout reports whether an error means the execution context
// could not be acquired in time. Callers skip the cycle on it instead
// of treating it as a failure.
func IsLockTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), lockTimeoutPrefix)
}

// TradeAuditInterface records executed trades to the audit trail.
type TradeAuditInterface interface {
	RecordTrade(trade model.Trade)
}

// ExecutionCoordinator owns every live position and the shared
// portfolio state. All order placement goes through the execution
// lock; all position and portfolio mutation happens inside the data
// mutex, so the two concerns never deadlock against each other.
type ExecutionCoordinator struct {
	CurrentBot         *model.Bot
	Exchange           client.ExchangeAPIInterface
	BalanceService     BalanceServiceInterface
	PositionRepository repository.PositionStorageInterface
	Audit              TradeAuditInterface
	Formatter          *utils.Formatter
	TimeService        utils.TimeServiceInterface
	Lock               ExecutionLockInterface

	mu        sync.Mutex
	positions map[string]*model.Position
	portfolio *model.PortfolioState
}

func NewExecutionCoordinator(
	currentBot *model.Bot,
	exchange client.ExchangeAPIInterface,
	balanceService BalanceServiceInterface,
	positionRepository repository.PositionStorageInterface,
	audit TradeAuditInterface,
	formatter *utils.Formatter,
	timeService utils.TimeServiceInterface,
	lock ExecutionLockInterface,
) *ExecutionCoordinator {
	return &ExecutionCoordinator{
		CurrentBot:         currentBot,
		Exchange:           exchange,
		BalanceService:     balanceService,
		PositionRepository: positionRepository,
		Audit:              audit,
		Formatter:          formatter,
		TimeService:        timeService,
		Lock:               lock,
		positions:          make(map[string]*model.Position),
		portfolio:          model.NewPortfolioState(timeService.GetNowDateString()),
	}
}

// RestorePositions rebuilds the in-memory set and the portfolio
// exposure from storage after a restart.
func (c *ExecutionCoordinator) RestorePositions() {
	restored := c.PositionRepository.GetOpenPositions()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, position := range restored {
		copied := position
		c.positions[copied.Id] = &copied
		c.portfolio.TotalExposure += copied.GetAmount()
		c.portfolio.StrategyExposure[copied.StrategyId] += copied.GetAmount()
		c.portfolio.OpenPositions++
	}

	log.Printf("[%s] Restored %d open positions", c.CurrentBot.Exchange, len(restored))
}

// OpenPosition runs the full entry sequence under the execution lock:
// quantize, submit with retries, then commit the lifecycle transition
// and portfolio update. A lock timeout skips the cycle instead of
// queueing behind the holder.
func (c *ExecutionCoordinator) OpenPosition(
	decision model.Decision,
	metrics model.RiskMetrics,
	snapshot model.MarketSnapshot,
	settings model.TradingSettings,
) (*model.Position, error) {
	if !c.Lock.TryAcquire(fmt.Sprintf("open-%s", snapshot.Symbol), settings.LockWaitTimeoutMs) {
		return nil, errors.New(fmt.Sprintf(
			"[%s] %s after %d ms",
			snapshot.Symbol,
			lockTimeoutPrefix,
			settings.LockWaitTimeoutMs,
		))
	}

	defer c.Lock.Release()

	entryPrice := c.Formatter.QuantizePrice(settings.TickSize, snapshot.CurrentPrice)

	if entryPrice <= 0.00 {
		return nil, errors.New(fmt.Sprintf("[%s] Quantized entry price is zero", snapshot.Symbol))
	}

	size := metrics.PositionSize / entryPrice
	amount := size * entryPrice

	if amount < settings.MinOrderAmount {
		return nil, errors.New(fmt.Sprintf(
			"[%s] Quantized amount %.2f below minimum %.2f",
			snapshot.Symbol,
			amount,
			settings.MinOrderAmount,
		))
	}

	side := model.SideLong
	orderSide := "bid"
	if decision.IsSell() {
		side = model.SideShort
		orderSide = "ask"
	}

	position := &model.Position{
		Id:               uuid.New().String(),
		StrategyId:       decision.AttributedStrategy(),
		Symbol:           snapshot.Symbol,
		Side:             side,
		Size:             size,
		EntryPrice:       entryPrice,
		CurrentPrice:     entryPrice,
		StopLoss:         metrics.StopLoss,
		TakeProfit:       metrics.TakeProfit,
		TrailingStop:     settings.TrailingStopEnabled,
		TrailingDistance: settings.TrailingStopDistance,
		Status:           model.PositionStatusPending,
		CreatedAt:        c.TimeService.GetNowDateTimeString(),
		Timestamp:        model.TimestampMilli(c.TimeService.GetNowUnixMilli()),
	}

	if err := c.PositionRepository.Create(*position); err != nil {
		return nil, err
	}

	result, err := c.submitWithRetry(snapshot.Symbol, orderSide, entryPrice, size, settings)

	if err != nil {
		_ = position.Transition(model.PositionStatusFailed)
		position.CloseReason = err.Error()
		_ = c.PositionRepository.Update(*position)

		log.Printf("[%s] Entry order failed: %s", snapshot.Symbol, err.Error())

		return nil, err
	}

	position.OrderId = result.OrderId
	_ = position.Transition(model.PositionStatusOpen)

	c.mu.Lock()
	c.portfolio.Rollover(c.TimeService.GetNowDateString())
	c.positions[position.Id] = position
	c.portfolio.RegisterOpen(position.StrategyId, position.GetAmount())
	c.mu.Unlock()

	if err := c.PositionRepository.Update(*position); err != nil {
		log.Printf("[%s] Position %s persisted with error: %s", snapshot.Symbol, position.Id, err.Error())
	}

	c.BalanceService.InvalidateBalanceCache(QuoteCurrency)

	c.Audit.RecordTrade(model.Trade{
		PositionId: position.Id,
		StrategyId: position.StrategyId,
		Symbol:     position.Symbol,
		Side:       orderSide,
		Price:      entryPrice,
		Amount:     amount,
		Pnl:        0.00,
		Reason:     decision.Reasoning,
		CreatedAt:  position.CreatedAt,
	})

	log.Printf(
		"[%s] Opened %s position %s: size %.8f at %.2f, stop %.2f, target %.2f",
		position.Symbol,
		position.Side,
		position.Id,
		position.Size,
		position.EntryPrice,
		position.StopLoss,
		position.TakeProfit,
	)

	return position, nil
}

// ClosePosition submits the exit order under the same execution lock
// as entries. If the exit submission exhausts its retries the position
// stays in closing state and the monitor retries on its next tick.
func (c *ExecutionCoordinator) ClosePosition(positionId string, reason string, exitPrice float64, settings model.TradingSettings) error {
	if !c.Lock.TryAcquire(fmt.Sprintf("close-%s", positionId), settings.LockWaitTimeoutMs) {
		return errors.New(fmt.Sprintf(
			"[%s] %s after %d ms, close postponed",
			positionId,
			lockTimeoutPrefix,
			settings.LockWaitTimeoutMs,
		))
	}

	defer c.Lock.Release()

	c.mu.Lock()
	position, ok := c.positions[positionId]
	if !ok {
		c.mu.Unlock()

		return errors.New(fmt.Sprintf("Position %s is not active", positionId))
	}

	if position.Status == model.PositionStatusOpen {
		if err := position.Transition(model.PositionStatusClosing); err != nil {
			c.mu.Unlock()

			return err
		}
	}

	if position.Status != model.PositionStatusClosing {
		c.mu.Unlock()

		return errors.New(fmt.Sprintf("Position %s is not closable in status %s", positionId, position.Status))
	}

	position.CloseReason = reason
	closing := *position
	c.mu.Unlock()

	_ = c.PositionRepository.Update(closing)

	orderSide := "ask"
	if !closing.IsLong() {
		orderSide = "bid"
	}

	price := c.Formatter.QuantizePrice(settings.TickSize, exitPrice)

	_, err := c.submitWithRetry(closing.Symbol, orderSide, price, closing.Size, settings)

	if err != nil {
		log.Printf("[%s] Exit order failed for %s, will retry: %s", closing.Symbol, closing.Id, err.Error())

		return err
	}

	pnl := (price - closing.EntryPrice) * closing.Size
	if !closing.IsLong() {
		pnl = (closing.EntryPrice - price) * closing.Size
	}

	c.mu.Lock()
	c.portfolio.Rollover(c.TimeService.GetNowDateString())
	_ = position.Transition(model.PositionStatusClosed)
	position.CurrentPrice = price
	position.UnrealizedPnl = pnl
	closed := *position
	delete(c.positions, positionId)
	c.portfolio.RegisterClose(closed.StrategyId, closed.GetAmount(), pnl)
	c.mu.Unlock()

	_ = c.PositionRepository.Update(closed)

	c.BalanceService.InvalidateBalanceCache(QuoteCurrency)

	c.Audit.RecordTrade(model.Trade{
		PositionId: closed.Id,
		StrategyId: closed.StrategyId,
		Symbol:     closed.Symbol,
		Side:       orderSide,
		Price:      price,
		Amount:     closed.Size * price,
		Pnl:        pnl,
		Reason:     reason,
		CreatedAt:  c.TimeService.GetNowDateTimeString(),
	})

	log.Printf("[%s] Closed position %s at %.2f, pnl %.2f: %s", closed.Symbol, closed.Id, price, pnl, reason)

	return nil
}

// CloseAll is the emergency flatten: every active position is closed
// unconditionally. Exit orders are best-effort, state transitions are
// not.
func (c *ExecutionCoordinator) CloseAll(reason string, settings model.TradingSettings) int {
	c.mu.Lock()
	ids := make([]string, 0, len(c.positions))
	for id := range c.positions {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	closedCount := 0

	for _, id := range ids {
		c.mu.Lock()
		position, ok := c.positions[id]
		if !ok {
			c.mu.Unlock()
			continue
		}
		snapshot := *position
		c.mu.Unlock()

		orderSide := "ask"
		if !snapshot.IsLong() {
			orderSide = "bid"
		}

		price := c.Formatter.QuantizePrice(settings.TickSize, snapshot.CurrentPrice)

		if _, err := c.submitWithRetry(snapshot.Symbol, orderSide, price, snapshot.Size, settings); err != nil {
			log.Printf("[%s] Emergency exit order failed for %s: %s", snapshot.Symbol, id, err.Error())
		}

		pnl := (price - snapshot.EntryPrice) * snapshot.Size
		if !snapshot.IsLong() {
			pnl = (snapshot.EntryPrice - price) * snapshot.Size
		}

		c.mu.Lock()
		if position.Status == model.PositionStatusOpen {
			_ = position.Transition(model.PositionStatusClosing)
		}
		_ = position.Transition(model.PositionStatusClosed)
		position.CloseReason = reason
		position.CurrentPrice = price
		position.UnrealizedPnl = pnl
		closed := *position
		delete(c.positions, id)
		c.portfolio.RegisterClose(closed.StrategyId, closed.GetAmount(), pnl)
		c.mu.Unlock()

		_ = c.PositionRepository.Update(closed)
		closedCount++
	}

	if closedCount > 0 {
		c.BalanceService.InvalidateBalanceCache(QuoteCurrency)
		log.Printf("[%s] Emergency close completed: %d positions, reason: %s", c.CurrentBot.Exchange, closedCount, reason)
	}

	return closedCount
}

// RefreshPosition applies a new market price to one position inside
// the data mutex and reports whether a protective exit has triggered.
func (c *ExecutionCoordinator) RefreshPosition(positionId string, price float64) (bool, string, float64) {
	c.mu.Lock()

	position, ok := c.positions[positionId]
	if !ok {
		c.mu.Unlock()

		return false, "", 0.00
	}

	position.UpdatePrice(price)
	tightened := position.UpdateTrailingStop()

	triggered := false
	reason := ""
	exitPrice := 0.00

	if position.StopLossReached() {
		triggered, reason, exitPrice = true, "stop loss", position.GetExitPrice()
	} else if position.TakeProfitReached() {
		triggered, reason, exitPrice = true, "take profit", position.GetExitPrice()
	} else if position.Status == model.PositionStatusClosing {
		triggered, reason, exitPrice = true, position.CloseReason, position.GetExitPrice()
	}

	refreshed := *position
	c.mu.Unlock()

	if tightened {
		log.Printf("[%s] Trailing stop tightened to %.2f for %s", refreshed.Symbol, refreshed.StopLoss, refreshed.Id)
		_ = c.PositionRepository.Update(refreshed)
	}

	return triggered, reason, exitPrice
}

// ActivePositions returns copies of the open and closing positions.
func (c *ExecutionCoordinator) ActivePositions() []model.Position {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := make([]model.Position, 0, len(c.positions))
	for _, position := range c.positions {
		active = append(active, *position)
	}

	return active
}

func (c *ExecutionCoordinator) GetPortfolio() model.PortfolioState {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *c.portfolio
	copied.StrategyExposure = make(map[string]float64, len(c.portfolio.StrategyExposure))
	for strategyId, exposure := range c.portfolio.StrategyExposure {
		copied.StrategyExposure[strategyId] = exposure
	}

	return copied
}

// submitWithRetry retries transient failures only, with a linearly
// increasing backoff. A confirmed submission is never resubmitted:
// rejections and successes both end the loop immediately.
func (c *ExecutionCoordinator) submitWithRetry(
	symbol string,
	orderSide string,
	price float64,
	size float64,
	settings model.TradingSettings,
) (model.OrderResult, error) {
	attempts := settings.OrderRetryCount
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := int64(1); attempt <= attempts; attempt++ {
		result, err := c.Exchange.PlaceOrder(symbol, orderSide, price, size, "limit")

		if err == nil && result.Success {
			return result, nil
		}

		if err == nil {
			err = errors.New(fmt.Sprintf("[%s] Order is not confirmed: %s", symbol, result.Message))
		}

		lastErr = err

		if !client.IsTransientError(err) {
			return model.OrderResult{Success: false, Message: err.Error()}, err
		}

		if attempt < attempts {
			log.Printf("[%s] Transient order failure, attempt %d/%d: %s", symbol, attempt, attempts, err.Error())
			c.TimeService.WaitMilliseconds(settings.OrderRetryBackoffMs * attempt)
		}
	}

	return model.OrderResult{Success: false, Message: lastErr.Error()}, lastErr
}
