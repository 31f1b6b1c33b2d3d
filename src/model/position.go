package model

import (
	"errors"
	"fmt"
)

const PositionStatusPending = "pending"
const PositionStatusOpen = "open"
const PositionStatusClosing = "closing"
const PositionStatusClosed = "closed"
const PositionStatusFailed = "failed"

const SideLong = "long"
const SideShort = "short"

// Position is owned by the execution coordinator and the lifecycle
// monitor. Nothing else mutates it.
type Position struct {
	Id               string         `json:"id"`
	StrategyId       string         `json:"strategyId"`
	Symbol           string         `json:"symbol"`
	Side             string         `json:"side"`
	Size             float64        `json:"size"`
	EntryPrice       float64        `json:"entryPrice"`
	CurrentPrice     float64        `json:"currentPrice"`
	StopLoss         float64        `json:"stopLoss"`
	TakeProfit       float64        `json:"takeProfit"`
	TrailingStop     bool           `json:"trailingStop"`
	TrailingDistance float64        `json:"trailingDistance"`
	Status           string         `json:"status"`
	UnrealizedPnl    float64        `json:"unrealizedPnl"`
	MaxDrawdown      float64        `json:"maxDrawdown"`
	OrderId          string         `json:"orderId"`
	CloseReason      string         `json:"closeReason"`
	CreatedAt        string         `json:"createdAt"`
	Timestamp        TimestampMilli `json:"timestamp"`
}

var positionTransitions = map[string][]string{
	PositionStatusPending: {PositionStatusOpen, PositionStatusFailed},
	PositionStatusOpen:    {PositionStatusClosing, PositionStatusClosed},
	PositionStatusClosing: {PositionStatusClosed},
	PositionStatusClosed:  {},
	PositionStatusFailed:  {},
}

func (p *Position) CanTransition(status string) bool {
	allowed, ok := positionTransitions[p.Status]
	if !ok {
		return false
	}

	for _, next := range allowed {
		if next == status {
			return true
		}
	}

	return false
}

func (p *Position) Transition(status string) error {
	if !p.CanTransition(status) {
		return errors.New(fmt.Sprintf(
			"[%s] Position %s: invalid transition %s -> %s",
			p.Symbol,
			p.Id,
			p.Status,
			status,
		))
	}

	p.Status = status

	return nil
}

func (p *Position) IsTerminal() bool {
	return p.Status == PositionStatusClosed || p.Status == PositionStatusFailed
}

func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

func (p *Position) IsLong() bool {
	return p.Side == SideLong
}

// GetAmount is the position notional at entry, in quote currency.
func (p *Position) GetAmount() float64 {
	return p.Size * p.EntryPrice
}

// UpdatePrice refreshes current price, unrealized PnL and worst-seen
// drawdown.
func (p *Position) UpdatePrice(price float64) {
	p.CurrentPrice = price

	if p.IsLong() {
		p.UnrealizedPnl = (price - p.EntryPrice) * p.Size
	} else {
		p.UnrealizedPnl = (p.EntryPrice - price) * p.Size
	}

	if p.UnrealizedPnl < p.MaxDrawdown {
		p.MaxDrawdown = p.UnrealizedPnl
	}
}

// UpdateTrailingStop moves the stop in the favorable direction only,
// it never loosens an existing stop.
func (p *Position) UpdateTrailingStop() bool {
	if !p.TrailingStop || p.TrailingDistance <= 0.00 {
		return false
	}

	if p.IsLong() && p.CurrentPrice > p.EntryPrice {
		newStop := p.CurrentPrice * (1 - p.TrailingDistance)
		if newStop > p.StopLoss {
			p.StopLoss = newStop
			return true
		}
	}

	if !p.IsLong() && p.CurrentPrice < p.EntryPrice {
		newStop := p.CurrentPrice * (1 + p.TrailingDistance)
		if p.StopLoss == 0.00 || newStop < p.StopLoss {
			p.StopLoss = newStop
			return true
		}
	}

	return false
}

func (p *Position) StopLossReached() bool {
	if p.StopLoss <= 0.00 {
		return false
	}

	if p.IsLong() {
		return p.CurrentPrice <= p.StopLoss
	}

	return p.CurrentPrice >= p.StopLoss
}

func (p *Position) TakeProfitReached() bool {
	if p.TakeProfit <= 0.00 {
		return false
	}

	if p.IsLong() {
		return p.CurrentPrice >= p.TakeProfit
	}

	return p.CurrentPrice <= p.TakeProfit
}

// GetExitPrice is the effective close price for a triggered exit: the
// protective level itself, never a worse synthetic price.
func (p *Position) GetExitPrice() float64 {
	if p.StopLossReached() {
		return p.StopLoss
	}

	if p.TakeProfitReached() {
		return p.TakeProfit
	}

	return p.CurrentPrice
}
