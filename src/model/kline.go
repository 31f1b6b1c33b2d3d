package model

import "time"

const PriceValidSeconds = 30

type KLine struct {
	Symbol    string         `json:"s"`
	Open      Price          `json:"o"`
	Close     Price          `json:"c"`
	Low       Price          `json:"l"`
	High      Price          `json:"h"`
	Interval  string         `json:"i"`
	Timestamp TimestampMilli `json:"t"`
	Volume    Volume         `json:"v"`
	UpdatedAt int64          `json:"updatedAt"`
}

func (k *KLine) IsPriceExpired() bool {
	return (time.Now().Unix() - k.UpdatedAt) > PriceValidSeconds
}

// KLineWindow is the recent OHLC history used for the volatility proxy.
type KLineWindow []KLine

func (w KLineWindow) Len() int {
	return len(w)
}

func (w KLineWindow) Last() *KLine {
	if len(w) == 0 {
		return nil
	}

	return &w[len(w)-1]
}

func (w KLineWindow) Closes() []float64 {
	closes := make([]float64, 0, len(w))
	for _, kLine := range w {
		closes = append(closes, kLine.Close.Value())
	}

	return closes
}

// Tail returns the newest count samples, oldest first.
func (w KLineWindow) Tail(count int) KLineWindow {
	if count >= len(w) {
		return w
	}

	return w[len(w)-count:]
}

type Ticker struct {
	Symbol    string         `json:"symbol"`
	Price     Price          `json:"price"`
	Timestamp TimestampMilli `json:"timestamp"`
}

// MarketSnapshot is read-only market state for the duration of one cycle.
type MarketSnapshot struct {
	Symbol       string      `json:"symbol"`
	CurrentPrice float64     `json:"currentPrice"`
	Window       KLineWindow `json:"window"`
	UpdatedAt    int64       `json:"updatedAt"`
}
