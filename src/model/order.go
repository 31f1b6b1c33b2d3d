package model

// OrderResult is the exchange response to an order submission.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderId string `json:"orderId"`
	Message string `json:"message"`
}

// StrategyStats aggregates realized trade outcomes per strategy.
type StrategyStats struct {
	StrategyId string `json:"strategyId"`
	Wins       int64  `json:"wins"`
	Losses     int64  `json:"losses"`
}

// Trade is one append-only audit row for an executed order.
type Trade struct {
	Id         int64   `json:"id"`
	PositionId string  `json:"positionId"`
	StrategyId string  `json:"strategyId"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Price      float64 `json:"price"`
	Amount     float64 `json:"amount"`
	Pnl        float64 `json:"pnl"`
	Reason     string  `json:"reason"`
	CreatedAt  string  `json:"createdAt"`
}
