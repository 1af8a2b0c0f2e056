package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeRecordedEventType  = "inventory.trade.recorded"
	TradeRejectedEventType  = "inventory.trade.rejected"
	PositionClosedEventType = "inventory.position.closed"
)

// TradeRecordedEvent 成交落账事件。
type TradeRecordedEvent struct {
	Underlying   string          `json:"underlying"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	RealizedPnL  decimal.Decimal `json:"realized_pnl"`
	TimestampMs  int64           `json:"timestamp_ms"`
	OccurredOn   time.Time       `json:"occurred_on"`
}

// TradeRejectedEvent 成交因限额被拒事件。
type TradeRejectedEvent struct {
	Underlying string          `json:"underlying"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	LimitType  LimitKind       `json:"limit_type"`
	Limit      decimal.Decimal `json:"limit"`
	Current    decimal.Decimal `json:"current"`
	OccurredOn time.Time       `json:"occurred_on"`
}

// PositionClosedEvent 仓位平仓事件。
type PositionClosedEvent struct {
	Underlying  string          `json:"underlying"`
	Symbol      string          `json:"symbol"`
	ClosePrice  decimal.Decimal `json:"close_price"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	TimestampMs int64           `json:"timestamp_ms"`
	OccurredOn  time.Time       `json:"occurred_on"`
}

// EventPublisher 库存领域事件发布接口。
type EventPublisher interface {
	PublishTradeRecorded(event TradeRecordedEvent) error
	PublishTradeRejected(event TradeRejectedEvent) error
	PublishPositionClosed(event PositionClosedEvent) error
}
