package application

import (
	"github.com/shopspring/decimal"

	hedging "github.com/wyfcoding/optionsmm/internal/hedging/domain"
	pnl "github.com/wyfcoding/optionsmm/internal/pnl/domain"
	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
	risk "github.com/wyfcoding/optionsmm/internal/risk/domain"
)

// TradeFillCommand 成交回报命令。
type TradeFillCommand struct {
	Underlying  string          `json:"underlying"`
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"` // 有符号：正买负卖
	Price       decimal.Decimal `json:"price"`
	Fee         decimal.Decimal `json:"fee"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// TradeFillResult 成交处理结果。
type TradeFillResult struct {
	NewQuantity  decimal.Decimal     `json:"new_quantity"`
	AveragePrice decimal.Decimal     `json:"average_price"`
	RealizedPnL  decimal.Decimal     `json:"realized_pnl"` // 本笔成交实现的盈亏
	HedgeOrder   *hedging.HedgeOrder `json:"hedge_order,omitempty"`
}

// GreeksUpdateCommand 希腊值快照更新命令。
type GreeksUpdateCommand struct {
	Underlying  string          `json:"underlying"`
	Symbol      string          `json:"symbol"`
	Greeks      pricing.Greeks  `json:"greeks"`
	Spot        decimal.Decimal `json:"spot"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// QuoteRequest 报价请求。
type QuoteRequest struct {
	Underlying   string          `json:"underlying"`
	Symbol       string          `json:"symbol"`
	TheoPrice    decimal.Decimal `json:"theo_price"`
	Volatility   decimal.Decimal `json:"volatility"`
	TimeToExpiry decimal.Decimal `json:"time_to_expiry"`
	TimestampMs  int64           `json:"timestamp_ms"`
}

// MarkToMarketCommand 按市值重估命令：symbol -> 最新标记价。
type MarkToMarketCommand struct {
	Underlying  string                     `json:"underlying"`
	MarkPrices  map[string]decimal.Decimal `json:"mark_prices"`
	TimestampMs int64                      `json:"timestamp_ms"`
}

// HedgeFillCommand 对冲成交回报命令。
type HedgeFillCommand struct {
	Underlying  string          `json:"underlying"`
	Quantity    decimal.Decimal `json:"quantity"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// AttributionRequest 盈亏归因请求。
type AttributionRequest struct {
	Underlying string          `json:"underlying"`
	SpotChange decimal.Decimal `json:"spot_change"`
	VolChange  decimal.Decimal `json:"vol_change"`
	DaysPassed decimal.Decimal `json:"days_passed"`
	RateChange decimal.Decimal `json:"rate_change"`
	ActualPnL  decimal.Decimal `json:"actual_pnl"`
}

// DeskStatus 单个标的做市台状态快照。
type DeskStatus struct {
	Underlying    string            `json:"underlying"`
	State         risk.TradingState `json:"state"`
	HaltReason    string            `json:"halt_reason,omitempty"`
	PositionCount int               `json:"position_count"`
	TotalGreeks   pricing.Greeks    `json:"total_greeks"`
	CurrentDelta  decimal.Decimal   `json:"current_delta"`
	PnL           pnl.PnLSnapshot   `json:"pnl"`
	DailyPnL      decimal.Decimal   `json:"daily_pnl"`
	Drawdown      decimal.Decimal   `json:"drawdown"`
}
