package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HedgeReason 对冲触发原因。
type HedgeReason string

const (
	HedgeReasonDeltaThreshold     HedgeReason = "delta_threshold"     // Delta 偏离超过阈值
	HedgeReasonScheduledRebalance HedgeReason = "scheduled_rebalance" // 定时再平衡
	HedgeReasonManual             HedgeReason = "manual"              // 人工触发
	HedgeReasonRiskLimitBreach    HedgeReason = "risk_limit_breach"   // 风险限额突破
)

// HedgeOrder 待执行的对冲指令。
// 数量为有符号值：正数买入，负数卖出。
type HedgeOrder struct {
	Symbol      string           `json:"symbol"`                // 对冲标的，通常为现货
	Quantity    decimal.Decimal  `json:"quantity"`              // 有符号数量
	LimitPrice  *decimal.Decimal `json:"limit_price,omitempty"` // 限价；nil 表示市价单
	Reason      HedgeReason      `json:"reason"`
	TimestampMs int64            `json:"timestamp_ms"`
}

// NewHedgeOrder 创建对冲指令。
func NewHedgeOrder(symbol string, quantity decimal.Decimal, limitPrice *decimal.Decimal, reason HedgeReason, timestampMs int64) HedgeOrder {
	return HedgeOrder{
		Symbol:      symbol,
		Quantity:    quantity,
		LimitPrice:  limitPrice,
		Reason:      reason,
		TimestampMs: timestampMs,
	}
}

// IsBuy 买入指令。
func (o HedgeOrder) IsBuy() bool {
	return o.Quantity.IsPositive()
}

// IsSell 卖出指令。
func (o HedgeOrder) IsSell() bool {
	return o.Quantity.IsNegative()
}

// AbsQuantity 数量绝对值。
func (o HedgeOrder) AbsQuantity() decimal.Decimal {
	return o.Quantity.Abs()
}

// IsLimitOrder 限价单。
func (o HedgeOrder) IsLimitOrder() bool {
	return o.LimitPrice != nil
}

func (o HedgeOrder) String() string {
	side := "buy"
	if o.IsSell() {
		side = "sell"
	}
	if o.LimitPrice != nil {
		return fmt.Sprintf("%s %s %s @ %s (%s)", side, o.AbsQuantity(), o.Symbol, o.LimitPrice, o.Reason)
	}
	return fmt.Sprintf("%s %s %s @ market (%s)", side, o.AbsQuantity(), o.Symbol, o.Reason)
}
