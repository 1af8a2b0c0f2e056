// 包 盈亏上下文的领域模型：盈亏台账与希腊值归因。
package domain

import (
	"github.com/shopspring/decimal"
)

// PnLCalculator 盈亏台账：跟踪已实现、未实现与手续费。
// 已实现盈亏与手续费是累加项，未实现盈亏是覆盖式快照。
// 非并发安全，由上层做市引擎串行驱动。
type PnLCalculator struct {
	realizedPnL   decimal.Decimal
	unrealizedPnL decimal.Decimal
	totalFees     decimal.Decimal
}

// NewPnLCalculator 创建空台账。
func NewPnLCalculator() *PnLCalculator {
	return &PnLCalculator{}
}

// RealizedPnL 累计已实现盈亏。
func (c *PnLCalculator) RealizedPnL() decimal.Decimal {
	return c.realizedPnL
}

// UnrealizedPnL 最新未实现盈亏快照。
func (c *PnLCalculator) UnrealizedPnL() decimal.Decimal {
	return c.unrealizedPnL
}

// TotalFees 累计手续费。
func (c *PnLCalculator) TotalFees() decimal.Decimal {
	return c.totalFees
}

// TotalPnL 总盈亏 = 已实现 + 未实现 - 手续费。
func (c *PnLCalculator) TotalPnL() decimal.Decimal {
	return c.realizedPnL.Add(c.unrealizedPnL).Sub(c.totalFees)
}

// NetRealizedPnL 净已实现盈亏 = 已实现 - 手续费。
func (c *PnLCalculator) NetRealizedPnL() decimal.Decimal {
	return c.realizedPnL.Sub(c.totalFees)
}

// AddRealized 累加已实现盈亏。
func (c *PnLCalculator) AddRealized(amount decimal.Decimal) {
	c.realizedPnL = c.realizedPnL.Add(amount)
}

// UpdateUnrealized 覆盖未实现盈亏快照。
func (c *PnLCalculator) UpdateUnrealized(amount decimal.Decimal) {
	c.unrealizedPnL = amount
}

// AddFees 累加手续费。
func (c *PnLCalculator) AddFees(amount decimal.Decimal) {
	c.totalFees = c.totalFees.Add(amount)
}

// Reset 清空台账。
func (c *PnLCalculator) Reset() {
	c.realizedPnL = decimal.Zero
	c.unrealizedPnL = decimal.Zero
	c.totalFees = decimal.Zero
}

// Snapshot 当前台账快照。
func (c *PnLCalculator) Snapshot(timestampMs int64) PnLSnapshot {
	return PnLSnapshot{
		Realized:    c.realizedPnL,
		Unrealized:  c.unrealizedPnL,
		Fees:        c.totalFees,
		TimestampMs: timestampMs,
	}
}

// PnLSnapshot 某一时刻的盈亏快照。
type PnLSnapshot struct {
	Realized    decimal.Decimal `json:"realized"`
	Unrealized  decimal.Decimal `json:"unrealized"`
	Fees        decimal.Decimal `json:"fees"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// Total 快照总盈亏。
func (s PnLSnapshot) Total() decimal.Decimal {
	return s.Realized.Add(s.Unrealized).Sub(s.Fees)
}
