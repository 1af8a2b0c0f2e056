package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

// TradingState 交易状态机：Active 正常报价，Halted 停止报价与对冲。
type TradingState string

const (
	TradingStateActive TradingState = "active"
	TradingStateHalted TradingState = "halted"
)

// BreachKind 风险突破类型。
type BreachKind string

const (
	BreachDelta BreachKind = "delta"
	BreachGamma BreachKind = "gamma"
	BreachVega  BreachKind = "vega"
)

// RiskBreach 单项希腊值敞口突破。
type RiskBreach struct {
	Kind    BreachKind      `json:"kind"`
	Current decimal.Decimal `json:"current"`
	Limit   decimal.Decimal `json:"limit"`
}

func (b RiskBreach) String() string {
	return fmt.Sprintf("%s exposure %s exceeds limit %s", b.Kind, b.Current, b.Limit)
}

// RiskController 风控控制器。
// 跟踪当日盈亏、峰值与持仓价值，任一硬限额突破即熔断。
// 熔断是粘性的：触发后状态保持 Halted，后续盈亏恢复也不会自动解除，
// 必须显式调用 Resume。希腊值检查只返回突破清单，不触发熔断。
// 非并发安全，由上层做市引擎串行驱动。
type RiskController struct {
	limits        RiskLimits
	dailyPnL      decimal.Decimal
	peakPnL       decimal.Decimal
	positionValue decimal.Decimal
	state         TradingState
	haltReason    string
}

// NewRiskController 创建处于 Active 状态的风控控制器。
func NewRiskController(limits RiskLimits) *RiskController {
	return &RiskController{
		limits: limits,
		state:  TradingStateActive,
	}
}

// Limits 当前限额配置。
func (c *RiskController) Limits() RiskLimits {
	return c.limits
}

// State 当前交易状态。
func (c *RiskController) State() TradingState {
	return c.state
}

// IsHalted 交易已熔断。
func (c *RiskController) IsHalted() bool {
	return c.state == TradingStateHalted
}

// HaltReason 熔断原因；Active 状态下为空串。
func (c *RiskController) HaltReason() string {
	return c.haltReason
}

// DailyPnL 当日盈亏。
func (c *RiskController) DailyPnL() decimal.Decimal {
	return c.dailyPnL
}

// PeakPnL 当日盈亏峰值。
func (c *RiskController) PeakPnL() decimal.Decimal {
	return c.peakPnL
}

// Drawdown 当前相对峰值的回撤。
func (c *RiskController) Drawdown() decimal.Decimal {
	return c.peakPnL.Sub(c.dailyPnL)
}

// UpdatePnL 覆盖当日盈亏快照并检查亏损与回撤限额。
// 创出新高时同步抬升峰值。
func (c *RiskController) UpdatePnL(pnl decimal.Decimal) {
	c.dailyPnL = pnl
	if pnl.GreaterThan(c.peakPnL) {
		c.peakPnL = pnl
	}
	c.checkPnLLimits()
}

// UpdatePositionValue 覆盖持仓价值快照并检查持仓限额。
func (c *RiskController) UpdatePositionValue(value decimal.Decimal) {
	c.positionValue = value
	c.checkPositionLimits()
}

// PositionValue 当前持仓价值。
func (c *RiskController) PositionValue() decimal.Decimal {
	return c.positionValue
}

// CheckGreekLimits 检查希腊值敞口，返回突破清单。
// 只做告警用途，不改变交易状态；是否据此熔断由调用方决策。
func (c *RiskController) CheckGreekLimits(greeks pricing.Greeks) []RiskBreach {
	var breaches []RiskBreach

	if greeks.Delta.Abs().GreaterThan(c.limits.MaxDelta) {
		breaches = append(breaches, RiskBreach{Kind: BreachDelta, Current: greeks.Delta.Abs(), Limit: c.limits.MaxDelta})
	}
	if greeks.Gamma.Abs().GreaterThan(c.limits.MaxGamma) {
		breaches = append(breaches, RiskBreach{Kind: BreachGamma, Current: greeks.Gamma.Abs(), Limit: c.limits.MaxGamma})
	}
	if greeks.Vega.Abs().GreaterThan(c.limits.MaxVega) {
		breaches = append(breaches, RiskBreach{Kind: BreachVega, Current: greeks.Vega.Abs(), Limit: c.limits.MaxVega})
	}

	return breaches
}

// Halt 以给定原因熔断交易。已熔断时保留最早的原因。
func (c *RiskController) Halt(reason string) {
	if c.state == TradingStateHalted {
		return
	}
	c.state = TradingStateHalted
	c.haltReason = reason
}

// Resume 人工解除熔断。
func (c *RiskController) Resume() {
	c.state = TradingStateActive
	c.haltReason = ""
}

// ResetDaily 日初重置盈亏跟踪。不改变交易状态：
// 隔夜仍处于熔断的账户需要人工 Resume。
func (c *RiskController) ResetDaily() {
	c.dailyPnL = decimal.Zero
	c.peakPnL = decimal.Zero
}

func (c *RiskController) checkPnLLimits() {
	if c.dailyPnL.LessThan(c.limits.MaxDailyLoss.Neg()) {
		c.Halt(fmt.Sprintf("daily loss limit exceeded: %s < -%s", c.dailyPnL, c.limits.MaxDailyLoss))
	}

	if drawdown := c.Drawdown(); drawdown.GreaterThan(c.limits.MaxDrawdown) {
		c.Halt(fmt.Sprintf("drawdown limit exceeded: %s > %s", drawdown, c.limits.MaxDrawdown))
	}
}

func (c *RiskController) checkPositionLimits() {
	if c.positionValue.Abs().GreaterThan(c.limits.MaxPositionValue) {
		c.Halt(fmt.Sprintf("position value limit exceeded: %s > %s", c.positionValue.Abs(), c.limits.MaxPositionValue))
	}
}
