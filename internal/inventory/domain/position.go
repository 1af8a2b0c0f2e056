// 包 库存管理上下文的领域模型：单合约持仓、仓位限额与库存管理器。
package domain

import (
	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

// Position 单个期权合约的持仓。
// 正数量为多头，负数量为空头；加权平均价核算成本。
// 不变量：操作之间 CostBasis = Quantity * AveragePrice * Multiplier；
// 数量归零后均价与成本同时归零。
type Position struct {
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	Greeks       pricing.Greeks  `json:"greeks"`
	RealizedPnL  decimal.Decimal `json:"realized_pnl"`
	LastUpdateMs int64           `json:"last_update_ms"`
}

// NewPosition 创建一个空仓位。multiplier 为合约乘数（股票期权通常为 100）。
func NewPosition(multiplier decimal.Decimal) *Position {
	return &Position{
		Quantity:     decimal.Zero,
		AveragePrice: decimal.Zero,
		CostBasis:    decimal.Zero,
		Multiplier:   multiplier,
		Greeks:       pricing.ZeroGreeks(),
		RealizedPnL:  decimal.Zero,
	}
}

// NewPositionWithEntry 以初始成交创建仓位。
func NewPositionWithEntry(quantity, price, multiplier decimal.Decimal, timestampMs int64) *Position {
	return &Position{
		Quantity:     quantity,
		AveragePrice: price,
		CostBasis:    quantity.Mul(price).Mul(multiplier),
		Multiplier:   multiplier,
		Greeks:       pricing.ZeroGreeks(),
		RealizedPnL:  decimal.Zero,
		LastUpdateMs: timestampMs,
	}
}

// IsFlat 数量为零。
func (p *Position) IsFlat() bool {
	return p.Quantity.IsZero()
}

// IsLong 多头仓位。
func (p *Position) IsLong() bool {
	return p.Quantity.IsPositive()
}

// IsShort 空头仓位。
func (p *Position) IsShort() bool {
	return p.Quantity.IsNegative()
}

// AbsQuantity 数量的绝对值。
func (p *Position) AbsQuantity() decimal.Decimal {
	return p.Quantity.Abs()
}

// NotionalValue 按当前价计算的名义价值。
func (p *Position) NotionalValue(currentPrice decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(currentPrice).Mul(p.Multiplier)
}

// UnrealizedPnL 按当前价计算的未实现盈亏。
func (p *Position) UnrealizedPnL(currentPrice decimal.Decimal) decimal.Decimal {
	return p.NotionalValue(currentPrice).Sub(p.CostBasis)
}

// TotalPnL 已实现 + 未实现盈亏。
func (p *Position) TotalPnL(currentPrice decimal.Decimal) decimal.Decimal {
	return p.RealizedPnL.Add(p.UnrealizedPnL(currentPrice))
}

// UpdateGreeks 覆盖当前希腊字母并刷新时间戳。
func (p *Position) UpdateGreeks(greeks pricing.Greeks, timestampMs int64) {
	p.Greeks = greeks
	p.LastUpdateMs = timestampMs
}

// Add 记入一笔成交（正数量为买入，负数量为卖出）。
// 同向加仓按加权平均更新均价；反向成交进入减仓/反手分支。
// 数量为零时不做任何事。
func (p *Position) Add(quantity, price decimal.Decimal, timestampMs int64) {
	if quantity.IsZero() {
		return
	}

	tradeValue := quantity.Mul(price).Mul(p.Multiplier)

	if p.Quantity.Sign() == quantity.Sign() || p.Quantity.IsZero() {
		newQuantity := p.Quantity.Add(quantity)
		if !newQuantity.IsZero() {
			p.AveragePrice = p.CostBasis.Add(tradeValue).Div(newQuantity.Mul(p.Multiplier))
		}
		p.Quantity = newQuantity
		p.CostBasis = p.CostBasis.Add(tradeValue)
	} else {
		p.reduceOrFlip(quantity, price)
	}

	p.LastUpdateMs = timestampMs
}

// Reduce 减仓，等价于 Add(-quantity, ...)。
func (p *Position) Reduce(quantity, price decimal.Decimal, timestampMs int64) {
	p.Add(quantity.Neg(), price, timestampMs)
}

// reduceOrFlip 处理反向成交：先对已平部分按旧均价结算已实现盈亏，
// 未超出持仓则减仓并按不变的均价重算成本；超出部分反手并以成交价作为新均价。
func (p *Position) reduceOrFlip(quantity, price decimal.Decimal) {
	closeQuantity := decimal.Min(quantity.Abs(), p.Quantity.Abs())
	closeSign := decimal.NewFromInt(int64(p.Quantity.Sign()))

	closeValue := closeQuantity.Mul(price).Mul(p.Multiplier)
	closeCost := closeQuantity.Mul(p.AveragePrice).Mul(p.Multiplier)
	p.RealizedPnL = p.RealizedPnL.Add(closeValue.Sub(closeCost).Mul(closeSign))

	remaining := quantity.Abs().Sub(closeQuantity)
	if remaining.IsZero() {
		p.Quantity = p.Quantity.Add(quantity)
		p.CostBasis = p.Quantity.Mul(p.AveragePrice).Mul(p.Multiplier)
		if p.Quantity.IsZero() {
			p.AveragePrice = decimal.Zero
		}
	} else {
		p.Quantity = remaining.Mul(decimal.NewFromInt(int64(quantity.Sign())))
		p.AveragePrice = price
		p.CostBasis = p.Quantity.Mul(price).Mul(p.Multiplier)
	}
}

// Close 全部平仓，返回本次平仓实现的盈亏。
func (p *Position) Close(price decimal.Decimal, timestampMs int64) decimal.Decimal {
	if p.IsFlat() {
		return decimal.Zero
	}

	closePnL := p.UnrealizedPnL(price)
	p.RealizedPnL = p.RealizedPnL.Add(closePnL)
	p.Quantity = decimal.Zero
	p.AveragePrice = decimal.Zero
	p.CostBasis = decimal.Zero
	p.LastUpdateMs = timestampMs

	return closePnL
}

// Reset 清空仓位与盈亏。
func (p *Position) Reset() {
	p.Quantity = decimal.Zero
	p.AveragePrice = decimal.Zero
	p.CostBasis = decimal.Zero
	p.Greeks = pricing.ZeroGreeks()
	p.RealizedPnL = decimal.Zero
	p.LastUpdateMs = 0
}
