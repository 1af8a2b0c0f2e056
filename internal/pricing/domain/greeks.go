// 包 期权定价上下文的领域模型：希腊字母敏感度向量及其美元化换算。
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Greeks 期权希腊字母容器（每张合约的敏感度）。
// Delta: 对标的价格的敏感度；Gamma: Delta 的变化率；
// Theta: 时间衰减（按天）；Vega: 对波动率的敏感度；Rho: 对利率的敏感度。
// 零值即加法单位元，所有运算均为逐分量运算。
type Greeks struct {
	Delta decimal.Decimal `json:"delta"`
	Gamma decimal.Decimal `json:"gamma"`
	Theta decimal.Decimal `json:"theta"`
	Vega  decimal.Decimal `json:"vega"`
	Rho   decimal.Decimal `json:"rho"`
}

// NewGreeks 创建希腊字母容器。theta 的单位为每天。
func NewGreeks(delta, gamma, theta, vega, rho decimal.Decimal) Greeks {
	return Greeks{Delta: delta, Gamma: gamma, Theta: theta, Vega: vega, Rho: rho}
}

// ZeroGreeks 返回全零的希腊字母容器。
func ZeroGreeks() Greeks {
	return Greeks{
		Delta: decimal.Zero,
		Gamma: decimal.Zero,
		Theta: decimal.Zero,
		Vega:  decimal.Zero,
		Rho:   decimal.Zero,
	}
}

// SumGreeks 对一组希腊字母求和（从零值折叠，顺序无关）。
func SumGreeks(list []Greeks) Greeks {
	total := ZeroGreeks()
	for _, g := range list {
		total = total.Add(g)
	}
	return total
}

// Add 逐分量相加。
func (g Greeks) Add(other Greeks) Greeks {
	return Greeks{
		Delta: g.Delta.Add(other.Delta),
		Gamma: g.Gamma.Add(other.Gamma),
		Theta: g.Theta.Add(other.Theta),
		Vega:  g.Vega.Add(other.Vega),
		Rho:   g.Rho.Add(other.Rho),
	}
}

// Neg 逐分量取反。
func (g Greeks) Neg() Greeks {
	return Greeks{
		Delta: g.Delta.Neg(),
		Gamma: g.Gamma.Neg(),
		Theta: g.Theta.Neg(),
		Vega:  g.Vega.Neg(),
		Rho:   g.Rho.Neg(),
	}
}

// Scale 按系数缩放所有分量（如按持仓数量放大）。
func (g Greeks) Scale(multiplier decimal.Decimal) Greeks {
	return Greeks{
		Delta: g.Delta.Mul(multiplier),
		Gamma: g.Gamma.Mul(multiplier),
		Theta: g.Theta.Mul(multiplier),
		Vega:  g.Vega.Mul(multiplier),
		Rho:   g.Rho.Mul(multiplier),
	}
}

// Equal 逐分量判等（数值相等，不区分小数位表示）。
func (g Greeks) Equal(other Greeks) bool {
	return g.Delta.Equal(other.Delta) &&
		g.Gamma.Equal(other.Gamma) &&
		g.Theta.Equal(other.Theta) &&
		g.Vega.Equal(other.Vega) &&
		g.Rho.Equal(other.Rho)
}

// IsZero 全部分量为零时返回 true。
func (g Greeks) IsZero() bool {
	return g.Delta.IsZero() && g.Gamma.IsZero() && g.Theta.IsZero() &&
		g.Vega.IsZero() && g.Rho.IsZero()
}

// AbsDelta 返回 Delta 的绝对值。
func (g Greeks) AbsDelta() decimal.Decimal {
	return g.Delta.Abs()
}

// IsLongDelta 多头敞口（Delta > 0）。
func (g Greeks) IsLongDelta() bool {
	return g.Delta.IsPositive()
}

// IsShortDelta 空头敞口（Delta < 0）。
func (g Greeks) IsShortDelta() bool {
	return g.Delta.IsNegative()
}

// DollarDelta 美元 Delta = delta * spot * multiplier。
func (g Greeks) DollarDelta(spot, multiplier decimal.Decimal) decimal.Decimal {
	return g.Delta.Mul(spot).Mul(multiplier)
}

// DollarGamma 美元 Gamma = gamma * (spot/100)^2 * multiplier / 2，
// 即标的变动 1% 时的盈亏。
func (g Greeks) DollarGamma(spot, multiplier decimal.Decimal) decimal.Decimal {
	onePercent := spot.Div(hundred)
	return g.Gamma.Mul(onePercent).Mul(onePercent).Mul(multiplier).Div(two)
}

// DollarTheta 美元 Theta = theta * multiplier（每天）。
func (g Greeks) DollarTheta(multiplier decimal.Decimal) decimal.Decimal {
	return g.Theta.Mul(multiplier)
}

// DollarVega 美元 Vega = vega * multiplier。
func (g Greeks) DollarVega(multiplier decimal.Decimal) decimal.Decimal {
	return g.Vega.Mul(multiplier)
}

// EstimatePnL 用二阶泰勒展开估算盈亏：
// ΔV ≈ Δ·ΔS + ½Γ·(ΔS)² + Θ·Δt + ν·Δσ
func (g Greeks) EstimatePnL(spotChange, volChange, daysPassed decimal.Decimal) decimal.Decimal {
	deltaPnL := g.Delta.Mul(spotChange)
	gammaPnL := g.Gamma.Mul(spotChange).Mul(spotChange).Div(two)
	thetaPnL := g.Theta.Mul(daysPassed)
	vegaPnL := g.Vega.Mul(volChange)

	return deltaPnL.Add(gammaPnL).Add(thetaPnL).Add(vegaPnL)
}

func (g Greeks) String() string {
	return fmt.Sprintf("Δ=%s Γ=%s Θ=%s ν=%s ρ=%s",
		g.Delta.StringFixed(4), g.Gamma.StringFixed(6), g.Theta.StringFixed(4),
		g.Vega.StringFixed(4), g.Rho.StringFixed(4))
}
