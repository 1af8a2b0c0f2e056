package domain

import (
	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

var two = decimal.NewFromInt(2)

// PnLAttribution 按希腊值来源拆解的盈亏归因。
// 恒有 总盈亏 = 已解释 + 残差。
type PnLAttribution struct {
	DeltaPnL       decimal.Decimal `json:"delta_pnl"`       // 标的价格变动贡献
	GammaPnL       decimal.Decimal `json:"gamma_pnl"`       // 凸性贡献
	ThetaPnL       decimal.Decimal `json:"theta_pnl"`       // 时间衰减贡献
	VegaPnL        decimal.Decimal `json:"vega_pnl"`        // 波动率变动贡献
	RhoPnL         decimal.Decimal `json:"rho_pnl"`         // 利率变动贡献
	UnexplainedPnL decimal.Decimal `json:"unexplained_pnl"` // 残差
}

// CalculateAttribution 从组合希腊值与市场变动计算盈亏归因。
//
//	delta 项 = Δ·dS
//	gamma 项 = Γ·dS²/2
//	theta 项 = Θ·天数
//	vega 项  = V·dσ
//	rho 项   = ρ·dr
//
// 残差 = 实际盈亏 - 以上各项之和。
func CalculateAttribution(greeks pricing.Greeks, spotChange, volChange, daysPassed, rateChange, actualPnL decimal.Decimal) PnLAttribution {
	deltaPnL := greeks.Delta.Mul(spotChange)
	gammaPnL := greeks.Gamma.Mul(spotChange).Mul(spotChange).Div(two)
	thetaPnL := greeks.Theta.Mul(daysPassed)
	vegaPnL := greeks.Vega.Mul(volChange)
	rhoPnL := greeks.Rho.Mul(rateChange)

	explained := deltaPnL.Add(gammaPnL).Add(thetaPnL).Add(vegaPnL).Add(rhoPnL)

	return PnLAttribution{
		DeltaPnL:       deltaPnL,
		GammaPnL:       gammaPnL,
		ThetaPnL:       thetaPnL,
		VegaPnL:        vegaPnL,
		RhoPnL:         rhoPnL,
		UnexplainedPnL: actualPnL.Sub(explained),
	}
}

// ExplainedPnL 各希腊值项之和。
func (a PnLAttribution) ExplainedPnL() decimal.Decimal {
	return a.DeltaPnL.Add(a.GammaPnL).Add(a.ThetaPnL).Add(a.VegaPnL).Add(a.RhoPnL)
}

// TotalPnL 已解释 + 残差，恒等于传入的实际盈亏。
func (a PnLAttribution) TotalPnL() decimal.Decimal {
	return a.ExplainedPnL().Add(a.UnexplainedPnL)
}
