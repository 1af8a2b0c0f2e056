// 包 风控上下文的领域模型：风险限额与交易熔断控制器。
package domain

import (
	"github.com/shopspring/decimal"
)

// RiskLimits 做市风险限额配置。
type RiskLimits struct {
	MaxDailyLoss     decimal.Decimal `json:"max_daily_loss"`     // 单日最大亏损
	MaxDrawdown      decimal.Decimal `json:"max_drawdown"`       // 相对峰值的最大回撤
	MaxPositionValue decimal.Decimal `json:"max_position_value"` // 最大持仓价值
	MaxDelta         decimal.Decimal `json:"max_delta"`          // Delta 敞口上限
	MaxGamma         decimal.Decimal `json:"max_gamma"`          // Gamma 敞口上限
	MaxVega          decimal.Decimal `json:"max_vega"`           // Vega 敞口上限
}

// NewRiskLimits 创建默认风险限额。
func NewRiskLimits() RiskLimits {
	return RiskLimits{
		MaxDailyLoss:     decimal.NewFromInt(10000),
		MaxDrawdown:      decimal.NewFromInt(50000),
		MaxPositionValue: decimal.NewFromInt(1000000),
		MaxDelta:         decimal.NewFromInt(100000),
		MaxGamma:         decimal.NewFromInt(10000),
		MaxVega:          decimal.NewFromInt(50000),
	}
}

// WithDailyLoss 返回替换单日亏损限额后的副本。
func (l RiskLimits) WithDailyLoss(max decimal.Decimal) RiskLimits {
	l.MaxDailyLoss = max
	return l
}

// WithDrawdown 返回替换回撤限额后的副本。
func (l RiskLimits) WithDrawdown(max decimal.Decimal) RiskLimits {
	l.MaxDrawdown = max
	return l
}

// WithPositionValue 返回替换持仓价值限额后的副本。
func (l RiskLimits) WithPositionValue(max decimal.Decimal) RiskLimits {
	l.MaxPositionValue = max
	return l
}

// WithGreekLimits 返回替换希腊值敞口限额后的副本。
func (l RiskLimits) WithGreekLimits(maxDelta, maxGamma, maxVega decimal.Decimal) RiskLimits {
	l.MaxDelta = maxDelta
	l.MaxGamma = maxGamma
	l.MaxVega = maxVega
	return l
}
