package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

// unlimited 希腊字母敞口上限的默认值，视为不设限。
var unlimited = decimal.New(1, 18)

// LimitKind 限额类别。类别集合是封闭的，便于穷举处理。
type LimitKind string

const (
	LimitPerOption     LimitKind = "PER_OPTION"
	LimitPerStrike     LimitKind = "PER_STRIKE"
	LimitPerExpiration LimitKind = "PER_EXPIRATION"
	LimitPerUnderlying LimitKind = "PER_UNDERLYING"
	LimitDelta         LimitKind = "DELTA"
	LimitGamma         LimitKind = "GAMMA"
	LimitVega          LimitKind = "VEGA"
	LimitTheta         LimitKind = "THETA"
)

// LimitBreach 一次限额突破，携带当前值与限额值。
type LimitBreach struct {
	Kind    LimitKind       `json:"kind"`
	Current decimal.Decimal `json:"current"`
	Limit   decimal.Decimal `json:"limit"`
}

func (b LimitBreach) String() string {
	return fmt.Sprintf("%s limit breached: %s > %s", b.Kind, b.Current, b.Limit)
}

// PositionLimits 仓位限额配置（不可变值对象）。
// 包含各聚合层级的仓位上限与美元化希腊字母敞口上限。
type PositionLimits struct {
	PerOption     decimal.Decimal `json:"per_option"`
	PerStrike     decimal.Decimal `json:"per_strike"`
	PerExpiration decimal.Decimal `json:"per_expiration"`
	PerUnderlying decimal.Decimal `json:"per_underlying"`
	MaxDelta      decimal.Decimal `json:"max_delta"`
	MaxGamma      decimal.Decimal `json:"max_gamma"`
	MaxVega       decimal.Decimal `json:"max_vega"`
	MaxTheta      decimal.Decimal `json:"max_theta"`
}

// NewPositionLimits 创建仅设仓位上限的限额，希腊字母敞口默认不设限。
func NewPositionLimits(perOption, perStrike, perExpiration, perUnderlying decimal.Decimal) PositionLimits {
	return PositionLimits{
		PerOption:     perOption,
		PerStrike:     perStrike,
		PerExpiration: perExpiration,
		PerUnderlying: perUnderlying,
		MaxDelta:      unlimited,
		MaxGamma:      unlimited,
		MaxVega:       unlimited,
		MaxTheta:      unlimited,
	}
}

// SmallLimits 小账户预设。
func SmallLimits() PositionLimits {
	return PositionLimits{
		PerOption:     decimal.NewFromInt(100),
		PerStrike:     decimal.NewFromInt(200),
		PerExpiration: decimal.NewFromInt(500),
		PerUnderlying: decimal.NewFromInt(1000),
		MaxDelta:      decimal.NewFromInt(50000),
		MaxGamma:      decimal.NewFromInt(5000),
		MaxVega:       decimal.NewFromInt(10000),
		MaxTheta:      decimal.NewFromInt(5000),
	}
}

// MediumLimits 中等账户预设（默认）。
func MediumLimits() PositionLimits {
	return PositionLimits{
		PerOption:     decimal.NewFromInt(500),
		PerStrike:     decimal.NewFromInt(1000),
		PerExpiration: decimal.NewFromInt(2500),
		PerUnderlying: decimal.NewFromInt(5000),
		MaxDelta:      decimal.NewFromInt(250000),
		MaxGamma:      decimal.NewFromInt(25000),
		MaxVega:       decimal.NewFromInt(50000),
		MaxTheta:      decimal.NewFromInt(25000),
	}
}

// LargeLimits 大账户预设。
func LargeLimits() PositionLimits {
	return PositionLimits{
		PerOption:     decimal.NewFromInt(1000),
		PerStrike:     decimal.NewFromInt(2000),
		PerExpiration: decimal.NewFromInt(5000),
		PerUnderlying: decimal.NewFromInt(10000),
		MaxDelta:      decimal.NewFromInt(500000),
		MaxGamma:      decimal.NewFromInt(50000),
		MaxVega:       decimal.NewFromInt(100000),
		MaxTheta:      decimal.NewFromInt(50000),
	}
}

// WithPerOption 返回替换单合约上限后的副本。
func (l PositionLimits) WithPerOption(limit decimal.Decimal) PositionLimits {
	l.PerOption = limit
	return l
}

// WithPerStrike 返回替换行权价层上限后的副本。
func (l PositionLimits) WithPerStrike(limit decimal.Decimal) PositionLimits {
	l.PerStrike = limit
	return l
}

// WithPerExpiration 返回替换到期日层上限后的副本。
func (l PositionLimits) WithPerExpiration(limit decimal.Decimal) PositionLimits {
	l.PerExpiration = limit
	return l
}

// WithPerUnderlying 返回替换标的层上限后的副本。
func (l PositionLimits) WithPerUnderlying(limit decimal.Decimal) PositionLimits {
	l.PerUnderlying = limit
	return l
}

// WithMaxDelta 返回替换 Delta 上限后的副本。
func (l PositionLimits) WithMaxDelta(limit decimal.Decimal) PositionLimits {
	l.MaxDelta = limit
	return l
}

// WithMaxGamma 返回替换 Gamma 上限后的副本。
func (l PositionLimits) WithMaxGamma(limit decimal.Decimal) PositionLimits {
	l.MaxGamma = limit
	return l
}

// WithMaxVega 返回替换 Vega 上限后的副本。
func (l PositionLimits) WithMaxVega(limit decimal.Decimal) PositionLimits {
	l.MaxVega = limit
	return l
}

// WithMaxTheta 返回替换 Theta 上限后的副本。
func (l PositionLimits) WithMaxTheta(limit decimal.Decimal) PositionLimits {
	l.MaxTheta = limit
	return l
}

// ExceedsPerOption |quantity| 超过单合约上限。
func (l PositionLimits) ExceedsPerOption(quantity decimal.Decimal) bool {
	return quantity.Abs().GreaterThan(l.PerOption)
}

// ExceedsPerStrike |quantity| 超过行权价层上限。
func (l PositionLimits) ExceedsPerStrike(quantity decimal.Decimal) bool {
	return quantity.Abs().GreaterThan(l.PerStrike)
}

// ExceedsPerExpiration |quantity| 超过到期日层上限。
func (l PositionLimits) ExceedsPerExpiration(quantity decimal.Decimal) bool {
	return quantity.Abs().GreaterThan(l.PerExpiration)
}

// ExceedsPerUnderlying |quantity| 超过标的层上限。
func (l PositionLimits) ExceedsPerUnderlying(quantity decimal.Decimal) bool {
	return quantity.Abs().GreaterThan(l.PerUnderlying)
}

// CheckGreekLimits 无条件评估全部四项美元化希腊字母上限，返回所有突破项。
// 只读检查，执行策略由调用方决定。
func (l PositionLimits) CheckGreekLimits(greeks pricing.Greeks, spot, multiplier decimal.Decimal) []LimitBreach {
	var breaches []LimitBreach

	dollarDelta := greeks.DollarDelta(spot, multiplier).Abs()
	if dollarDelta.GreaterThan(l.MaxDelta) {
		breaches = append(breaches, LimitBreach{Kind: LimitDelta, Current: dollarDelta, Limit: l.MaxDelta})
	}

	dollarGamma := greeks.DollarGamma(spot, multiplier).Abs()
	if dollarGamma.GreaterThan(l.MaxGamma) {
		breaches = append(breaches, LimitBreach{Kind: LimitGamma, Current: dollarGamma, Limit: l.MaxGamma})
	}

	dollarVega := greeks.DollarVega(multiplier).Abs()
	if dollarVega.GreaterThan(l.MaxVega) {
		breaches = append(breaches, LimitBreach{Kind: LimitVega, Current: dollarVega, Limit: l.MaxVega})
	}

	dollarTheta := greeks.DollarTheta(multiplier).Abs()
	if dollarTheta.GreaterThan(l.MaxTheta) {
		breaches = append(breaches, LimitBreach{Kind: LimitTheta, Current: dollarTheta, Limit: l.MaxTheta})
	}

	return breaches
}

// OptionUtilization 单合约限额的使用率。
func (l PositionLimits) OptionUtilization(quantity decimal.Decimal) decimal.Decimal {
	if l.PerOption.IsZero() {
		return decimal.Zero
	}
	return quantity.Abs().Div(l.PerOption)
}

// Scale 按系数缩放全部限额。
func (l PositionLimits) Scale(factor decimal.Decimal) PositionLimits {
	return PositionLimits{
		PerOption:     l.PerOption.Mul(factor),
		PerStrike:     l.PerStrike.Mul(factor),
		PerExpiration: l.PerExpiration.Mul(factor),
		PerUnderlying: l.PerUnderlying.Mul(factor),
		MaxDelta:      l.MaxDelta.Mul(factor),
		MaxGamma:      l.MaxGamma.Mul(factor),
		MaxVega:       l.MaxVega.Mul(factor),
		MaxTheta:      l.MaxTheta.Mul(factor),
	}
}
