// 包 报价上下文的领域模型：报价参数、Avellaneda-Stoikov 价差计算与双边报价。
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuoteParams 报价参数校验失败。
var ErrInvalidQuoteParams = errors.New("invalid quote params")

// QuoteParams 一次报价所需的全部输入。
// 校验必须在计算之前显式执行，计算路径不做任何钳制兜底。
type QuoteParams struct {
	TheoPrice        decimal.Decimal `json:"theo_price"`        // 理论中间价
	Inventory        decimal.Decimal `json:"inventory"`         // 当前库存（有符号）
	Volatility       decimal.Decimal `json:"volatility"`        // 年化波动率 σ
	TimeToExpiry     decimal.Decimal `json:"time_to_expiry"`    // 剩余期限 τ（年）
	RiskAversion     decimal.Decimal `json:"risk_aversion"`     // γ
	ArrivalIntensity decimal.Decimal `json:"arrival_intensity"` // k
	BaseSpreadVol    decimal.Decimal `json:"base_spread_vol"`
	MaxInventory     decimal.Decimal `json:"max_inventory"`
	MinSize          decimal.Decimal `json:"min_size"`
	MaxSize          decimal.Decimal `json:"max_size"`
}

// NewQuoteParams 以常用默认值创建报价参数。
func NewQuoteParams(theoPrice, inventory, volatility, timeToExpiry decimal.Decimal) QuoteParams {
	return QuoteParams{
		TheoPrice:        theoPrice,
		Inventory:        inventory,
		Volatility:       volatility,
		TimeToExpiry:     timeToExpiry,
		RiskAversion:     decimal.RequireFromString("0.1"),
		ArrivalIntensity: decimal.NewFromInt(1),
		BaseSpreadVol:    decimal.RequireFromString("0.02"),
		MaxInventory:     decimal.NewFromInt(100),
		MinSize:          decimal.NewFromInt(1),
		MaxSize:          decimal.NewFromInt(10),
	}
}

// WithRiskAversion 返回替换 γ 后的副本。
func (p QuoteParams) WithRiskAversion(gamma decimal.Decimal) QuoteParams {
	p.RiskAversion = gamma
	return p
}

// WithArrivalIntensity 返回替换 k 后的副本。
func (p QuoteParams) WithArrivalIntensity(k decimal.Decimal) QuoteParams {
	p.ArrivalIntensity = k
	return p
}

// WithBaseSpreadVol 返回替换基础价差波动率后的副本。
func (p QuoteParams) WithBaseSpreadVol(v decimal.Decimal) QuoteParams {
	p.BaseSpreadVol = v
	return p
}

// WithMaxInventory 返回替换库存上限后的副本。
func (p QuoteParams) WithMaxInventory(max decimal.Decimal) QuoteParams {
	p.MaxInventory = max
	return p
}

// WithSizeLimits 返回替换报价量上下限后的副本。
func (p QuoteParams) WithSizeLimits(min, max decimal.Decimal) QuoteParams {
	p.MinSize = min
	p.MaxSize = max
	return p
}

// InventoryRatio 库存占上限的比例，钳制在 [-1, 1]。
func (p QuoteParams) InventoryRatio() decimal.Decimal {
	if p.MaxInventory.IsZero() {
		return decimal.Zero
	}
	ratio := p.Inventory.Div(p.MaxInventory)
	one := decimal.NewFromInt(1)
	return decimal.Max(one.Neg(), decimal.Min(ratio, one))
}

// IsInventoryFullLong 库存达到多头上限。
func (p QuoteParams) IsInventoryFullLong() bool {
	return p.Inventory.GreaterThanOrEqual(p.MaxInventory)
}

// IsInventoryFullShort 库存达到空头上限。
func (p QuoteParams) IsInventoryFullShort() bool {
	return p.Inventory.LessThanOrEqual(p.MaxInventory.Neg())
}

// Validate 快速失败校验。任何一项不满足即返回错误，绝不静默钳制。
func (p QuoteParams) Validate() error {
	if p.TheoPrice.IsNegative() {
		return fmt.Errorf("%w: theoretical price cannot be negative", ErrInvalidQuoteParams)
	}
	if p.Volatility.IsNegative() {
		return fmt.Errorf("%w: volatility cannot be negative", ErrInvalidQuoteParams)
	}
	if p.TimeToExpiry.IsNegative() {
		return fmt.Errorf("%w: time to expiry cannot be negative", ErrInvalidQuoteParams)
	}
	if !p.RiskAversion.IsPositive() {
		return fmt.Errorf("%w: risk aversion must be positive", ErrInvalidQuoteParams)
	}
	if !p.ArrivalIntensity.IsPositive() {
		return fmt.Errorf("%w: arrival intensity must be positive", ErrInvalidQuoteParams)
	}
	if !p.MaxInventory.IsPositive() {
		return fmt.Errorf("%w: max inventory must be positive", ErrInvalidQuoteParams)
	}
	if !p.MinSize.IsPositive() {
		return fmt.Errorf("%w: min size must be positive", ErrInvalidQuoteParams)
	}
	if p.MaxSize.LessThan(p.MinSize) {
		return fmt.Errorf("%w: max size must be >= min size", ErrInvalidQuoteParams)
	}
	return nil
}
