package domain

import (
	"github.com/shopspring/decimal"
)

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
	half  = decimal.RequireFromString("0.5")
)

// SpreadCalculator 基于 Avellaneda-Stoikov 模型的价差计算器。
// 无状态配置对象：同样的参数输入必然产生同样的报价。
// 调用方必须先通过 QuoteParams.Validate 校验输入。
type SpreadCalculator struct {
	MinSpread           decimal.Decimal `json:"min_spread"`
	MaxSpread           decimal.Decimal `json:"max_spread"`
	InventorySkewFactor decimal.Decimal `json:"inventory_skew_factor"`
	VolatilityFactor    decimal.Decimal `json:"volatility_factor"`
}

// NewSpreadCalculator 创建默认配置的价差计算器。
func NewSpreadCalculator() SpreadCalculator {
	return SpreadCalculator{
		MinSpread:           decimal.RequireFromString("0.001"),
		MaxSpread:           decimal.RequireFromString("0.10"),
		InventorySkewFactor: decimal.RequireFromString("0.001"),
		VolatilityFactor:    decimal.NewFromInt(1),
	}
}

// WithMinSpread 返回替换最小价差后的副本。
func (c SpreadCalculator) WithMinSpread(min decimal.Decimal) SpreadCalculator {
	c.MinSpread = min
	return c
}

// WithMaxSpread 返回替换最大价差后的副本。
func (c SpreadCalculator) WithMaxSpread(max decimal.Decimal) SpreadCalculator {
	c.MaxSpread = max
	return c
}

// WithInventorySkewFactor 返回替换库存偏斜系数后的副本。
func (c SpreadCalculator) WithInventorySkewFactor(factor decimal.Decimal) SpreadCalculator {
	c.InventorySkewFactor = factor
	return c
}

// WithVolatilityFactor 返回替换波动率系数后的副本。
func (c SpreadCalculator) WithVolatilityFactor(factor decimal.Decimal) SpreadCalculator {
	c.VolatilityFactor = factor
	return c
}

// OptimalSpread 最优价差：
//
//	δ* = γ·σ²·τ + (2/γ)·ln(1 + γ/k)
//
// 对数项用多项式近似（见 lnOnePlus），结果乘波动率系数后钳制到
// [MinSpread, MaxSpread]。
func (c SpreadCalculator) OptimalSpread(params QuoteParams) decimal.Decimal {
	gamma := params.RiskAversion
	sigma := params.Volatility
	tau := params.TimeToExpiry
	k := params.ArrivalIntensity

	varianceTerm := gamma.Mul(sigma).Mul(sigma).Mul(tau)

	gammaOverK := gamma.Div(k)
	intensityTerm := two.Div(gamma).Mul(lnOnePlus(gammaOverK))

	adjusted := varianceTerm.Add(intensityTerm).Mul(c.VolatilityFactor)

	return decimal.Max(c.MinSpread, decimal.Min(adjusted, c.MaxSpread))
}

// InventorySkew 库存偏斜：skew = q·γ·σ²·τ·InventorySkewFactor。
// 正偏斜（多头库存）把保留价下移以诱导卖出，反之亦然。
func (c SpreadCalculator) InventorySkew(params QuoteParams) decimal.Decimal {
	return params.Inventory.
		Mul(params.RiskAversion).
		Mul(params.Volatility).
		Mul(params.Volatility).
		Mul(params.TimeToExpiry).
		Mul(c.InventorySkewFactor)
}

// GenerateQuote 生成完整双边报价。
// 保留价 = 理论价 - 偏斜；买卖价围绕保留价各取半价差，买价不为负；
// 报价量按库存比例偏斜并在库存打满的一侧归零。
func (c SpreadCalculator) GenerateQuote(params QuoteParams, timestampMs int64) GeneratedQuote {
	halfSpread := c.OptimalSpread(params).Div(two)
	skew := c.InventorySkew(params)
	theo := params.TheoPrice

	reservationPrice := theo.Sub(skew)

	bidPrice := decimal.Max(reservationPrice.Sub(halfSpread), decimal.Zero)
	askPrice := reservationPrice.Add(halfSpread)

	bidSize, askSize := c.calculateSizes(params)

	return NewGeneratedQuote(bidPrice, bidSize, askPrice, askSize, theo, skew, timestampMs)
}

// calculateSizes 按库存偏斜报价量：
// 多头库存缩买量增卖量，空头库存反之；基准量为上下限的中点，
// 偏移量为基准量的 |库存比例|/2，最终钳制到 [MinSize, MaxSize]，
// 库存打满的一侧强制为零。
func (c SpreadCalculator) calculateSizes(params QuoteParams) (decimal.Decimal, decimal.Decimal) {
	baseSize := params.MinSize.Add(params.MaxSize).Div(two)
	inventoryRatio := params.InventoryRatio()

	sizeAdjustment := baseSize.Mul(inventoryRatio.Abs()).Div(two)

	var bidSize, askSize decimal.Decimal
	switch {
	case inventoryRatio.IsPositive():
		bidSize = baseSize.Sub(sizeAdjustment)
		askSize = baseSize.Add(sizeAdjustment)
	case inventoryRatio.IsNegative():
		bidSize = baseSize.Add(sizeAdjustment)
		askSize = baseSize.Sub(sizeAdjustment)
	default:
		bidSize = baseSize
		askSize = baseSize
	}

	bidSize = decimal.Max(params.MinSize, decimal.Min(bidSize, params.MaxSize))
	askSize = decimal.Max(params.MinSize, decimal.Min(askSize, params.MaxSize))

	if params.IsInventoryFullLong() {
		bidSize = decimal.Zero
	}
	if params.IsInventoryFullShort() {
		askSize = decimal.Zero
	}

	return bidSize, askSize
}

// lnOnePlus 定点算术下的 ln(1+x) 近似。
// |x| < 0.5 时用三项泰勒级数 x - x²/2 + x³/3，
// 否则退化为有理近似 x / (1 + x/2)。γ/k 通常很小，误差可接受，
// 且最终价差会被钳制到 [MinSpread, MaxSpread]。
func lnOnePlus(x decimal.Decimal) decimal.Decimal {
	if x.Abs().LessThan(half) {
		x2 := x.Mul(x)
		x3 := x2.Mul(x)
		return x.Sub(x2.Div(two)).Add(x3.Div(three))
	}
	return x.Div(decimal.NewFromInt(1).Add(x.Div(two)))
}
