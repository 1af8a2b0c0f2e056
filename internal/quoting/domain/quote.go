package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GeneratedQuote 报价生成结果：带量双边报价。
// 有效报价满足 ask > bid >= 0 且双边量为正。
type GeneratedQuote struct {
	BidPrice    decimal.Decimal `json:"bid_price"`
	BidSize     decimal.Decimal `json:"bid_size"`
	AskPrice    decimal.Decimal `json:"ask_price"`
	AskSize     decimal.Decimal `json:"ask_size"`
	TheoPrice   decimal.Decimal `json:"theo_price"`
	Spread      decimal.Decimal `json:"spread"`
	Skew        decimal.Decimal `json:"skew"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// NewGeneratedQuote 创建报价，价差由买卖价推导。
func NewGeneratedQuote(bidPrice, bidSize, askPrice, askSize, theoPrice, skew decimal.Decimal, timestampMs int64) GeneratedQuote {
	return GeneratedQuote{
		BidPrice:    bidPrice,
		BidSize:     bidSize,
		AskPrice:    askPrice,
		AskSize:     askSize,
		TheoPrice:   theoPrice,
		Spread:      askPrice.Sub(bidPrice),
		Skew:        skew,
		TimestampMs: timestampMs,
	}
}

// SymmetricQuote 围绕理论价的对称报价（无偏斜）。
func SymmetricQuote(theoPrice, halfSpread, size decimal.Decimal, timestampMs int64) GeneratedQuote {
	bidPrice := decimal.Max(theoPrice.Sub(halfSpread), decimal.Zero)
	askPrice := theoPrice.Add(halfSpread)

	return GeneratedQuote{
		BidPrice:    bidPrice,
		BidSize:     size,
		AskPrice:    askPrice,
		AskSize:     size,
		TheoPrice:   theoPrice,
		Spread:      askPrice.Sub(bidPrice),
		Skew:        decimal.Zero,
		TimestampMs: timestampMs,
	}
}

// MidPrice 买卖中间价。
func (q GeneratedQuote) MidPrice() decimal.Decimal {
	return q.BidPrice.Add(q.AskPrice).Div(two)
}

// SpreadBps 以基点表示的价差；理论价为零时返回 false。
func (q GeneratedQuote) SpreadBps() (decimal.Decimal, bool) {
	if q.TheoPrice.IsZero() {
		return decimal.Zero, false
	}
	return q.Spread.Div(q.TheoPrice).Mul(decimal.NewFromInt(10000)), true
}

// IsValid 报价有效性：ask > bid >= 0 且双边量为正。
func (q GeneratedQuote) IsValid() bool {
	return q.AskPrice.GreaterThan(q.BidPrice) &&
		!q.BidPrice.IsNegative() &&
		q.BidSize.IsPositive() &&
		q.AskSize.IsPositive()
}

// BidEdge 买边利润空间（理论价 - 买价）。
func (q GeneratedQuote) BidEdge() decimal.Decimal {
	return q.TheoPrice.Sub(q.BidPrice)
}

// AskEdge 卖边利润空间（卖价 - 理论价）。
func (q GeneratedQuote) AskEdge() decimal.Decimal {
	return q.AskPrice.Sub(q.TheoPrice)
}

// WithPriceAdjustment 整体平移价格后返回副本。
func (q GeneratedQuote) WithPriceAdjustment(adjustment decimal.Decimal) GeneratedQuote {
	q.BidPrice = q.BidPrice.Add(adjustment)
	q.AskPrice = q.AskPrice.Add(adjustment)
	q.TheoPrice = q.TheoPrice.Add(adjustment)
	return q
}

// WithSizeMultiplier 按倍数缩放双边量后返回副本。
func (q GeneratedQuote) WithSizeMultiplier(multiplier decimal.Decimal) GeneratedQuote {
	q.BidSize = q.BidSize.Mul(multiplier)
	q.AskSize = q.AskSize.Mul(multiplier)
	return q
}

// RoundToTick 按最小变动价位取整：买价向下、卖价向上，保证价差不缩小。
func (q GeneratedQuote) RoundToTick(tickSize decimal.Decimal) GeneratedQuote {
	if tickSize.IsZero() {
		return q
	}
	q.BidPrice = q.BidPrice.Div(tickSize).Floor().Mul(tickSize)
	q.AskPrice = q.AskPrice.Div(tickSize).Ceil().Mul(tickSize)
	q.Spread = q.AskPrice.Sub(q.BidPrice)
	return q
}

func (q GeneratedQuote) String() string {
	return fmt.Sprintf("%s x %s / %s x %s (theo %s)",
		q.BidSize, q.BidPrice, q.AskPrice, q.AskSize, q.TheoPrice)
}
