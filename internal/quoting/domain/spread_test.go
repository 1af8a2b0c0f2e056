package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultParams() QuoteParams {
	return NewQuoteParams(d("100"), decimal.Zero, d("0.30"), d("0.25"))
}

func TestOptimalSpreadWithinBounds(t *testing.T) {
	calc := NewSpreadCalculator()
	params := defaultParams()

	spread := calc.OptimalSpread(params)

	assert.True(t, spread.GreaterThanOrEqual(calc.MinSpread))
	assert.True(t, spread.LessThanOrEqual(calc.MaxSpread))
}

func TestOptimalSpreadIncreasesWithVolatility(t *testing.T) {
	calc := NewSpreadCalculator()
	// 大 k 让对数项足够小，避免价差被钳到上限掩盖单调性。
	low := defaultParams().WithArrivalIntensity(d("1000"))
	low.Volatility = d("0.10")
	high := defaultParams().WithArrivalIntensity(d("1000"))
	high.Volatility = d("0.60")

	spreadLow := calc.OptimalSpread(low)
	spreadHigh := calc.OptimalSpread(high)

	assert.True(t, spreadHigh.GreaterThan(spreadLow),
		"expected %s > %s", spreadHigh, spreadLow)
}

func TestOptimalSpreadClampedToMax(t *testing.T) {
	calc := NewSpreadCalculator()
	params := defaultParams()
	params.Volatility = d("5")
	params.TimeToExpiry = d("1")

	spread := calc.OptimalSpread(params)

	assert.True(t, spread.Equal(calc.MaxSpread))
}

func TestOptimalSpreadClampedToMin(t *testing.T) {
	calc := NewSpreadCalculator().WithMinSpread(d("0.05"))
	params := defaultParams()
	params.Volatility = d("0.0001")
	params.TimeToExpiry = d("0.001")
	params.ArrivalIntensity = d("1000000")

	spread := calc.OptimalSpread(params)

	assert.True(t, spread.Equal(d("0.05")))
}

func TestInventorySkewSign(t *testing.T) {
	calc := NewSpreadCalculator()

	long := defaultParams()
	long.Inventory = d("50")
	assert.True(t, calc.InventorySkew(long).IsPositive())

	short := defaultParams()
	short.Inventory = d("-50")
	assert.True(t, calc.InventorySkew(short).IsNegative())

	flat := defaultParams()
	assert.True(t, calc.InventorySkew(flat).IsZero())
}

func TestGenerateQuoteFlatInventory(t *testing.T) {
	calc := NewSpreadCalculator()
	params := defaultParams()
	require.NoError(t, params.Validate())

	quote := calc.GenerateQuote(params, 1700000000000)

	assert.True(t, quote.IsValid(), "quote: %s", quote)
	assert.True(t, quote.Skew.IsZero())
	// 无库存时报价围绕理论价对称。
	assert.True(t, quote.BidEdge().Equal(quote.AskEdge()))
	assert.True(t, quote.BidSize.Equal(quote.AskSize))
	assert.Equal(t, int64(1700000000000), quote.TimestampMs)
}

func TestGenerateQuoteLongInventorySkewsDown(t *testing.T) {
	calc := NewSpreadCalculator()
	flat := defaultParams()
	long := defaultParams()
	long.Inventory = d("50")

	flatQuote := calc.GenerateQuote(flat, 0)
	longQuote := calc.GenerateQuote(long, 0)

	// 多头库存把双边价格下移以诱导卖出。
	assert.True(t, longQuote.BidPrice.LessThan(flatQuote.BidPrice))
	assert.True(t, longQuote.AskPrice.LessThan(flatQuote.AskPrice))
	// 同时缩买量、增卖量。
	assert.True(t, longQuote.BidSize.LessThan(flatQuote.BidSize))
	assert.True(t, longQuote.AskSize.GreaterThan(flatQuote.AskSize))
}

func TestGenerateQuoteShortInventorySkewsUp(t *testing.T) {
	calc := NewSpreadCalculator()
	flat := defaultParams()
	short := defaultParams()
	short.Inventory = d("-50")

	flatQuote := calc.GenerateQuote(flat, 0)
	shortQuote := calc.GenerateQuote(short, 0)

	assert.True(t, shortQuote.BidPrice.GreaterThan(flatQuote.BidPrice))
	assert.True(t, shortQuote.AskPrice.GreaterThan(flatQuote.AskPrice))
	assert.True(t, shortQuote.BidSize.GreaterThan(flatQuote.BidSize))
	assert.True(t, shortQuote.AskSize.LessThan(flatQuote.AskSize))
}

func TestGenerateQuoteBidNeverNegative(t *testing.T) {
	calc := NewSpreadCalculator()
	params := NewQuoteParams(d("0.01"), d("99"), d("2"), d("1"))

	quote := calc.GenerateQuote(params, 0)

	assert.False(t, quote.BidPrice.IsNegative())
}

func TestGenerateQuoteZeroesSizeAtInventoryCeiling(t *testing.T) {
	calc := NewSpreadCalculator()

	fullLong := defaultParams()
	fullLong.Inventory = d("100")
	longQuote := calc.GenerateQuote(fullLong, 0)
	assert.True(t, longQuote.BidSize.IsZero())
	assert.True(t, longQuote.AskSize.IsPositive())

	fullShort := defaultParams()
	fullShort.Inventory = d("-100")
	shortQuote := calc.GenerateQuote(fullShort, 0)
	assert.True(t, shortQuote.AskSize.IsZero())
	assert.True(t, shortQuote.BidSize.IsPositive())
}

func TestCalculateSizesRespectLimits(t *testing.T) {
	calc := NewSpreadCalculator()
	params := defaultParams()
	params.Inventory = d("80")

	bidSize, askSize := calc.calculateSizes(params)

	assert.True(t, bidSize.GreaterThanOrEqual(params.MinSize))
	assert.True(t, bidSize.LessThanOrEqual(params.MaxSize))
	assert.True(t, askSize.GreaterThanOrEqual(params.MinSize))
	assert.True(t, askSize.LessThanOrEqual(params.MaxSize))
}

func TestLnOnePlusSmallArgument(t *testing.T) {
	// ln(1.1) = 0.0953101798...；三项泰勒给 0.1 - 0.005 + 0.000333... = 0.095333...
	got := lnOnePlus(d("0.1"))
	diff := got.Sub(d("0.0953101798")).Abs()
	assert.True(t, diff.LessThan(d("0.0001")), "diff = %s", diff)
}

func TestLnOnePlusLargeArgument(t *testing.T) {
	// |x| >= 0.5 走有理近似：x / (1 + x/2)。ln(2) = 0.6931...，近似给 1/1.5 = 0.6667。
	got := lnOnePlus(d("1"))
	assert.True(t, got.Equal(d("1").Div(d("1.5"))))
	diff := got.Sub(d("0.6931471806")).Abs()
	assert.True(t, diff.LessThan(d("0.03")), "diff = %s", diff)
}

func TestInventoryRatioClamped(t *testing.T) {
	params := defaultParams()
	params.Inventory = d("250")
	assert.True(t, params.InventoryRatio().Equal(d("1")))

	params.Inventory = d("-250")
	assert.True(t, params.InventoryRatio().Equal(d("-1")))

	params.Inventory = d("50")
	assert.True(t, params.InventoryRatio().Equal(d("0.5")))
}

func TestQuoteParamsValidate(t *testing.T) {
	valid := defaultParams()
	require.NoError(t, valid.Validate())

	negTheo := defaultParams()
	negTheo.TheoPrice = d("-1")
	assert.ErrorIs(t, negTheo.Validate(), ErrInvalidQuoteParams)

	negVol := defaultParams()
	negVol.Volatility = d("-0.1")
	assert.ErrorIs(t, negVol.Validate(), ErrInvalidQuoteParams)

	zeroGamma := defaultParams()
	zeroGamma.RiskAversion = decimal.Zero
	assert.ErrorIs(t, zeroGamma.Validate(), ErrInvalidQuoteParams)

	zeroK := defaultParams()
	zeroK.ArrivalIntensity = decimal.Zero
	assert.ErrorIs(t, zeroK.Validate(), ErrInvalidQuoteParams)

	badSizes := defaultParams()
	badSizes.MinSize = d("10")
	badSizes.MaxSize = d("5")
	assert.ErrorIs(t, badSizes.Validate(), ErrInvalidQuoteParams)
}

func TestRoundToTickWidensSpread(t *testing.T) {
	quote := NewGeneratedQuote(d("99.987"), d("5"), d("100.013"), d("5"), d("100"), decimal.Zero, 0)

	rounded := quote.RoundToTick(d("0.01"))

	assert.True(t, rounded.BidPrice.Equal(d("99.98")))
	assert.True(t, rounded.AskPrice.Equal(d("100.02")))
	assert.True(t, rounded.Spread.GreaterThanOrEqual(quote.Spread))
}

func TestSymmetricQuote(t *testing.T) {
	quote := SymmetricQuote(d("100"), d("0.5"), d("5"), 42)

	assert.True(t, quote.BidPrice.Equal(d("99.5")))
	assert.True(t, quote.AskPrice.Equal(d("100.5")))
	assert.True(t, quote.Spread.Equal(d("1")))
	assert.True(t, quote.MidPrice().Equal(d("100")))
	assert.True(t, quote.IsValid())
}

func TestSpreadBps(t *testing.T) {
	quote := SymmetricQuote(d("100"), d("0.5"), d("5"), 0)

	bps, ok := quote.SpreadBps()
	require.True(t, ok)
	assert.True(t, bps.Equal(d("100")))

	zeroTheo := SymmetricQuote(decimal.Zero, d("0.5"), d("5"), 0)
	_, ok = zeroTheo.SpreadBps()
	assert.False(t, ok)
}
