package application

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventory "github.com/wyfcoding/optionsmm/internal/inventory/domain"
	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
	risk "github.com/wyfcoding/optionsmm/internal/risk/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testDesk(t *testing.T) *Desk {
	t.Helper()
	return NewDesk("BTC", DefaultDeskConfig())
}

func testService(t *testing.T) *DeskService {
	t.Helper()
	return NewDeskService(DefaultDeskConfig(), nil, nil, slog.Default(), nil)
}

func fill(symbol, qty, price string, ts int64) TradeFillCommand {
	return TradeFillCommand{
		Underlying:  "BTC",
		Symbol:      symbol,
		Quantity:    d(qty),
		Price:       d(price),
		TimestampMs: ts,
	}
}

func TestApplyTradeFillOpensPosition(t *testing.T) {
	desk := testDesk(t)

	result, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	assert.True(t, result.NewQuantity.Equal(d("10")))
	assert.True(t, result.AveragePrice.Equal(d("5.00")))
	assert.True(t, result.RealizedPnL.IsZero())
}

func TestApplyTradeFillReportsTradeRealized(t *testing.T) {
	desk := testDesk(t)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	// 卖出 15 张：先平 10 张实现 (6-5)*10*100 = 1000，再反向开 5 张。
	result, err := desk.ApplyTradeFill(fill("BTC-50000-C", "-15", "6.00", 2000))
	require.NoError(t, err)

	assert.True(t, result.RealizedPnL.Equal(d("1000")))
	assert.True(t, result.NewQuantity.Equal(d("-5")))
	assert.True(t, result.AveragePrice.Equal(d("6.00")))
}

func TestApplyTradeFillRejectedByLimit(t *testing.T) {
	cfg := DefaultDeskConfig()
	cfg.PositionLimits = inventory.NewPositionLimits(d("10"), d("20"), d("50"), d("100"))
	desk := NewDesk("BTC", cfg)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	_, err = desk.ApplyTradeFill(fill("BTC-50000-C", "5", "5.00", 2000))
	require.Error(t, err)

	var limitErr *inventory.ErrInventoryLimitExceeded
	require.ErrorAs(t, err, &limitErr)

	// 拒单不落账。
	status := desk.Status(0)
	assert.Equal(t, 1, status.PositionCount)
}

func TestTradeFillGeneratesHedgeOrder(t *testing.T) {
	// Delta 15 在 50000 现货、100 乘数下的美元敞口远超预设限额，测试只关心对冲触发。
	cfg := DefaultDeskConfig()
	cfg.PositionLimits = cfg.PositionLimits.WithMaxDelta(d("100000000"))
	desk := NewDesk("BTC", cfg)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "30", "5.00", 1000))
	require.NoError(t, err)

	// 先建立超过阈值的 Delta 敞口，下一笔成交应触发对冲。
	breaches := desk.ApplyGreeks(GreeksUpdateCommand{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		Greeks: pricing.NewGreeks(d("15"), d("0"), d("0"), d("0"), d("0")),
		Spot:   d("50000"),
	})
	assert.Empty(t, breaches)

	result, err := desk.ApplyTradeFill(fill("BTC-50000-C", "1", "5.00", 2000))
	require.NoError(t, err)

	require.NotNil(t, result.HedgeOrder)
	assert.True(t, result.HedgeOrder.IsSell())
	assert.Equal(t, "BTC", result.HedgeOrder.Symbol)
}

func TestHaltBlocksQuotesAndHedges(t *testing.T) {
	desk := testDesk(t)

	// 先建仓并建立超过对冲阈值的 Delta 敞口。
	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 500))
	require.NoError(t, err)
	desk.ApplyGreeks(GreeksUpdateCommand{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		Greeks: pricing.NewGreeks(d("50"), d("0"), d("0"), d("0"), d("0")),
		Spot:   d("50000"),
	})

	desk.Halt("manual")

	_, err = desk.GenerateQuote(QuoteRequest{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		TheoPrice: d("100"), Volatility: d("0.3"), TimeToExpiry: d("0.25"),
	})
	assert.ErrorIs(t, err, ErrTradingHalted)

	// 熔断状态下成交仍然落账，但不产生对冲指令。
	result, err := desk.ApplyTradeFill(fill("BTC-50000-C", "1", "5.00", 1000))
	require.NoError(t, err)
	assert.Nil(t, result.HedgeOrder)

	desk.Resume()
	_, err = desk.GenerateQuote(QuoteRequest{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		TheoPrice: d("100"), Volatility: d("0.3"), TimeToExpiry: d("0.25"),
	})
	assert.NoError(t, err)
}

func TestQuoteReflectsInventory(t *testing.T) {
	desk := testDesk(t)

	req := QuoteRequest{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		TheoPrice: d("100"), Volatility: d("0.3"), TimeToExpiry: d("0.25"),
	}

	flat, err := desk.GenerateQuote(req)
	require.NoError(t, err)

	_, err = desk.ApplyTradeFill(fill("BTC-50000-C", "50", "100", 1000))
	require.NoError(t, err)

	long, err := desk.GenerateQuote(req)
	require.NoError(t, err)

	// 多头库存压低双边报价。
	assert.True(t, long.BidPrice.LessThan(flat.BidPrice))
	assert.True(t, long.AskPrice.LessThan(flat.AskPrice))
}

func TestDailyLossHaltsDesk(t *testing.T) {
	cfg := DefaultDeskConfig()
	cfg.RiskLimits = risk.NewRiskLimits().WithDailyLoss(d("500"))
	desk := NewDesk("BTC", cfg)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	// 亏损平仓：(4-5)*10*100 = -1000，超过单日亏损限额。
	_, err = desk.ApplyTradeFill(fill("BTC-50000-C", "-10", "4.00", 2000))
	require.NoError(t, err)

	status := desk.Status(0)
	assert.Equal(t, risk.TradingStateHalted, status.State)
	assert.Contains(t, status.HaltReason, "daily loss")
}

func TestMarkToMarketUpdatesUnrealized(t *testing.T) {
	desk := testDesk(t)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	desk.ApplyMarkToMarket(MarkToMarketCommand{
		Underlying: "BTC",
		MarkPrices: map[string]decimal.Decimal{"BTC-50000-C": d("6.00")},
	})

	status := desk.Status(0)
	// (6-5)*10*100 = 1000 未实现
	assert.True(t, status.PnL.Unrealized.Equal(d("1000")))
}

func TestHedgeFillNeutralizesDelta(t *testing.T) {
	desk := testDesk(t)

	// 先建仓：无仓位的合约希腊值更新会被忽略。
	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	desk.ApplyGreeks(GreeksUpdateCommand{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		Greeks: pricing.NewGreeks(d("40"), d("0"), d("0"), d("0"), d("0")),
		Spot:   d("50000"),
	})
	require.True(t, desk.Status(0).CurrentDelta.Equal(d("40")))

	desk.ApplyHedgeFill(HedgeFillCommand{Underlying: "BTC", Quantity: d("-40")})

	status := desk.Status(0)
	assert.True(t, status.CurrentDelta.IsZero())
}

func TestResetDailyKeepsPositions(t *testing.T) {
	desk := testDesk(t)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	desk.ResetDaily()

	status := desk.Status(0)
	assert.Equal(t, 1, status.PositionCount)
	assert.True(t, status.PnL.Total().IsZero())
}

func TestAttributionUsesPortfolioGreeks(t *testing.T) {
	desk := testDesk(t)

	_, err := desk.ApplyTradeFill(fill("BTC-50000-C", "10", "5.00", 1000))
	require.NoError(t, err)

	desk.ApplyGreeks(GreeksUpdateCommand{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		Greeks: pricing.NewGreeks(d("0.5"), d("0.02"), d("-0.05"), d("0.15"), d("0")),
		Spot:   d("50000"),
	})

	attribution := desk.Attribution(AttributionRequest{
		Underlying: "BTC",
		SpotChange: d("10"), VolChange: d("0.01"), DaysPassed: d("1"),
		ActualPnL: d("6"),
	})

	assert.True(t, attribution.DeltaPnL.Equal(d("5")))
	assert.True(t, attribution.TotalPnL().Equal(d("6")))
}

func TestServiceRoutesPerUnderlying(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.OnTradeFill(ctx, TradeFillCommand{
		Underlying: "BTC", Symbol: "BTC-50000-C", Quantity: d("10"), Price: d("5"), TimestampMs: 1,
	})
	require.NoError(t, err)

	_, err = svc.OnTradeFill(ctx, TradeFillCommand{
		Underlying: "ETH", Symbol: "ETH-3000-P", Quantity: d("-5"), Price: d("20"), TimestampMs: 2,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"BTC", "ETH"}, svc.Underlyings())
	assert.Equal(t, 1, svc.Status("BTC", 0).PositionCount)
	assert.Equal(t, 1, svc.Status("ETH", 0).PositionCount)
}

func TestServiceHaltAndResume(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	svc.Halt(ctx, "BTC", "circuit breaker drill")
	_, err := svc.GenerateQuote(ctx, QuoteRequest{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		TheoPrice: d("100"), Volatility: d("0.3"), TimeToExpiry: d("0.25"),
	})
	assert.ErrorIs(t, err, ErrTradingHalted)

	svc.Resume(ctx, "BTC")
	_, err = svc.GenerateQuote(ctx, QuoteRequest{
		Underlying: "BTC", Symbol: "BTC-50000-C",
		TheoPrice: d("100"), Volatility: d("0.3"), TimeToExpiry: d("0.25"),
	})
	assert.NoError(t, err)
}

func TestServiceRejectionReturnsTypedError(t *testing.T) {
	cfg := DefaultDeskConfig()
	cfg.PositionLimits = inventory.SmallLimits()
	svc := NewDeskService(cfg, nil, nil, slog.Default(), nil)

	_, err := svc.OnTradeFill(context.Background(), TradeFillCommand{
		Underlying: "BTC", Symbol: "BTC-50000-C", Quantity: d("1000000"), Price: d("5"), TimestampMs: 1,
	})

	var limitErr *inventory.ErrInventoryLimitExceeded
	assert.ErrorAs(t, err, &limitErr)
}
