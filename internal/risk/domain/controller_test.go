package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestControllerStartsActive(t *testing.T) {
	controller := NewRiskController(NewRiskLimits())

	assert.Equal(t, TradingStateActive, controller.State())
	assert.False(t, controller.IsHalted())
	assert.Empty(t, controller.HaltReason())
}

func TestDailyLossHalt(t *testing.T) {
	limits := NewRiskLimits().WithDailyLoss(d("1000"))
	controller := NewRiskController(limits)

	controller.UpdatePnL(d("-1500"))

	assert.True(t, controller.IsHalted())
	assert.Contains(t, controller.HaltReason(), "daily loss")
}

func TestDailyLossBoundaryNotHalted(t *testing.T) {
	limits := NewRiskLimits().WithDailyLoss(d("1000"))
	controller := NewRiskController(limits)

	// 恰好等于限额不触发，必须严格超过。
	controller.UpdatePnL(d("-1000"))

	assert.False(t, controller.IsHalted())
}

func TestDrawdownHalt(t *testing.T) {
	limits := NewRiskLimits().WithDrawdown(d("500"))
	controller := NewRiskController(limits)

	controller.UpdatePnL(d("1000"))
	require.False(t, controller.IsHalted())
	require.True(t, controller.PeakPnL().Equal(d("1000")))

	// 从峰值 1000 回落到 400，回撤 600 > 500。
	controller.UpdatePnL(d("400"))

	assert.True(t, controller.IsHalted())
	assert.Contains(t, controller.HaltReason(), "drawdown")
	assert.True(t, controller.Drawdown().Equal(d("600")))
}

func TestPositionValueHalt(t *testing.T) {
	limits := NewRiskLimits().WithPositionValue(d("100000"))
	controller := NewRiskController(limits)

	controller.UpdatePositionValue(d("-150000"))

	assert.True(t, controller.IsHalted())
	assert.Contains(t, controller.HaltReason(), "position value")
}

func TestHaltIsSticky(t *testing.T) {
	limits := NewRiskLimits().WithDailyLoss(d("1000"))
	controller := NewRiskController(limits)

	controller.UpdatePnL(d("-1500"))
	require.True(t, controller.IsHalted())
	reason := controller.HaltReason()

	// 盈亏转好也不自动恢复，且保留最早的熔断原因。
	controller.UpdatePnL(d("500"))

	assert.True(t, controller.IsHalted())
	assert.Equal(t, reason, controller.HaltReason())
}

func TestResumeClearsHalt(t *testing.T) {
	controller := NewRiskController(NewRiskLimits())
	controller.Halt("manual intervention")
	require.True(t, controller.IsHalted())

	controller.Resume()

	assert.Equal(t, TradingStateActive, controller.State())
	assert.Empty(t, controller.HaltReason())
}

func TestHaltKeepsFirstReason(t *testing.T) {
	controller := NewRiskController(NewRiskLimits())

	controller.Halt("first")
	controller.Halt("second")

	assert.Equal(t, "first", controller.HaltReason())
}

func TestResetDailyKeepsHaltState(t *testing.T) {
	limits := NewRiskLimits().WithDailyLoss(d("1000"))
	controller := NewRiskController(limits)
	controller.UpdatePnL(d("-1500"))
	require.True(t, controller.IsHalted())

	controller.ResetDaily()

	// 日初重置只清盈亏跟踪，熔断状态需要人工解除。
	assert.True(t, controller.DailyPnL().IsZero())
	assert.True(t, controller.PeakPnL().IsZero())
	assert.True(t, controller.IsHalted())
}

func TestCheckGreekLimitsAdvisory(t *testing.T) {
	controller := NewRiskController(NewRiskLimits())
	greeks := pricing.NewGreeks(d("200000"), decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero)

	breaches := controller.CheckGreekLimits(greeks)

	require.Len(t, breaches, 1)
	assert.Equal(t, BreachDelta, breaches[0].Kind)
	assert.True(t, breaches[0].Current.Equal(d("200000")))
	// 告警不熔断。
	assert.False(t, controller.IsHalted())
}

func TestCheckGreekLimitsMultipleBreaches(t *testing.T) {
	limits := NewRiskLimits().WithGreekLimits(d("10"), d("5"), d("20"))
	controller := NewRiskController(limits)
	greeks := pricing.NewGreeks(d("-15"), d("8"), decimal.Zero, d("-25"), decimal.Zero)

	breaches := controller.CheckGreekLimits(greeks)

	require.Len(t, breaches, 3)
	assert.Equal(t, BreachDelta, breaches[0].Kind)
	assert.Equal(t, BreachGamma, breaches[1].Kind)
	assert.Equal(t, BreachVega, breaches[2].Kind)
}

func TestCheckGreekLimitsWithinLimits(t *testing.T) {
	controller := NewRiskController(NewRiskLimits())
	greeks := pricing.NewGreeks(d("100"), d("10"), d("-5"), d("200"), d("50"))

	assert.Empty(t, controller.CheckGreekLimits(greeks))
}
