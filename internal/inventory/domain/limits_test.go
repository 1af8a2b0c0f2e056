package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

func TestLimitsPresetsOrdering(t *testing.T) {
	small := SmallLimits()
	medium := MediumLimits()
	large := LargeLimits()

	assert.True(t, small.PerOption.LessThan(medium.PerOption))
	assert.True(t, medium.PerOption.LessThan(large.PerOption))
}

func TestLimitsBuilders(t *testing.T) {
	limits := SmallLimits().
		WithPerOption(d("150")).
		WithMaxDelta(d("75000"))

	assert.True(t, limits.PerOption.Equal(d("150")))
	assert.True(t, limits.MaxDelta.Equal(d("75000")))
	// 其余字段不受影响
	assert.True(t, limits.PerStrike.Equal(d("200")))
}

func TestExceedsChecksUseAbsolute(t *testing.T) {
	limits := NewPositionLimits(d("100"), d("200"), d("500"), d("1000"))

	assert.False(t, limits.ExceedsPerOption(d("50")))
	assert.False(t, limits.ExceedsPerOption(d("100")))
	assert.True(t, limits.ExceedsPerOption(d("101")))
	assert.True(t, limits.ExceedsPerOption(d("-101")))

	assert.True(t, limits.ExceedsPerStrike(d("-201")))
	assert.True(t, limits.ExceedsPerExpiration(d("501")))
	assert.True(t, limits.ExceedsPerUnderlying(d("1001")))
}

func TestCheckGreekLimitsReportsEveryBreach(t *testing.T) {
	limits := SmallLimits()
	greeks := pricing.NewGreeks(d("100"), d("10"), d("-50"), d("200"), d("5"))

	// spot=100, multiplier=100: 美元 Delta = 100*100*100 = 1,000,000 > 50,000
	breaches := limits.CheckGreekLimits(greeks, d("100"), d("100"))

	assert.NotEmpty(t, breaches)
	kinds := make(map[LimitKind]LimitBreach, len(breaches))
	for _, b := range breaches {
		kinds[b.Kind] = b
	}
	deltaBreach, ok := kinds[LimitDelta]
	assert.True(t, ok)
	assert.True(t, deltaBreach.Current.Equal(d("1000000")))
	assert.True(t, deltaBreach.Limit.Equal(d("50000")))
	// vega: 200*100 = 20,000 > 10,000
	_, ok = kinds[LimitVega]
	assert.True(t, ok)
}

func TestCheckGreekLimitsEmptyWhenWithinLimits(t *testing.T) {
	limits := LargeLimits()
	greeks := pricing.NewGreeks(d("0.5"), d("0.02"), d("-0.05"), d("0.15"), d("0.01"))

	assert.Empty(t, limits.CheckGreekLimits(greeks, d("100"), d("100")))
}

func TestOptionUtilization(t *testing.T) {
	limits := NewPositionLimits(d("100"), d("200"), d("500"), d("1000"))

	assert.True(t, limits.OptionUtilization(d("50")).Equal(d("0.5")))
	assert.True(t, limits.OptionUtilization(d("-75")).Equal(d("0.75")))
	assert.True(t, limits.WithPerOption(d("0")).OptionUtilization(d("50")).IsZero())
}

func TestScaleLimits(t *testing.T) {
	scaled := SmallLimits().Scale(d("2"))

	assert.True(t, scaled.PerOption.Equal(d("200")))
	assert.True(t, scaled.PerUnderlying.Equal(d("2000")))
	assert.True(t, scaled.MaxDelta.Equal(d("100000")))
}

func TestLimitBreachString(t *testing.T) {
	b := LimitBreach{Kind: LimitDelta, Current: d("75000"), Limit: d("50000")}

	s := b.String()
	assert.Contains(t, s, "DELTA")
	assert.Contains(t, s, "75000")
	assert.Contains(t, s, "50000")
}
