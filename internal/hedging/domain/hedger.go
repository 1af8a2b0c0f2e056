package domain

import (
	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

var bpsDivisor = decimal.NewFromInt(10000)

// DeltaHedger Delta 对冲引擎。
// 持有组合当前 Delta，按阈值判断是否需要对冲并生成对冲指令。
// 非并发安全，由上层做市引擎串行驱动。
type DeltaHedger struct {
	params       HedgeParams
	currentDelta decimal.Decimal
	lastHedgeMs  int64
}

// NewDeltaHedger 创建对冲引擎。
func NewDeltaHedger(params HedgeParams) *DeltaHedger {
	return &DeltaHedger{
		params:       params,
		currentDelta: decimal.Zero,
	}
}

// Params 当前对冲参数。
func (h *DeltaHedger) Params() HedgeParams {
	return h.params
}

// UpdateDelta 用最新组合希腊值覆盖当前 Delta。
// 覆盖而非累加：希腊值快照是组合的完整状态。
func (h *DeltaHedger) UpdateDelta(greeks pricing.Greeks) {
	h.currentDelta = greeks.Delta
}

// CurrentDelta 当前组合 Delta。
func (h *DeltaHedger) CurrentDelta() decimal.Decimal {
	return h.currentDelta
}

// DeltaDeviation 当前 Delta 相对目标的偏离。
func (h *DeltaHedger) DeltaDeviation() decimal.Decimal {
	return h.currentDelta.Sub(h.params.TargetDelta)
}

// NeedsHedge 偏离绝对值达到阈值。
func (h *DeltaHedger) NeedsHedge() bool {
	return h.DeltaDeviation().Abs().GreaterThanOrEqual(h.params.HedgeThreshold)
}

// CalculateHedge 计算对冲指令。
// 未达阈值或对冲量低于最小量时返回 nil；超过最大量时截断到最大量。
// 中和正 Delta 需要卖出，中和负 Delta 需要买入，故数量取偏离的相反数。
func (h *DeltaHedger) CalculateHedge(symbol string, spotPrice decimal.Decimal, timestampMs int64) *HedgeOrder {
	if !h.NeedsHedge() {
		return nil
	}

	rawQuantity := h.DeltaDeviation().Neg()

	var quantity decimal.Decimal
	switch {
	case rawQuantity.Abs().LessThan(h.params.MinHedgeSize):
		return nil
	case rawQuantity.Abs().GreaterThan(h.params.MaxHedgeSize):
		if rawQuantity.IsPositive() {
			quantity = h.params.MaxHedgeSize
		} else {
			quantity = h.params.MaxHedgeSize.Neg()
		}
	default:
		quantity = rawQuantity
	}

	var limitPrice *decimal.Decimal
	if h.params.UseLimitOrders {
		offset := spotPrice.Mul(h.params.LimitOffsetBps).Div(bpsDivisor)
		var price decimal.Decimal
		if quantity.IsPositive() {
			// 买入：挂在中间价下方
			price = spotPrice.Sub(offset)
		} else {
			// 卖出：挂在中间价上方
			price = spotPrice.Add(offset)
		}
		limitPrice = &price
	}

	order := NewHedgeOrder(symbol, quantity, limitPrice, HedgeReasonDeltaThreshold, timestampMs)
	return &order
}

// RecordHedge 记录对冲成交：成交量直接计入当前 Delta。
// 买入现货使组合 Delta 上升，卖出使其下降。
func (h *DeltaHedger) RecordHedge(quantity decimal.Decimal, timestampMs int64) {
	h.currentDelta = h.currentDelta.Add(quantity)
	h.lastHedgeMs = timestampMs
}

// LastHedgeMs 最近一次对冲成交时间戳（毫秒）。
func (h *DeltaHedger) LastHedgeMs() int64 {
	return h.lastHedgeMs
}
