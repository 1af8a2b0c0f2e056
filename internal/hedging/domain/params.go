// 包 对冲上下文的领域模型：Delta 对冲参数、对冲指令与对冲引擎。
package domain

import (
	"github.com/shopspring/decimal"
)

// HedgeParams 对冲计算参数。
type HedgeParams struct {
	TargetDelta    decimal.Decimal `json:"target_delta"`     // 目标 Delta，通常为 0
	MinHedgeSize   decimal.Decimal `json:"min_hedge_size"`   // 低于此量不执行对冲
	MaxHedgeSize   decimal.Decimal `json:"max_hedge_size"`   // 单笔对冲最大量
	HedgeThreshold decimal.Decimal `json:"hedge_threshold"`  // 触发对冲的 Delta 偏离阈值
	UseLimitOrders bool            `json:"use_limit_orders"` // 限价单还是市价单
	LimitOffsetBps decimal.Decimal `json:"limit_offset_bps"` // 限价单相对中间价的偏移（基点）
}

// NewHedgeParams 创建默认对冲参数：Delta 中性目标、阈值 10、
// 单笔 1~100、限价单偏移 5 个基点。
func NewHedgeParams() HedgeParams {
	return HedgeParams{
		TargetDelta:    decimal.Zero,
		MinHedgeSize:   decimal.NewFromInt(1),
		MaxHedgeSize:   decimal.NewFromInt(100),
		HedgeThreshold: decimal.NewFromInt(10),
		UseLimitOrders: true,
		LimitOffsetBps: decimal.NewFromInt(5),
	}
}

// WithTargetDelta 返回替换目标 Delta 后的副本。
func (p HedgeParams) WithTargetDelta(target decimal.Decimal) HedgeParams {
	p.TargetDelta = target
	return p
}

// WithThreshold 返回替换触发阈值后的副本。
func (p HedgeParams) WithThreshold(threshold decimal.Decimal) HedgeParams {
	p.HedgeThreshold = threshold
	return p
}

// WithSizeLimits 返回替换单笔量上下限后的副本。
func (p HedgeParams) WithSizeLimits(min, max decimal.Decimal) HedgeParams {
	p.MinHedgeSize = min
	p.MaxHedgeSize = max
	return p
}

// WithMarketOrders 返回改用市价单的副本。
func (p HedgeParams) WithMarketOrders() HedgeParams {
	p.UseLimitOrders = false
	return p
}

// WithLimitOffsetBps 返回替换限价偏移后的副本。
func (p HedgeParams) WithLimitOffsetBps(bps decimal.Decimal) HedgeParams {
	p.LimitOffsetBps = bps
	return p
}
