package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

// ErrInventoryLimitExceeded 成交会突破仓位限额时返回，成交不落账。
type ErrInventoryLimitExceeded struct {
	LimitType LimitKind
	Limit     decimal.Decimal
	Current   decimal.Decimal
}

func (e *ErrInventoryLimitExceeded) Error() string {
	return fmt.Sprintf("inventory limit exceeded: %s limit of %s exceeded with value %s",
		e.LimitType, e.Limit, e.Current)
}

// InventoryManager 单一标的下全部期权仓位的管理器。
// 持有 symbol -> Position 映射与共享的仓位限额。
// 非并发安全：调用方负责按交易顺序串行调用（见部署模型）。
type InventoryManager struct {
	underlying        string
	positions         map[string]*Position
	limits            PositionLimits
	defaultMultiplier decimal.Decimal
}

// NewInventoryManager 创建库存管理器。
func NewInventoryManager(underlying string, limits PositionLimits, defaultMultiplier decimal.Decimal) *InventoryManager {
	return &InventoryManager{
		underlying:        underlying,
		positions:         make(map[string]*Position),
		limits:            limits,
		defaultMultiplier: defaultMultiplier,
	}
}

// Underlying 标的代码。
func (m *InventoryManager) Underlying() string {
	return m.underlying
}

// Limits 仓位限额配置。
func (m *InventoryManager) Limits() PositionLimits {
	return m.limits
}

// PositionCount 仓位数量。
func (m *InventoryManager) PositionCount() int {
	return len(m.positions)
}

// IsEmpty 无任何仓位。
func (m *InventoryManager) IsEmpty() bool {
	return len(m.positions) == 0
}

// GetPosition 按合约代码查找仓位，不存在时返回 nil。
func (m *InventoryManager) GetPosition(symbol string) *Position {
	return m.positions[symbol]
}

// GetOrCreatePosition 查找仓位，不存在时以默认乘数插入空仓位。
func (m *InventoryManager) GetOrCreatePosition(symbol string) *Position {
	if pos, ok := m.positions[symbol]; ok {
		return pos
	}
	pos := NewPosition(m.defaultMultiplier)
	m.positions[symbol] = pos
	return pos
}

// RecordTrade 记录一笔成交。
// 先计算成交后数量，若会突破单合约上限则返回 ErrInventoryLimitExceeded
// 且不做任何落账；否则通过 Position.Add 提交。恰好只变更一个仓位。
func (m *InventoryManager) RecordTrade(symbol string, quantity, price decimal.Decimal, timestampMs int64) error {
	currentQty := decimal.Zero
	if pos, ok := m.positions[symbol]; ok {
		currentQty = pos.Quantity
	}
	newQty := currentQty.Add(quantity)

	if m.limits.ExceedsPerOption(newQty) {
		return &ErrInventoryLimitExceeded{
			LimitType: LimitPerOption,
			Limit:     m.limits.PerOption,
			Current:   newQty.Abs(),
		}
	}

	m.GetOrCreatePosition(symbol).Add(quantity, price, timestampMs)
	return nil
}

// UpdateGreeks 更新某合约仓位的希腊字母；仓位不存在时忽略。
func (m *InventoryManager) UpdateGreeks(symbol string, greeks pricing.Greeks, timestampMs int64) {
	if pos, ok := m.positions[symbol]; ok {
		pos.UpdateGreeks(greeks, timestampMs)
	}
}

// TotalGreeks 全部仓位的希腊字母之和（交换律成立，与遍历顺序无关）。
func (m *InventoryManager) TotalGreeks() pricing.Greeks {
	total := pricing.ZeroGreeks()
	for _, pos := range m.positions {
		total = total.Add(pos.Greeks)
	}
	return total
}

// TotalRealizedPnL 全部仓位的已实现盈亏之和。
func (m *InventoryManager) TotalRealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range m.positions {
		total = total.Add(pos.RealizedPnL)
	}
	return total
}

// CheckGreekLimits 用汇总希腊字母评估美元化敞口限额（只读）。
func (m *InventoryManager) CheckGreekLimits(spot, multiplier decimal.Decimal) []LimitBreach {
	return m.limits.CheckGreekLimits(m.TotalGreeks(), spot, multiplier)
}

// Positions 遍历全部仓位。
func (m *InventoryManager) Positions(fn func(symbol string, pos *Position)) {
	for symbol, pos := range m.positions {
		fn(symbol, pos)
	}
}

// RemovePosition 删除并返回某合约仓位，不存在时返回 nil。
func (m *InventoryManager) RemovePosition(symbol string) *Position {
	pos := m.positions[symbol]
	delete(m.positions, symbol)
	return pos
}

// Clear 清空全部仓位。
func (m *InventoryManager) Clear() {
	m.positions = make(map[string]*Position)
}
