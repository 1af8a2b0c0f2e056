package application

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	hedging "github.com/wyfcoding/optionsmm/internal/hedging/domain"
	inventory "github.com/wyfcoding/optionsmm/internal/inventory/domain"
	pnl "github.com/wyfcoding/optionsmm/internal/pnl/domain"
	quoting "github.com/wyfcoding/optionsmm/internal/quoting/domain"
	risk "github.com/wyfcoding/optionsmm/internal/risk/domain"
)

// ErrTradingHalted 交易已熔断，拒绝报价与对冲。
var ErrTradingHalted = errors.New("trading halted")

// DeskConfig 做市台配置。
type DeskConfig struct {
	PositionLimits     inventory.PositionLimits
	RiskLimits         risk.RiskLimits
	HedgeParams        hedging.HedgeParams
	SpreadCalculator   quoting.SpreadCalculator
	RiskAversion       decimal.Decimal
	ArrivalIntensity   decimal.Decimal
	MaxInventory       decimal.Decimal
	MinQuoteSize       decimal.Decimal
	MaxQuoteSize       decimal.Decimal
	ContractMultiplier decimal.Decimal
	HedgeSymbol        string
}

// DefaultDeskConfig 默认做市台配置。
func DefaultDeskConfig() DeskConfig {
	return DeskConfig{
		PositionLimits:     inventory.MediumLimits(),
		RiskLimits:         risk.NewRiskLimits(),
		HedgeParams:        hedging.NewHedgeParams(),
		SpreadCalculator:   quoting.NewSpreadCalculator(),
		RiskAversion:       decimal.RequireFromString("0.1"),
		ArrivalIntensity:   decimal.NewFromInt(1),
		MaxInventory:       decimal.NewFromInt(100),
		MinQuoteSize:       decimal.NewFromInt(1),
		MaxQuoteSize:       decimal.NewFromInt(10),
		ContractMultiplier: decimal.NewFromInt(100),
	}
}

// Desk 单一标的做市台：库存、风控、对冲、盈亏的串行决策核心。
// 同一标的的全部状态变更都在 mu 内完成，跨标的互不阻塞。
type Desk struct {
	mu sync.Mutex

	underlying string
	cfg        DeskConfig
	spot       decimal.Decimal

	inventory *inventory.InventoryManager
	hedger    *hedging.DeltaHedger
	risk      *risk.RiskController
	pnl       *pnl.PnLCalculator
}

// NewDesk 创建做市台。
func NewDesk(underlying string, cfg DeskConfig) *Desk {
	return &Desk{
		underlying: underlying,
		cfg:        cfg,
		inventory:  inventory.NewInventoryManager(underlying, cfg.PositionLimits, cfg.ContractMultiplier),
		hedger:     hedging.NewDeltaHedger(cfg.HedgeParams),
		risk:       risk.NewRiskController(cfg.RiskLimits),
		pnl:        pnl.NewPnLCalculator(),
	}
}

// Underlying 做市台标的。
func (d *Desk) Underlying() string {
	return d.underlying
}

// ApplyTradeFill 处理一笔成交：落账、更新盈亏与风控，必要时生成对冲指令。
// 限额拒单在任何状态变更之前返回，保证原子性。
func (d *Desk) ApplyTradeFill(cmd TradeFillCommand) (*TradeFillResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var before decimal.Decimal
	if pos := d.inventory.GetPosition(cmd.Symbol); pos != nil {
		before = pos.RealizedPnL
	}

	if err := d.inventory.RecordTrade(cmd.Symbol, cmd.Quantity, cmd.Price, cmd.TimestampMs); err != nil {
		return nil, err
	}

	pos := d.inventory.GetPosition(cmd.Symbol)
	realizedDelta := pos.RealizedPnL.Sub(before)

	d.pnl.AddRealized(realizedDelta)
	if !cmd.Fee.IsZero() {
		d.pnl.AddFees(cmd.Fee)
	}
	d.risk.UpdatePnL(d.pnl.TotalPnL())
	d.risk.UpdatePositionValue(d.portfolioValueLocked())

	d.hedger.UpdateDelta(d.inventory.TotalGreeks())

	result := &TradeFillResult{
		NewQuantity:  pos.Quantity,
		AveragePrice: pos.AveragePrice,
		RealizedPnL:  realizedDelta,
	}

	// 熔断状态下仍然落账，但不再产生新的对冲指令。
	if !d.risk.IsHalted() {
		result.HedgeOrder = d.hedger.CalculateHedge(d.hedgeSymbol(), d.spot, cmd.TimestampMs)
	}

	return result, nil
}

// ApplyGreeks 更新单个合约的希腊值快照并刷新组合 Delta。
func (d *Desk) ApplyGreeks(cmd GreeksUpdateCommand) []inventory.LimitBreach {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !cmd.Spot.IsZero() {
		d.spot = cmd.Spot
	}
	d.inventory.UpdateGreeks(cmd.Symbol, cmd.Greeks, cmd.TimestampMs)
	d.hedger.UpdateDelta(d.inventory.TotalGreeks())

	return d.inventory.CheckGreekLimits(d.spot, d.cfg.ContractMultiplier)
}

// GenerateQuote 为单个合约生成双边报价。熔断状态下拒绝报价。
func (d *Desk) GenerateQuote(req QuoteRequest) (*quoting.GeneratedQuote, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.risk.IsHalted() {
		return nil, ErrTradingHalted
	}

	var inv decimal.Decimal
	if pos := d.inventory.GetPosition(req.Symbol); pos != nil {
		inv = pos.Quantity
	}

	params := quoting.NewQuoteParams(req.TheoPrice, inv, req.Volatility, req.TimeToExpiry).
		WithRiskAversion(d.cfg.RiskAversion).
		WithArrivalIntensity(d.cfg.ArrivalIntensity).
		WithMaxInventory(d.cfg.MaxInventory).
		WithSizeLimits(d.cfg.MinQuoteSize, d.cfg.MaxQuoteSize)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	quote := d.cfg.SpreadCalculator.GenerateQuote(params, req.TimestampMs)
	return &quote, nil
}

// ApplyMarkToMarket 按最新标记价重估未实现盈亏并刷新风控。
func (d *Desk) ApplyMarkToMarket(cmd MarkToMarketCommand) {
	d.mu.Lock()
	defer d.mu.Unlock()

	unrealized := decimal.Zero
	value := decimal.Zero
	d.inventory.Positions(func(symbol string, pos *inventory.Position) {
		mark, ok := cmd.MarkPrices[symbol]
		if !ok {
			mark = pos.AveragePrice
		}
		unrealized = unrealized.Add(pos.UnrealizedPnL(mark))
		value = value.Add(pos.NotionalValue(mark))
	})

	d.pnl.UpdateUnrealized(unrealized)
	d.risk.UpdatePnL(d.pnl.TotalPnL())
	d.risk.UpdatePositionValue(value)
}

// ApplyHedgeFill 处理对冲成交回报。
func (d *Desk) ApplyHedgeFill(cmd HedgeFillCommand) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hedger.RecordHedge(cmd.Quantity, cmd.TimestampMs)
}

// Attribution 基于当前组合希腊值计算盈亏归因。
func (d *Desk) Attribution(req AttributionRequest) pnl.PnLAttribution {
	d.mu.Lock()
	defer d.mu.Unlock()

	return pnl.CalculateAttribution(d.inventory.TotalGreeks(),
		req.SpotChange, req.VolChange, req.DaysPassed, req.RateChange, req.ActualPnL)
}

// Halt 人工熔断。
func (d *Desk) Halt(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.risk.Halt(reason)
}

// Resume 人工恢复交易。
func (d *Desk) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.risk.Resume()
}

// ResetDaily 日初重置盈亏跟踪。熔断状态保持不变。
func (d *Desk) ResetDaily() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pnl.Reset()
	d.risk.ResetDaily()
}

// Status 当前做市台状态快照。
func (d *Desk) Status(timestampMs int64) DeskStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	return DeskStatus{
		Underlying:    d.underlying,
		State:         d.risk.State(),
		HaltReason:    d.risk.HaltReason(),
		PositionCount: d.inventory.PositionCount(),
		TotalGreeks:   d.inventory.TotalGreeks(),
		CurrentDelta:  d.hedger.CurrentDelta(),
		PnL:           d.pnl.Snapshot(timestampMs),
		DailyPnL:      d.risk.DailyPnL(),
		Drawdown:      d.risk.Drawdown(),
	}
}

// Snapshots 导出全部仓位快照（持久化用）。
func (d *Desk) Snapshots() []*inventory.PositionSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	var snapshots []*inventory.PositionSnapshot
	d.inventory.Positions(func(symbol string, pos *inventory.Position) {
		snapshots = append(snapshots, &inventory.PositionSnapshot{
			Underlying: d.underlying,
			Symbol:     symbol,
			Position:   *pos,
		})
	})
	return snapshots
}

// Snapshot 导出单个仓位快照；无仓位返回 nil。
func (d *Desk) Snapshot(symbol string) *inventory.PositionSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	pos := d.inventory.GetPosition(symbol)
	if pos == nil {
		return nil
	}
	return &inventory.PositionSnapshot{
		Underlying: d.underlying,
		Symbol:     symbol,
		Position:   *pos,
	}
}

// EstimateGreekPnL 用组合希腊值估算给定市场变动下的盈亏。
func (d *Desk) EstimateGreekPnL(spotChange, volChange, daysPassed decimal.Decimal) decimal.Decimal {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.inventory.TotalGreeks().EstimatePnL(spotChange, volChange, daysPassed)
}

// portfolioValueLocked 以成本价估算组合名义价值。调用方必须持有 mu。
func (d *Desk) portfolioValueLocked() decimal.Decimal {
	value := decimal.Zero
	d.inventory.Positions(func(_ string, pos *inventory.Position) {
		value = value.Add(pos.NotionalValue(pos.AveragePrice))
	})
	return value
}

func (d *Desk) hedgeSymbol() string {
	if d.cfg.HedgeSymbol != "" {
		return d.cfg.HedgeSymbol
	}
	return d.underlying
}
