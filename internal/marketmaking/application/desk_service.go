// Package application 提供期权做市引擎的应用服务层：
// 按标的路由命令到各自的做市台，并负责快照持久化、事件发布与指标采集。
package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wyfcoding/pkg/metrics"

	invapp "github.com/wyfcoding/optionsmm/internal/inventory/application"
	inventory "github.com/wyfcoding/optionsmm/internal/inventory/domain"
	pnl "github.com/wyfcoding/optionsmm/internal/pnl/domain"
	quoting "github.com/wyfcoding/optionsmm/internal/quoting/domain"
	risk "github.com/wyfcoding/optionsmm/internal/risk/domain"
)

// DeskService 做市台应用服务门面。
// 每个标的一个 Desk，台内串行、台间并行；服务本身可被多 goroutine 调用。
type DeskService struct {
	mu    sync.RWMutex
	desks map[string]*Desk

	cfg          DeskConfig
	inventorySvc *invapp.InventoryService
	publisher    inventory.EventPublisher
	logger       *slog.Logger

	tradesTotal *prometheus.CounterVec
	quotesTotal *prometheus.CounterVec
	hedgesTotal *prometheus.CounterVec
	haltedGauge *prometheus.GaugeVec
}

// NewDeskService 构造函数。inventorySvc 与 publisher 可为 nil（纯内存模式）。
func NewDeskService(cfg DeskConfig, inventorySvc *invapp.InventoryService, publisher inventory.EventPublisher, logger *slog.Logger, m *metrics.Metrics) *DeskService {
	s := &DeskService{
		desks:        make(map[string]*Desk),
		cfg:          cfg,
		inventorySvc: inventorySvc,
		publisher:    publisher,
		logger:       logger.With("module", "desk"),
	}

	if m != nil {
		s.tradesTotal = m.NewCounterVec(&prometheus.CounterOpts{
			Name: "optionsmm_trades_total",
			Help: "Number of trade fills processed, by underlying and result.",
		}, []string{"underlying", "result"})
		s.quotesTotal = m.NewCounterVec(&prometheus.CounterOpts{
			Name: "optionsmm_quotes_total",
			Help: "Number of quotes generated, by underlying.",
		}, []string{"underlying"})
		s.hedgesTotal = m.NewCounterVec(&prometheus.CounterOpts{
			Name: "optionsmm_hedge_orders_total",
			Help: "Number of hedge orders generated, by underlying.",
		}, []string{"underlying"})
		s.haltedGauge = m.NewGaugeVec(&prometheus.GaugeOpts{
			Name: "optionsmm_desk_halted",
			Help: "Whether the desk is halted (1) or active (0).",
		}, []string{"underlying"})
	}

	return s
}

// Desk 获取或创建标的对应的做市台。
func (s *DeskService) Desk(underlying string) *Desk {
	s.mu.RLock()
	desk, ok := s.desks[underlying]
	s.mu.RUnlock()
	if ok {
		return desk
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if desk, ok = s.desks[underlying]; ok {
		return desk
	}
	desk = NewDesk(underlying, s.cfg)
	s.desks[underlying] = desk
	return desk
}

// Underlyings 当前已建台的标的列表。
func (s *DeskService) Underlyings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.desks))
	for name := range s.desks {
		names = append(names, name)
	}
	return names
}

// OnTradeFill 处理成交回报：落账、持久化快照、发布事件。
func (s *DeskService) OnTradeFill(ctx context.Context, cmd TradeFillCommand) (*TradeFillResult, error) {
	desk := s.Desk(cmd.Underlying)

	result, err := desk.ApplyTradeFill(cmd)
	if err != nil {
		s.countTrade(cmd.Underlying, "rejected")
		s.logger.WarnContext(ctx, "trade fill rejected",
			"underlying", cmd.Underlying, "symbol", cmd.Symbol, "quantity", cmd.Quantity, "error", err)

		var limitErr *inventory.ErrInventoryLimitExceeded
		if errors.As(err, &limitErr) && s.publisher != nil {
			event := inventory.TradeRejectedEvent{
				Underlying: cmd.Underlying,
				Symbol:     cmd.Symbol,
				Quantity:   cmd.Quantity,
				LimitType:  limitErr.LimitType,
				Limit:      limitErr.Limit,
				Current:    limitErr.Current,
				OccurredOn: time.Now(),
			}
			if pubErr := s.publisher.PublishTradeRejected(event); pubErr != nil {
				s.logger.ErrorContext(ctx, "failed to publish trade rejected event", "error", pubErr)
			}
		}
		return nil, err
	}

	s.countTrade(cmd.Underlying, "recorded")
	if result.HedgeOrder != nil && s.hedgesTotal != nil {
		s.hedgesTotal.WithLabelValues(cmd.Underlying).Inc()
	}
	s.syncHaltGauge(desk)

	if s.inventorySvc != nil {
		if snapshot := desk.Snapshot(cmd.Symbol); snapshot != nil {
			if saveErr := s.inventorySvc.SaveSnapshot(ctx, snapshot); saveErr != nil {
				s.logger.ErrorContext(ctx, "failed to persist position snapshot",
					"underlying", cmd.Underlying, "symbol", cmd.Symbol, "error", saveErr)
			}
		}
	}

	if s.publisher != nil {
		event := inventory.TradeRecordedEvent{
			Underlying:   cmd.Underlying,
			Symbol:       cmd.Symbol,
			Quantity:     cmd.Quantity,
			Price:        cmd.Price,
			NewQuantity:  result.NewQuantity,
			AveragePrice: result.AveragePrice,
			RealizedPnL:  result.RealizedPnL,
			TimestampMs:  cmd.TimestampMs,
			OccurredOn:   time.Now(),
		}
		if pubErr := s.publisher.PublishTradeRecorded(event); pubErr != nil {
			s.logger.ErrorContext(ctx, "failed to publish trade recorded event", "error", pubErr)
		}
	}

	return result, nil
}

// GenerateQuote 生成双边报价。
func (s *DeskService) GenerateQuote(ctx context.Context, req QuoteRequest) (*quoting.GeneratedQuote, error) {
	desk := s.Desk(req.Underlying)

	quote, err := desk.GenerateQuote(req)
	if err != nil {
		s.logger.WarnContext(ctx, "quote generation failed",
			"underlying", req.Underlying, "symbol", req.Symbol, "error", err)
		return nil, err
	}

	if s.quotesTotal != nil {
		s.quotesTotal.WithLabelValues(req.Underlying).Inc()
	}
	return quote, nil
}

// OnGreeksUpdate 更新希腊值快照；敞口突破只告警。
func (s *DeskService) OnGreeksUpdate(ctx context.Context, cmd GreeksUpdateCommand) []inventory.LimitBreach {
	desk := s.Desk(cmd.Underlying)

	breaches := desk.ApplyGreeks(cmd)
	for _, breach := range breaches {
		s.logger.WarnContext(ctx, "greek limit breach",
			"underlying", cmd.Underlying, "kind", breach.Kind, "current", breach.Current, "limit", breach.Limit)
	}
	return breaches
}

// OnMarkToMarket 按市值重估。
func (s *DeskService) OnMarkToMarket(ctx context.Context, cmd MarkToMarketCommand) {
	desk := s.Desk(cmd.Underlying)
	desk.ApplyMarkToMarket(cmd)
	s.syncHaltGauge(desk)
}

// OnHedgeFill 处理对冲成交回报。
func (s *DeskService) OnHedgeFill(ctx context.Context, cmd HedgeFillCommand) {
	s.Desk(cmd.Underlying).ApplyHedgeFill(cmd)
}

// Attribution 盈亏归因。
func (s *DeskService) Attribution(ctx context.Context, req AttributionRequest) pnl.PnLAttribution {
	return s.Desk(req.Underlying).Attribution(req)
}

// Halt 人工熔断指定标的。
func (s *DeskService) Halt(ctx context.Context, underlying, reason string) {
	desk := s.Desk(underlying)
	desk.Halt(reason)
	s.syncHaltGauge(desk)
	s.logger.WarnContext(ctx, "desk halted", "underlying", underlying, "reason", reason)
}

// Resume 人工恢复指定标的。
func (s *DeskService) Resume(ctx context.Context, underlying string) {
	desk := s.Desk(underlying)
	desk.Resume()
	s.syncHaltGauge(desk)
	s.logger.InfoContext(ctx, "desk resumed", "underlying", underlying)
}

// ResetDailyAll 对全部做市台执行日初重置。
func (s *DeskService) ResetDailyAll(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, desk := range s.desks {
		desk.ResetDaily()
	}
	s.logger.InfoContext(ctx, "daily pnl tracking reset", "desks", len(s.desks))
}

// Status 指定标的状态快照。
func (s *DeskService) Status(underlying string, timestampMs int64) DeskStatus {
	return s.Desk(underlying).Status(timestampMs)
}

// PersistAll 持久化全部仓位快照（定时任务或优雅退出时调用）。
func (s *DeskService) PersistAll(ctx context.Context) error {
	if s.inventorySvc == nil {
		return nil
	}

	s.mu.RLock()
	desks := make([]*Desk, 0, len(s.desks))
	for _, desk := range s.desks {
		desks = append(desks, desk)
	}
	s.mu.RUnlock()

	var lastErr error
	for _, desk := range desks {
		for _, snapshot := range desk.Snapshots() {
			if err := s.inventorySvc.SaveSnapshot(ctx, snapshot); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

func (s *DeskService) countTrade(underlying, result string) {
	if s.tradesTotal != nil {
		s.tradesTotal.WithLabelValues(underlying, result).Inc()
	}
}

func (s *DeskService) syncHaltGauge(desk *Desk) {
	if s.haltedGauge == nil {
		return
	}
	status := desk.Status(0)
	if status.State == risk.TradingStateHalted {
		s.haltedGauge.WithLabelValues(desk.Underlying()).Set(1)
	} else {
		s.haltedGauge.WithLabelValues(desk.Underlying()).Set(0)
	}
}
