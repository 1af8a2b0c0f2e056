// Package application 提供库存上下文的应用服务：仓位快照持久化与读写分离查询。
package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/optionsmm/internal/inventory/domain"
)

// InventoryService 库存应用服务。
// 写路径由做市引擎驱动：引擎产生的仓位快照经此落库并回填缓存；
// 读路径 cache-aside：先查缓存，未命中回源数据库并异步回填。
type InventoryService struct {
	repo     domain.PositionRepository
	readRepo domain.PositionReadRepository
	logger   *slog.Logger
}

// NewInventoryService 构造函数。
func NewInventoryService(repo domain.PositionRepository, readRepo domain.PositionReadRepository, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		repo:     repo,
		readRepo: readRepo,
		logger:   logger.With("module", "inventory"),
	}
}

// SaveSnapshot 持久化仓位快照并刷新读缓存。
// 缓存刷新失败只记日志不阻断：缓存带 TTL，最终会自愈。
func (s *InventoryService) SaveSnapshot(ctx context.Context, snapshot *domain.PositionSnapshot) error {
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return err
	}
	if s.readRepo != nil {
		if err := s.readRepo.Save(ctx, snapshot); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh position cache",
				"underlying", snapshot.Underlying, "symbol", snapshot.Symbol, "error", err)
		}
	}
	return nil
}

// GetPosition 查询单个仓位快照，cache-aside。
func (s *InventoryService) GetPosition(ctx context.Context, underlying, symbol string) (*domain.PositionSnapshot, error) {
	if s.readRepo != nil {
		cached, err := s.readRepo.Get(ctx, underlying, symbol)
		if err != nil {
			s.logger.WarnContext(ctx, "position cache read failed", "symbol", symbol, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	snapshot, err := s.repo.Get(ctx, underlying, symbol)
	if err != nil {
		return nil, err
	}
	if snapshot != nil && s.readRepo != nil {
		if err := s.readRepo.Save(ctx, snapshot); err != nil {
			s.logger.WarnContext(ctx, "position cache backfill failed", "symbol", symbol, "error", err)
		}
	}
	return snapshot, nil
}

// ListPositions 查询某标的下全部仓位快照。
func (s *InventoryService) ListPositions(ctx context.Context, underlying string) ([]*domain.PositionSnapshot, error) {
	return s.repo.GetByUnderlying(ctx, underlying)
}

// DeletePosition 删除仓位快照（平仓后清理）。
func (s *InventoryService) DeletePosition(ctx context.Context, underlying, symbol string) error {
	return s.repo.Delete(ctx, underlying, symbol)
}
