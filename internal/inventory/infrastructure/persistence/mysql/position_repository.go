// Package mysql 提供了仓位快照仓储接口的 MySQL GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/optionsmm/internal/inventory/domain"
	pricing "github.com/wyfcoding/optionsmm/internal/pricing/domain"
)

// PositionModel 仓位快照数据库模型
type PositionModel struct {
	gorm.Model
	Underlying   string          `gorm:"column:underlying;type:varchar(20);index;uniqueIndex:idx_underlying_symbol;not null"`
	Symbol       string          `gorm:"column:symbol;type:varchar(40);uniqueIndex:idx_underlying_symbol;not null"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null"`
	AveragePrice decimal.Decimal `gorm:"column:average_price;type:decimal(32,18);not null"`
	CostBasis    decimal.Decimal `gorm:"column:cost_basis;type:decimal(32,18);not null"`
	Multiplier   decimal.Decimal `gorm:"column:multiplier;type:decimal(32,18);not null"`
	RealizedPnL  decimal.Decimal `gorm:"column:realized_pnl;type:decimal(32,18);default:0"`
	Delta        decimal.Decimal `gorm:"column:delta;type:decimal(32,18);default:0"`
	Gamma        decimal.Decimal `gorm:"column:gamma;type:decimal(32,18);default:0"`
	Theta        decimal.Decimal `gorm:"column:theta;type:decimal(32,18);default:0"`
	Vega         decimal.Decimal `gorm:"column:vega;type:decimal(32,18);default:0"`
	Rho          decimal.Decimal `gorm:"column:rho;type:decimal(32,18);default:0"`
	LastUpdateMs int64           `gorm:"column:last_update_ms;type:bigint;default:0"`
}

// TableName 指定表名
func (PositionModel) TableName() string {
	return "option_positions"
}

// positionRepositoryImpl 是 domain.PositionRepository 接口的 GORM 实现。
type positionRepositoryImpl struct {
	db *gorm.DB
}

// NewPositionRepository 创建仓位快照仓储实例
func NewPositionRepository(db *gorm.DB) domain.PositionRepository {
	return &positionRepositoryImpl{db: db}
}

// Save 实现 domain.PositionRepository.Save
func (r *positionRepositoryImpl) Save(ctx context.Context, snapshot *domain.PositionSnapshot) error {
	model := fromDomain(snapshot)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "underlying"}, {Name: "symbol"}},
		UpdateAll: true,
	}).Create(model).Error

	if err != nil {
		logging.Error(ctx, "position_repository.Save failed", "underlying", snapshot.Underlying, "symbol", snapshot.Symbol, "error", err)
		return fmt.Errorf("failed to save position snapshot: %w", err)
	}
	return nil
}

// Get 实现 domain.PositionRepository.Get
func (r *positionRepositoryImpl) Get(ctx context.Context, underlying, symbol string) (*domain.PositionSnapshot, error) {
	var model PositionModel
	if err := r.db.WithContext(ctx).Where("underlying = ? AND symbol = ?", underlying, symbol).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logging.Error(ctx, "position_repository.Get failed", "underlying", underlying, "symbol", symbol, "error", err)
		return nil, fmt.Errorf("failed to get position snapshot: %w", err)
	}
	return toDomain(&model), nil
}

// GetByUnderlying 实现 domain.PositionRepository.GetByUnderlying
func (r *positionRepositoryImpl) GetByUnderlying(ctx context.Context, underlying string) ([]*domain.PositionSnapshot, error) {
	var models []PositionModel
	if err := r.db.WithContext(ctx).Where("underlying = ?", underlying).Order("symbol asc").Find(&models).Error; err != nil {
		logging.Error(ctx, "position_repository.GetByUnderlying failed", "underlying", underlying, "error", err)
		return nil, fmt.Errorf("failed to get position snapshots: %w", err)
	}

	snapshots := make([]*domain.PositionSnapshot, len(models))
	for i := range models {
		snapshots[i] = toDomain(&models[i])
	}
	return snapshots, nil
}

// Delete 实现 domain.PositionRepository.Delete
func (r *positionRepositoryImpl) Delete(ctx context.Context, underlying, symbol string) error {
	if err := r.db.WithContext(ctx).Where("underlying = ? AND symbol = ?", underlying, symbol).Delete(&PositionModel{}).Error; err != nil {
		logging.Error(ctx, "position_repository.Delete failed", "underlying", underlying, "symbol", symbol, "error", err)
		return fmt.Errorf("failed to delete position snapshot: %w", err)
	}
	return nil
}

// mapping helpers

func fromDomain(s *domain.PositionSnapshot) *PositionModel {
	if s == nil {
		return nil
	}
	return &PositionModel{
		Underlying:   s.Underlying,
		Symbol:       s.Symbol,
		Quantity:     s.Position.Quantity,
		AveragePrice: s.Position.AveragePrice,
		CostBasis:    s.Position.CostBasis,
		Multiplier:   s.Position.Multiplier,
		RealizedPnL:  s.Position.RealizedPnL,
		Delta:        s.Position.Greeks.Delta,
		Gamma:        s.Position.Greeks.Gamma,
		Theta:        s.Position.Greeks.Theta,
		Vega:         s.Position.Greeks.Vega,
		Rho:          s.Position.Greeks.Rho,
		LastUpdateMs: s.Position.LastUpdateMs,
	}
}

func toDomain(m *PositionModel) *domain.PositionSnapshot {
	if m == nil {
		return nil
	}
	return &domain.PositionSnapshot{
		Underlying: m.Underlying,
		Symbol:     m.Symbol,
		Position: domain.Position{
			Quantity:     m.Quantity,
			AveragePrice: m.AveragePrice,
			CostBasis:    m.CostBasis,
			Multiplier:   m.Multiplier,
			RealizedPnL:  m.RealizedPnL,
			Greeks:       pricing.NewGreeks(m.Delta, m.Gamma, m.Theta, m.Vega, m.Rho),
			LastUpdateMs: m.LastUpdateMs,
		},
	}
}
