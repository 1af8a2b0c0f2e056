package domain

import "context"

// PositionSnapshot 仓位快照（含标的与合约代码，用于持久化与读模型）。
type PositionSnapshot struct {
	Underlying string   `json:"underlying"`
	Symbol     string   `json:"symbol"`
	Position   Position `json:"position"`
}

// PositionRepository 仓位快照仓储接口（写模型）。
// 核心不强制持久化，快照仅供集成方落库与查询。
type PositionRepository interface {
	Save(ctx context.Context, snapshot *PositionSnapshot) error
	Get(ctx context.Context, underlying, symbol string) (*PositionSnapshot, error)
	GetByUnderlying(ctx context.Context, underlying string) ([]*PositionSnapshot, error)
	Delete(ctx context.Context, underlying, symbol string) error
}

// PositionReadRepository 仓位读模型缓存（读写分离）。
type PositionReadRepository interface {
	Save(ctx context.Context, snapshot *PositionSnapshot) error
	Get(ctx context.Context, underlying, symbol string) (*PositionSnapshot, error)
}
