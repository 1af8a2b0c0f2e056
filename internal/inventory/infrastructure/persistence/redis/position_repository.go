// Package redis 提供了仓位读模型的 Redis 缓存实现。
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/optionsmm/internal/inventory/domain"
)

// PositionRedisRepository 仓位快照读缓存，实现 domain.PositionReadRepository。
type PositionRedisRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewPositionRedisRepository 创建读缓存实例。
func NewPositionRedisRepository(client redis.UniversalClient) *PositionRedisRepository {
	return &PositionRedisRepository{
		client: client,
		prefix: "optionsmm:position:",
		ttl:    15 * time.Minute,
	}
}

// Save 写入仓位快照缓存。
func (r *PositionRedisRepository) Save(ctx context.Context, snapshot *domain.PositionSnapshot) error {
	if snapshot == nil || snapshot.Symbol == "" {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(snapshot.Underlying, snapshot.Symbol), data, r.ttl).Err()
}

// Get 读取仓位快照缓存；未命中返回 nil, nil。
func (r *PositionRedisRepository) Get(ctx context.Context, underlying, symbol string) (*domain.PositionSnapshot, error) {
	data, err := r.client.Get(ctx, r.key(underlying, symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.PositionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *PositionRedisRepository) key(underlying, symbol string) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, underlying, symbol)
}
