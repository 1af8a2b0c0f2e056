// Package messaging 提供了库存领域事件的 Outbox 发布实现。
package messaging

import (
	"context"

	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"gorm.io/gorm"

	"github.com/wyfcoding/optionsmm/internal/inventory/domain"
)

// OutboxEventPublisher 实现 domain.EventPublisher，借助 Outbox 模式保证
// 事件与仓位快照落库的原子性。
type OutboxEventPublisher struct {
	db  *gorm.DB
	mgr *outbox.Manager
}

// NewOutboxEventPublisher 创建 Outbox 事件发布器。
func NewOutboxEventPublisher(db *gorm.DB, mgr *outbox.Manager) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db, mgr: mgr}
}

// PublishTradeRecorded 发布成交落账事件。
func (p *OutboxEventPublisher) PublishTradeRecorded(event domain.TradeRecordedEvent) error {
	return p.publish(domain.TradeRecordedEventType, event.Symbol, event)
}

// PublishTradeRejected 发布成交被拒事件。
func (p *OutboxEventPublisher) PublishTradeRejected(event domain.TradeRejectedEvent) error {
	return p.publish(domain.TradeRejectedEventType, event.Symbol, event)
}

// PublishPositionClosed 发布仓位平仓事件。
func (p *OutboxEventPublisher) PublishPositionClosed(event domain.PositionClosedEvent) error {
	return p.publish(domain.PositionClosedEventType, event.Symbol, event)
}

func (p *OutboxEventPublisher) publish(topic, key string, event any) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		return p.mgr.PublishInTx(context.Background(), tx, topic, key, event)
	})
}
