// Package consumer 提供做市引擎的 Kafka 消费入口：成交回报与标记价流。
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/optionsmm/internal/marketmaking/application"

	inventory "github.com/wyfcoding/optionsmm/internal/inventory/domain"
)

// 消费的主题。
const (
	TradeFillTopic = "optionsmm.fills"
	HedgeFillTopic = "optionsmm.hedge.fills"
	MarkPriceTopic = "optionsmm.marks"
)

// FillHandler 把 Kafka 消息路由到做市台应用服务。
type FillHandler struct {
	desks  *application.DeskService
	logger *slog.Logger
}

// NewFillHandler 构造函数。
func NewFillHandler(desks *application.DeskService, logger *slog.Logger) *FillHandler {
	return &FillHandler{desks: desks, logger: logger.With("module", "fill_consumer")}
}

// Handle 按主题分发消息。
// 限额拒单返回 nil 以提交位移：重试同一笔被拒的成交不会有不同结果。
func (h *FillHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case TradeFillTopic:
		var cmd application.TradeFillCommand
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal trade fill", "error", err)
			return err
		}
		if _, err := h.desks.OnTradeFill(ctx, cmd); err != nil {
			var limitErr *inventory.ErrInventoryLimitExceeded
			if errors.As(err, &limitErr) {
				return nil
			}
			return err
		}
		return nil

	case HedgeFillTopic:
		var cmd application.HedgeFillCommand
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal hedge fill", "error", err)
			return err
		}
		h.desks.OnHedgeFill(ctx, cmd)
		return nil

	case MarkPriceTopic:
		var cmd application.MarkToMarketCommand
		if err := json.Unmarshal(msg.Value, &cmd); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal mark prices", "error", err)
			return err
		}
		h.desks.OnMarkToMarket(ctx, cmd)
		return nil

	default:
		h.logger.WarnContext(ctx, "unknown topic", "topic", msg.Topic)
		return nil
	}
}
