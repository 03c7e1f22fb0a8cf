package worker

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"gem_market/internal/domain/entity"
	"gem_market/internal/infrastructure/queue"
	"gem_market/pkg/logx"
)

type EventSender interface {
	SendDealEvent(ctx context.Context, event entity.DealEvent) error
}

// NotificationHandler доставляет события сделок из очереди в Telegram.
type NotificationHandler struct {
	sender EventSender
}

func NewNotificationHandler(sender EventSender) *NotificationHandler {
	return &NotificationHandler{sender: sender}
}

func (h *NotificationHandler) Handle(ctx context.Context, task *asynq.Task) error {
	event, err := queue.DecodeDealEvent(task)
	if err != nil {
		logger(ctx).Error("bad deal event payload", slog.String(logx.FieldTaskType, task.Type()), logx.Error(err))
		return err
	}

	if err := h.sender.SendDealEvent(ctx, event); err != nil {
		logger(ctx).Warn("deal event delivery failed",
			slog.String(logx.FieldDealNumber, event.DealNumber),
			logx.Error(err),
		)
		return err
	}

	return nil
}
