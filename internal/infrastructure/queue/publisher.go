package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/xid"

	"gem_market/internal/domain/entity"
	"gem_market/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	TypeDealEvent = "deal:event"

	maxRetry  = 5
	retention = 24 * time.Hour
)

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher ставит уведомления о сделках в очередь asynq.
type Publisher struct {
	client Enqueuer
	queue  string
}

func NewPublisher(client Enqueuer, queue string) *Publisher {
	return &Publisher{client: client, queue: queue}
}

func (p *Publisher) Notify(ctx context.Context, event entity.DealEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal deal event: %w", err)
	}

	task := asynq.NewTask(TypeDealEvent, payload,
		asynq.TaskID(xid.New().String()),
		asynq.Queue(p.queue),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(retention),
	)

	info, err := p.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeDealEvent, err)
	}

	logger(ctx).Debug("deal event enqueued",
		slog.String("task-id", info.ID),
		slog.String("queue", info.Queue),
		slog.String(logx.FieldDealNumber, event.DealNumber),
	)

	return nil
}

// DecodeDealEvent читает событие из задачи TypeDealEvent.
func DecodeDealEvent(task *asynq.Task) (entity.DealEvent, error) {
	var event entity.DealEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return entity.DealEvent{}, fmt.Errorf("unmarshal deal event: %w", asynq.SkipRetry)
	}

	return event, nil
}
