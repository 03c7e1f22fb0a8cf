package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/internal/infrastructure/queue"
	"gem_market/internal/worker"
)

type sender struct {
	events []entity.DealEvent
	err    error
}

func (s *sender) SendDealEvent(_ context.Context, event entity.DealEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)

	return nil
}

type capture struct {
	task *asynq.Task
}

func (c *capture) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.task = task
	return &asynq.TaskInfo{ID: "1"}, nil
}

func TestNotificationHandler(t *testing.T) {
	rq := require.New(t)

	c := &capture{}
	event := entity.DealEvent{Kind: value.EventDealCreated, DealID: uuid.New(), DealNumber: "000001"}
	rq.NoError(queue.NewPublisher(c, "default").Notify(context.Background(), event))

	s := &sender{}
	h := worker.NewNotificationHandler(s)
	rq.NoError(h.Handle(context.Background(), c.task))
	rq.Len(s.events, 1)
	rq.Equal("000001", s.events[0].DealNumber)

	failing := worker.NewNotificationHandler(&sender{err: errors.New("telegram is down")})
	rq.Error(failing.Handle(context.Background(), c.task))

	err := h.Handle(context.Background(), asynq.NewTask(queue.TypeDealEvent, []byte("not json")))
	rq.ErrorIs(err, asynq.SkipRetry)
}
