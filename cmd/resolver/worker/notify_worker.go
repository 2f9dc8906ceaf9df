package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/leaguehq/frontoffice/common/engine"
	"github.com/leaguehq/frontoffice/common/logger"
	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/queue"
	rediscommon "github.com/leaguehq/frontoffice/common/redis"
)

// notifyGroup is the consumer group draining the notification stream. One
// group means each payload is dispatched once even with several resolvers up.
const notifyGroup = "notify-dispatch"

const notifyReadBlock = 5 * time.Second

// NotifyWorker consumes outcome notifications from the Redis stream and hands
// them to the delivery queue, where push/text integrations subscribe.
// Messages are acked only after the queue accepts them, so a crash mid-batch
// redelivers rather than drops.
type NotifyWorker struct {
	redis    *rediscommon.Client
	queue    queue.Queue
	stream   string
	consumer string
	log      *logger.Logger
}

// NotifyOpts carries the dependencies of a NotifyWorker
type NotifyOpts struct {
	Redis  *rediscommon.Client
	Queue  queue.Queue
	Stream string
	Logger *logger.Logger
}

// NewNotifyWorker creates a new notification dispatch worker
func NewNotifyWorker(opts NotifyOpts) *NotifyWorker {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "resolver"
	}
	return &NotifyWorker{
		redis:    opts.Redis,
		queue:    opts.Queue,
		stream:   opts.Stream,
		consumer: hostname,
		log:      opts.Logger,
	}
}

// Start drains the stream until the context is cancelled
func (w *NotifyWorker) Start(ctx context.Context) error {
	if err := w.redis.CreateStreamGroup(ctx, w.stream, notifyGroup); err != nil {
		return fmt.Errorf("failed to create notification group: %w", err)
	}

	w.log.Info("starting notification dispatcher",
		"stream", w.stream,
		"group", notifyGroup,
		"consumer", w.consumer)

	for {
		if ctx.Err() != nil {
			w.log.Info("notification dispatcher stopping")
			return ctx.Err()
		}

		streams, err := w.redis.ReadFromStreamGroup(ctx, notifyGroup, w.consumer, w.stream, 16, notifyReadBlock)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error("failed to read notification stream", "error", err)
			time.Sleep(notifyReadBlock)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if err := w.dispatch(ctx, msg.Values); err != nil {
					w.log.Error("failed to dispatch notification",
						"message_id", msg.ID, "error", err)
					continue
				}
				if err := w.redis.AckStreamMessage(ctx, w.stream, notifyGroup, msg.ID); err != nil {
					w.log.Error("failed to ack notification",
						"message_id", msg.ID, "error", err)
				}
			}
		}
	}
}

func (w *NotifyWorker) dispatch(ctx context.Context, values map[string]interface{}) error {
	note := models.Notification{
		Message: fmt.Sprint(values["message"]),
	}
	if _, err := fmt.Sscan(fmt.Sprint(values["team_id"]), &note.TeamID); err != nil {
		return fmt.Errorf("malformed team_id: %w", err)
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := fmt.Sprintf("%d", note.TeamID)
	if err := w.queue.Publish(ctx, engine.NotificationTopic, key, payload); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	w.log.Debug("notification dispatched", "team_id", note.TeamID)
	return nil
}
