package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leaguehq/frontoffice/common/models"
	"github.com/leaguehq/frontoffice/common/queue"
	rediscommon "github.com/leaguehq/frontoffice/common/redis"
)

// NotificationTopic is the in-process queue topic notifications land on.
const NotificationTopic = "league.notifications"

// StreamNotifier publishes notification payloads. With Redis configured they
// land on a stream and a consumer group drains them onto the delivery queue;
// without Redis they go straight to the in-process queue. Only the payload
// shape is owned here, never delivery.
type StreamNotifier struct {
	queue  queue.Queue
	redis  *rediscommon.Client
	stream string
}

// NewStreamNotifier creates a notifier; redis may be nil for single-process
// deployments and tests.
func NewStreamNotifier(q queue.Queue, redis *rediscommon.Client, stream string) *StreamNotifier {
	return &StreamNotifier{
		queue:  q,
		redis:  redis,
		stream: stream,
	}
}

// Notify publishes one payload
func (n *StreamNotifier) Notify(ctx context.Context, note models.Notification) error {
	if n.redis != nil {
		_, err := n.redis.AddToStream(ctx, n.stream, map[string]interface{}{
			"team_id": note.TeamID,
			"message": note.Message,
		})
		if err != nil {
			return fmt.Errorf("failed to stream notification: %w", err)
		}
		return nil
	}

	if n.queue != nil {
		payload, err := json.Marshal(note)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		key := fmt.Sprintf("%d", note.TeamID)
		if err := n.queue.Publish(ctx, NotificationTopic, key, payload); err != nil {
			return fmt.Errorf("failed to publish notification: %w", err)
		}
	}

	return nil
}
