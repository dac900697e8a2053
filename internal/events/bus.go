// Package events carries complaint lifecycle notifications as an explicit
// publish/subscribe service with typed payloads. Subscribers register
// directly on the bus; cross-instance delivery rides a Redis channel.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channel = "complaints:events"

type EventType string

const (
	ComplaintCreated EventType = "complaint.created"
	StatusChanged    EventType = "complaint.status_changed"
)

// Event is the typed payload every subscriber receives.
type Event struct {
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaintId"`
	Division    string    `json:"division"`
	Title       string    `json:"title"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	OldStatus   string    `json:"oldStatus,omitempty"`
	At          time.Time `json:"at"`
}

// Bus fans events out to in-process subscribers and mirrors them through
// Redis so every instance sees every event.
type Bus struct {
	redis  *redis.Client
	logger *zap.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

// NewBus creates a bus. rdb may be nil, in which case delivery stays local.
func NewBus(rdb *redis.Client, logger *zap.Logger) *Bus {
	return &Bus{
		redis:  rdb,
		logger: logger,
		subs:   make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber. The returned channel is buffered;
// events are dropped for subscribers that fall behind rather than blocking
// the publisher.
func (b *Bus) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	ch := make(chan Event, 64)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends the event to Redis when available, otherwise straight to
// local subscribers. Publishing never blocks the request path.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if b.redis == nil {
		b.fanOut(e)
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := b.redis.Publish(context.Background(), channel, payload).Err(); err != nil {
		b.logger.Warn("event publish failed, delivering locally", zap.Error(err))
		b.fanOut(e)
	}
}

// Run consumes the Redis channel and fans incoming events out to local
// subscribers until ctx is cancelled. No-op without Redis.
func (b *Bus) Run(ctx context.Context) {
	if b.redis == nil {
		return
	}
	pubsub := b.redis.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.logger.Warn("dropping malformed event", zap.Error(err))
				continue
			}
			b.fanOut(e)
		}
	}
}

func (b *Bus) fanOut(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
