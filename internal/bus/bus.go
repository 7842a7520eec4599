// Package bus is the in-process publish/subscribe channel that connects the
// parts of a station session. Dispatch is synchronous: Publish returns after
// every subscriber has run.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Topic names a kind of event.
type Topic string

const (
	TopicTick              Topic = "tick"
	TopicFeedPush          Topic = "feed:push"
	TopicLogsPageLoaded    Topic = "logs:pageLoaded"
	TopicLogChanged        Topic = "log:changed"
	TopicGlitchTrigger     Topic = "glitch:trigger"
	TopicBootComplete      Topic = "boot:complete"
	TopicSystemPhase       Topic = "system:phase"
	TopicDiagnosticsUpdate Topic = "diagnostics:update"
	TopicDiagnosticsRender Topic = "diagnostics:render"
	TopicVisibility        Topic = "visibility:change"
	TopicAnomalyFire       Topic = "anomaly:fire"
)

// Event is a published message.
type Event struct {
	Topic   Topic
	Payload any
}

// Handler receives events for a topic it subscribed to.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus dispatches events to subscribers. It is safe for concurrent use, but
// publishers are expected to publish from the session's event loop.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscription
	nextID int
	logger *slog.Logger
}

// New creates a Bus. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[Topic][]subscription),
		logger: logger,
	}
}

// Subscribe registers fn for topic and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(topic Topic, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[topic]
	for i, s := range list {
		if s.id == id {
			next := make([]subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, topic)
			} else {
				b.subs[topic] = next
			}
			return
		}
	}
}

// Publish delivers payload to every current subscriber of topic in
// subscription order. Subscribers added or removed during dispatch take
// effect from the next Publish. A panicking subscriber is logged and skipped.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	list := b.subs[topic]
	b.mu.RUnlock()

	ev := Event{Topic: topic, Payload: payload}
	for _, s := range list {
		b.dispatch(s, ev)
	}
}

func (b *Bus) dispatch(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("subscriber panicked",
				"topic", string(ev.Topic),
				"error", fmt.Sprint(r))
		}
	}()
	s.fn(ev)
}

// Subscribers returns the number of subscribers for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
