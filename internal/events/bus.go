// Package events carries post-commit notifications from the service to side
// channels. Publishing never blocks a mutation and handler failures never
// reach the caller that triggered the event.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Kind names what happened.
type Kind string

const (
	SprintCreated          Kind = "sprint.created"
	SprintStatusChanged    Kind = "sprint.status_changed"
	SprintRescheduled      Kind = "sprint.rescheduled"
	SprintDeleted          Kind = "sprint.deleted"
	SprintDeadlineAlert    Kind = "sprint.deadline_alert"
	TaskCreated            Kind = "task.created"
	TaskMoved              Kind = "task.moved"
	TaskDeleted            Kind = "task.deleted"
	TaskDeadlineAlert      Kind = "task.deadline_alert"
	ProjectMilestoneChange Kind = "project.milestone_changed"
)

// Event describes one committed change.
type Event struct {
	Kind     Kind              `json:"kind"`
	EntityID string            `json:"entity_id"`
	ActorID  string            `json:"actor_id"`
	At       time.Time         `json:"at"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// Handler consumes events.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Publisher is the sending side used by the service.
type Publisher interface {
	Publish(ev Event)
}

// Bus is a buffered fan-out dispatcher.
type Bus struct {
	logger   *slog.Logger
	queue    chan Event
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
	done     chan struct{}
	once     sync.Once
}

// NewBus creates a bus holding up to size pending events.
func NewBus(size int, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 64
	}
	return &Bus{
		logger: logger,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Subscribe registers h for every event published afterwards.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues ev. A full queue or closed bus drops the event with a warning.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("event dropped, bus closed", "kind", ev.Kind, "entity", ev.EntityID)
		return
	}
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn("event dropped, queue full", "kind", ev.Kind, "entity", ev.EntityID)
	}
}

// Run dispatches queued events until Close is called and the queue is drained.
func (b *Bus) Run(ctx context.Context) {
	defer close(b.done)
	for ev := range b.queue {
		b.dispatch(ctx, ev)
	}
}

// Close stops intake and waits for Run to drain, or for ctx to expire.
func (b *Bus) Close(ctx context.Context) error {
	b.once.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.queue)
		b.mu.Unlock()
	})
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}

func (b *Bus) dispatch(ctx context.Context, ev Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.safeHandle(ctx, h, ev); err != nil {
			b.logger.Error("event handler failed", "kind", ev.Kind, "entity", ev.EntityID, "error", err)
		}
	}
}

func (b *Bus) safeHandle(ctx context.Context, h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// Discard is a Publisher that drops everything.
type Discard struct{}

// Publish does nothing.
func (Discard) Publish(Event) {}
