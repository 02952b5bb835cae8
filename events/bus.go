// Package events is an in-process notification bus. Publishers emit events
// after their transaction commits; subscribers own their error handling. A
// failing or panicking subscriber never reaches the publisher.
package events

import (
	"SurgiFlow/logger"
	"context"
	"fmt"
	"sync"
)

// Event is anything published on the bus. Name is used for logging.
type Event interface {
	EventName() string
}

// CaseCompleted is published once per transition of a case into COMPLETED.
type CaseCompleted struct {
	CaseID    uint
	PatientID uint
}

func (CaseCompleted) EventName() string { return "case.completed" }

// SchedulesCreated is published after a PROM schedule batch is committed.
type SchedulesCreated struct {
	CaseID      uint
	PatientID   uint
	PromName    string
	ScheduleIDs []uint
}

func (SchedulesCreated) EventName() string { return "prom.schedules_created" }

// Handler consumes an event. Returned errors are logged and dropped.
type Handler func(ctx context.Context, event Event) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

func NewBus(log *logger.Logger) *Bus {
	return &Bus{handlers: make(map[string][]Handler), log: log}
}

// Subscribe registers h for events with the given name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers event to every subscriber synchronously and in
// registration order.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.dispatch(ctx, h, event); err != nil {
			b.log.Warn("event handler failed", "event", event.EventName(), "error", err)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}

// Publisher is the side of the bus services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}
