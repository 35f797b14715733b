package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records events in memory for tests and for the CLI,
// which has no broker.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) PublishReportGenerated(ctx context.Context, data *ReportGeneratedEvent) error {
	event := newEvent(EventReportGenerated, data)

	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	m.logger.DebugContext(ctx, "Mock event recorded", "event_type", event.Type, "event_id", event.ID)
	return nil
}

// GetPublishedEvents returns a copy of the recorded events.
func (m *MockEventPublisher) GetPublishedEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.events...)
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}

func (m *MockEventPublisher) Close() error {
	return nil
}
