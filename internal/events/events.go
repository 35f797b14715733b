// Package events publishes report lifecycle events through watermill.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "bt-analytics-service"
	EventVersion = "1.0"

	EventReportGenerated = "report.generated"

	DefaultTopic = "bt-analytics.reports"
)

// Event is the envelope of every published message.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ReportGeneratedEvent describes one finished report run. It carries the
// headline figures only, never the uploaded rows.
type ReportGeneratedEvent struct {
	RunID       string                 `json:"run_id"`
	Kind        string                 `json:"kind"`
	SourceName  string                 `json:"source_name"`
	RowCount    int                    `json:"row_count"`
	Summary     map[string]interface{} `json:"summary,omitempty"`
	RequestedBy string                 `json:"requested_by,omitempty"`
}

// EventPublisher is implemented by every publisher backend.
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, event *ReportGeneratedEvent) error
	Close() error
}

func newEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
