package finsight

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// EventType identifies a notable transition in a run's lifecycle.
type EventType string

const (
	EventPlanCreated       EventType = "PLAN_CREATED"
	EventTaskStarted       EventType = "TASK_STARTED"
	EventTaskCompleted     EventType = "TASK_COMPLETED"
	EventValidationStarted EventType = "VALIDATION_STARTED"
	EventValidationError   EventType = "VALIDATION_ERROR"
	EventValidationFailed  EventType = "VALIDATION_FAILED"
	EventSynthesisStarted  EventType = "SYNTHESIS_STARTED"
	EventSynthesisError    EventType = "SYNTHESIS_ERROR"
	EventFinalAnswer       EventType = "FINAL_ANSWER"
	EventWorkflowError     EventType = "WORKFLOW_ERROR"
	EventReportCreated     EventType = "REPORT_CREATED"
)

// Observer receives lifecycle events from the controller. Observers are
// best-effort: the controller isolates their failures (including panics),
// so a broken observer can never change a run's outcome.
type Observer interface {
	Log(ctx context.Context, event EventType, payload map[string]any)
}

// NewLogObserver creates an observer that records events through slog.
// Every event carries a session ID assigned at construction, so events of
// one run can be correlated across components.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = defaultLogger
	}
	return &slogObserver{
		logger:    logger,
		sessionID: uuid.NewString(),
	}
}

type slogObserver struct {
	logger    *slog.Logger
	sessionID string
}

func (o *slogObserver) Log(ctx context.Context, event EventType, payload map[string]any) {
	o.logger.Info("research event",
		slog.String("session_id", o.sessionID),
		slog.String("event", string(event)),
		slog.Any("payload", payload),
	)
}

// MultiObserver fans events out to several observers in order.
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) Log(ctx context.Context, event EventType, payload map[string]any) {
	for _, o := range m {
		o.Log(ctx, event, payload)
	}
}

// nopObserver is used when no observer is configured.
type nopObserver struct{}

func (nopObserver) Log(ctx context.Context, event EventType, payload map[string]any) {}
