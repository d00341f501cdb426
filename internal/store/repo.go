package store

import (
	"context"
	"time"
)

// Run statuses recorded in the runs table.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string // uuid, minted at pipeline start
	URL        string
	Questions  int
	Artifact   string // path of the exported file, empty if the run failed
	Status     string
	Error      string
	StartedAt  time.Time
	DurationMs int64
}

// RunRepo provides access to the run history.
type RunRepo interface {
	// Save inserts a completed or failed run record.
	Save(ctx context.Context, run *Run) error

	// List returns the most recent runs, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Run, error)
}

// LLMEventData captures one model API call for the event log.
type LLMEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored event row.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMEventData
}

// EventRepo provides append and query access to model request events.
type EventRepo interface {
	// AppendLLMEvent records a model API call.
	AppendLLMEvent(ctx context.Context, data LLMEventData) error

	// ListLLMEvents returns the most recent events, newest first. A
	// non-empty purpose restricts the result to that stage; limit applies
	// after the filter. limit <= 0 means no limit.
	ListLLMEvents(ctx context.Context, purpose string, limit int) ([]LLMEvent, error)

	// GetLLMEvent returns one event by ID, including request/response bodies.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
}
