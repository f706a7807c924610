package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	UserID string    // only this user's events ("" = all)
	Kind   string    // only this event kind ("" = all)
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// EventRecord is one persisted domain event.
type EventRecord struct {
	Sequence  int64
	Timestamp time.Time
	Kind      string
	UserID    string
	SessionID string
	Data      map[string]any
}

// Snapshot is a point-in-time capture of a computed report.
type Snapshot struct {
	ID        int
	UserID    string
	Kind      string
	Sequence  int64
	Timestamp time.Time
	Data      json.RawMessage
}

// SnapshotRepo manages report snapshots per user and kind.
type SnapshotRepo interface {
	// Save stores a new snapshot. A zero Sequence is filled from the global
	// counter.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot of kind for the user, or nil
	// if none exist.
	Latest(ctx context.Context, userID, kind string) (*Snapshot, error)

	// Prune deletes all but the keep most recent snapshots of kind.
	Prune(ctx context.Context, userID, kind string, keep int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
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

// LLMEvent is one recorded LLM request.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// ModelUsage is token usage summed for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// LLMUsage aggregates LLM request events.
type LLMUsage struct {
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// EventRepo records LLM API calls.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// LLMUsage sums the recorded requests, optionally for one purpose.
	LLMUsage(ctx context.Context, purpose string) (LLMUsage, error)
}
