package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableSessions  = "focus_sessions"
	tableEvents    = "session_events"
	tableLLM       = "llm_request_events"
	tableSnapshots = "snapshots"
	tableSequence  = "global_sequence"
)

var (
	sessionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "session_type", Type: field.TypeString},
		{Name: "state", Type: field.TypeString},
		{Name: "planned_duration", Type: field.TypeInt},
		{Name: "start_time", Type: field.TypeTime},
		// start_unix mirrors start_time in Unix nanoseconds for range scans.
		{Name: "start_unix", Type: field.TypeInt64},
		{Name: "planned_end_time", Type: field.TypeTime},
		{Name: "paused_at", Type: field.TypeTime, Nullable: true},
		{Name: "end_time", Type: field.TypeTime, Nullable: true},
		{Name: "actual_duration", Type: field.TypeInt, Nullable: true},
		{Name: "completion_reason", Type: field.TypeString, Default: ""},
		{Name: "interruption_count", Type: field.TypeInt, Default: 0},
		{Name: "productivity_score", Type: field.TypeFloat64, Nullable: true},
		{Name: "completion_rate", Type: field.TypeFloat64, Nullable: true},
		{Name: "quality", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionColumns,
		PrimaryKey: []*schema.Column{sessionColumns[0]},
		Indexes: []*schema.Index{
			{Name: "focussession_user_id_start_unix", Columns: []*schema.Column{sessionColumns[1], sessionColumns[6]}},
			{Name: "focussession_user_id_state", Columns: []*schema.Column{sessionColumns[1], sessionColumns[3]}},
		},
	}

	eventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "kind", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "data", Type: field.TypeJSON, Nullable: true},
	}
	eventsTable = &schema.Table{
		Name:       tableEvents,
		Columns:    eventColumns,
		PrimaryKey: []*schema.Column{eventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_user_id_sequence", Columns: []*schema.Column{eventColumns[4], eventColumns[1]}},
			{Name: "sessionevent_kind", Columns: []*schema.Column{eventColumns[3]}},
		},
	}

	llmColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	llmTable = &schema.Table{
		Name:       tableLLM,
		Columns:    llmColumns,
		PrimaryKey: []*schema.Column{llmColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{llmColumns[9]}},
		},
	}

	snapshotColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	snapshotsTable = &schema.Table{
		Name:       tableSnapshots,
		Columns:    snapshotColumns,
		PrimaryKey: []*schema.Column{snapshotColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_user_id_kind_timestamp", Columns: []*schema.Column{snapshotColumns[1], snapshotColumns[2], snapshotColumns[4]}},
		},
	}

	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	sequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	tables = []*schema.Table{
		sessionsTable,
		eventsTable,
		llmTable,
		snapshotsTable,
		sequenceTable,
	}
)

// openSessionIndex allows at most one active or paused session per user,
// across every process sharing the database file. ent's table description
// has no partial unique index, so it is created after the tables.
const openSessionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS focussession_user_id_open
	ON ` + tableSessions + `(user_id) WHERE state IN ('active', 'paused')`

// migrate creates or upgrades every table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := drv.Exec(ctx, openSessionIndex, []any{}, nil); err != nil {
		return fmt.Errorf("create open session index: %w", err)
	}
	return nil
}

// builder returns the SQLite statement builder.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}
