package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/focusflow/internal/focus"
)

func TestLogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	sink.Emit(context.Background(), focus.Event{
		Kind:      focus.EventSessionStarted,
		UserID:    "u1",
		SessionID: "s1",
		At:        time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
		Data:      map[string]any{"planned_duration": 25},
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "focus event", line["msg"])
	assert.Equal(t, "session_started", line["kind"])
	assert.Equal(t, "s1", line["session_id"])
	data, ok := line["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(25), data["planned_duration"])
}

func TestFanout(t *testing.T) {
	var a, b Recorder
	sink := Fanout(&a, nil, &b)

	sink.Emit(context.Background(), focus.Event{Kind: focus.EventSessionPaused})
	sink.Emit(context.Background(), focus.Event{Kind: focus.EventSessionResumed})

	want := []focus.EventKind{focus.EventSessionPaused, focus.EventSessionResumed}
	assert.Equal(t, want, a.Kinds())
	assert.Equal(t, want, b.Kinds())
}

func TestFanout_Degenerate(t *testing.T) {
	assert.Equal(t, focus.NopSink{}, Fanout())
	assert.Equal(t, focus.NopSink{}, Fanout(nil))

	var r Recorder
	assert.Same(t, &r, Fanout(&r).(*Recorder))
}

func TestRecorder_Reset(t *testing.T) {
	var r Recorder
	r.Emit(context.Background(), focus.Event{Kind: focus.EventSessionCompleted})
	require.Len(t, r.Events(), 1)

	r.Reset()
	assert.Empty(t, r.Events())
}
