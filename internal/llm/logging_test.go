package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/focusflow/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordingProvider_WritesUsage(t *testing.T) {
	s := openTestStore(t)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"headline":"ok"}`), Usage: newUsage(30, 10)},
		unavailable(),
	)
	p := WithRecording(mock, ProviderMock, s.LLMEvents(), nil)

	ctx := WithPurpose(context.Background(), "coaching")
	_, err := p.Generate(ctx, Request{System: "sys", Messages: UserMessage("hi"), Schema: noteSchema()})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{Messages: UserMessage("again")})
	require.Error(t, err)

	usage, err := s.LLMEvents().LLMUsage(context.Background(), "coaching")
	require.NoError(t, err)
	assert.Equal(t, store.LLMUsage{Requests: 2, Failures: 1, InputTokens: 30, OutputTokens: 10}, usage)

	other, err := s.LLMEvents().LLMUsage(context.Background(), "other")
	require.NoError(t, err)
	assert.Zero(t, other.Requests)
}

type failingRepo struct{ calls int }

func (f *failingRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingRepo) LLMUsage(context.Context, string) (store.LLMUsage, error) {
	return store.LLMUsage{}, nil
}

func TestRecordingProvider_RepoFailureIgnored(t *testing.T) {
	repo := &failingRepo{}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRecording(mock, ProviderMock, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestDescribeRequest(t *testing.T) {
	got := describeRequest(Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		Schema:   &Schema{Name: "tiny", Definition: map[string]any{"type": "object"}},
	})
	assert.Contains(t, got, "[system]\nbe brief")
	assert.Contains(t, got, "[user]\nhello")
	assert.Contains(t, got, `[schema: tiny]`)
	assert.Contains(t, got, `{"type":"object"}`)
}
