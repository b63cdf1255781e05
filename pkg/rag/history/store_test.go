package history

import (
	"context"
	"errors"
	"testing"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/repository/memory"
	"ampersand-agent/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSummaries struct {
	data    map[string]string
	loadErr error
	saveErr error
}

func (s *stubSummaries) Load(ctx context.Context, id string) (string, error) {
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.data[id], nil
}

func (s *stubSummaries) Save(ctx context.Context, id, summary string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[id] = summary
	return nil
}

func newTestStore(capacity int, summaries *stubSummaries) *Store {
	return NewStore(memory.NewWindowRepository(capacity), summaries, logger.NewNopLogger())
}

func TestAppendAndRecent(t *testing.T) {
	s := newTestStore(2, &stubSummaries{data: map[string]string{}})

	assert.Equal(t, 1, s.Append("c1", NewMessage(llm.RoleUser, "a")))
	assert.Equal(t, 2, s.Append("c1", NewMessage(llm.RoleAssistant, "b")))
	assert.Equal(t, 2, s.Append("c1", NewMessage(llm.RoleUser, "c")))

	recent := s.Recent("c1")
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].Content)
	assert.Equal(t, "c", recent[1].Content)
	assert.Equal(t, 3, s.Appended("c1"))
	assert.Empty(t, s.Recent("c2"))
}

func TestSummaryRoundTripAndDegrade(t *testing.T) {
	stub := &stubSummaries{data: map[string]string{}}
	s := newTestStore(5, stub)
	ctx := context.Background()

	assert.Equal(t, "", s.LoadSummary(ctx, "c1"))
	require.NoError(t, s.SaveSummary(ctx, "c1", "one"))
	require.NoError(t, s.SaveSummary(ctx, "c1", "two"))
	assert.Equal(t, "two", s.LoadSummary(ctx, "c1"))

	stub.loadErr = errors.New("disk gone")
	assert.Equal(t, "", s.LoadSummary(ctx, "c1"))

	stub.saveErr = errors.New("read-only")
	assert.Error(t, s.SaveSummary(ctx, "c1", "three"))
}

func TestHydrateSeedsOnce(t *testing.T) {
	stub := &stubSummaries{data: map[string]string{"c1": "we talked about Go"}}
	s := newTestStore(5, stub)
	ctx := context.Background()

	assert.True(t, s.Hydrate(ctx, "c1"))
	assert.False(t, s.Hydrate(ctx, "c1"))

	recent := s.Recent("c1")
	require.Len(t, recent, 1)
	assert.Equal(t, llm.RoleSystem, recent[0].Role)
	assert.Equal(t, "Summary of previous conversations:\nwe talked about Go", recent[0].Content)

	assert.False(t, s.Hydrate(ctx, "no-summary"))
	assert.Empty(t, s.Recent("no-summary"))
}

func TestToLLM(t *testing.T) {
	out := ToLLM([]Message{NewMessage(llm.RoleUser, "hi")})
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, out)
}
