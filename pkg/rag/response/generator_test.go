package response

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns the queued errors in order, then the reply.
type scriptedProvider struct {
	errs  []error
	reply string
	calls [][]llm.Message
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.calls = append(p.calls, history)
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return "", err
	}
	return p.reply, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newTestGenerator(p llm.LLMProvider, cfg Config) (*Generator, *recordingSleeper) {
	sleeper := &recordingSleeper{}
	return NewGenerator(p, cfg, logger.NewNopLogger(), WithSleeper(sleeper.Sleep)), sleeper
}

func status(code int) error {
	return &llm.StatusError{Provider: "test", Code: code}
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	p := &scriptedProvider{errs: []error{status(429), status(429), status(429)}, reply: "hello"}
	g, sleeper := newTestGenerator(p, Config{})

	reply, err := g.Generate(context.Background(), "sys", nil, []llm.Message{{Role: llm.RoleUser, Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Len(t, p.calls, 4)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeper.waits)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	p := &scriptedProvider{errs: []error{status(503), status(500), status(502), status(503)}}
	g, sleeper := newTestGenerator(p, Config{})

	_, err := g.Generate(context.Background(), "sys", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	var statusErr *llm.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.Code)
	assert.Len(t, p.calls, 4)
	assert.Len(t, sleeper.waits, 3)
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"client error status", status(400)},
		{"transport error", errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{errs: []error{tt.err}, reply: "never"}
			g, sleeper := newTestGenerator(p, Config{})

			_, err := g.Generate(context.Background(), "sys", nil, nil)

			assert.ErrorIs(t, err, tt.err)
			assert.NotErrorIs(t, err, ErrRetriesExhausted)
			assert.Len(t, p.calls, 1)
			assert.Empty(t, sleeper.waits)
		})
	}
}

func TestGenerateStopsWhenContextCancelledDuringBackoff(t *testing.T) {
	p := &scriptedProvider{errs: []error{status(429), status(429)}, reply: "late"}
	g := NewGenerator(p, Config{InitialBackoff: time.Hour}, logger.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, "sys", nil, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, p.calls, 1)
}

func TestGenerateEmptyCompletion(t *testing.T) {
	p := &scriptedProvider{reply: "  "}
	g, _ := newTestGenerator(p, Config{})

	reply, err := g.Generate(context.Background(), "sys", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestBuildMessages(t *testing.T) {
	g, _ := newTestGenerator(&scriptedProvider{}, Config{})

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are helpful."},
		{Role: llm.RoleUser, Content: "You are helpful."},
		{Role: llm.RoleAssistant, Content: "ok"},
	}
	messages := g.BuildMessages("You are helpful.", []string{"fact one", "fact two"}, history)

	require.Len(t, messages, 3)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "You are helpful.\n\nMemory:\nfact one\nfact two", messages[0].Content)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Equal(t, "ok", messages[2].Content)
}

func TestBuildMessagesRespectsBudget(t *testing.T) {
	g, _ := newTestGenerator(&scriptedProvider{}, Config{MaxPromptTokens: 10})

	history := []llm.Message{
		{Role: llm.RoleUser, Content: strings.Repeat("old ", 5)},
		{Role: llm.RoleAssistant, Content: "three word reply"},
		{Role: llm.RoleUser, Content: "newest question here"},
	}
	// system costs 4 tokens, leaving 6 for history
	messages := g.BuildMessages("one two three four", nil, history)

	require.Len(t, messages, 3)
	assert.Equal(t, "three word reply", messages[1].Content)
	assert.Equal(t, "newest question here", messages[2].Content)
}

func TestBuildMessagesWithoutMemory(t *testing.T) {
	g, _ := newTestGenerator(&scriptedProvider{}, Config{})

	messages := g.BuildMessages("sys", nil, nil)

	require.Len(t, messages, 1)
	assert.Equal(t, "sys", messages[0].Content)
}
