package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/rag/token"
)

const (
	DefaultMaxPromptTokens = 32000
	DefaultMaxAttempts     = 4
	DefaultInitialBackoff  = 2 * time.Second
)

// ErrRetriesExhausted wraps the last backend error once every attempt failed
// with a retryable status.
var ErrRetriesExhausted = errors.New("generation retries exhausted")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Config struct {
	MaxPromptTokens int
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxOutputTokens int
}

// Generator calls the language model with a memory-augmented, token-bounded
// prompt and retries transient backend failures.
type Generator struct {
	provider llm.LLMProvider
	cfg      Config
	sleep    Sleeper
	logger   logger.ILogger
}

type Option func(*Generator)

// WithSleeper replaces the backoff wait.
func WithSleeper(s Sleeper) Option {
	return func(g *Generator) {
		g.sleep = s
	}
}

// NewGenerator creates a new response generator
func NewGenerator(provider llm.LLMProvider, cfg Config, log logger.ILogger, opts ...Option) *Generator {
	if cfg.MaxPromptTokens <= 0 {
		cfg.MaxPromptTokens = DefaultMaxPromptTokens
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	g := &Generator{
		provider: provider,
		cfg:      cfg,
		sleep:    contextSleep,
		logger:   log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the model's reply. An empty completion is "" with a nil error.
func (g *Generator) Generate(ctx context.Context, systemPrompt string, memory []string, history []llm.Message) (string, error) {
	messages := g.BuildMessages(systemPrompt, memory, history)

	var opts []llm.Option
	if g.cfg.MaxOutputTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(g.cfg.MaxOutputTokens))
	}

	reply, err := g.chatWithRetries(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		g.logger.Warn("GENERATION", "Model returned a response with no text content", nil)
		return "", nil
	}
	return reply, nil
}

// BuildMessages assembles the system message and the token-bounded history.
//  1. memory entries are appended to the system prompt
//  2. history entries repeating the bare system prompt are dropped
//  3. history is trimmed to what remains of the budget after the system message
func (g *Generator) BuildMessages(systemPrompt string, memory []string, history []llm.Message) []llm.Message {
	system := systemPrompt
	if len(memory) > 0 {
		system += "\n\nMemory:\n" + strings.Join(memory, "\n")
	}

	filtered := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role == llm.RoleSystem && m.Content == systemPrompt {
			continue
		}
		filtered = append(filtered, m)
	}

	budget := g.cfg.MaxPromptTokens - token.Count(system)
	if budget < 0 {
		budget = 0
	}
	trimmed := token.Trim(filtered, budget)

	messages := make([]llm.Message, 0, len(trimmed)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	return append(messages, trimmed...)
}

func (g *Generator) chatWithRetries(ctx context.Context, messages []llm.Message, opts []llm.Option) (string, error) {
	delay := g.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		reply, err := g.provider.Chat(ctx, messages, opts...)
		if err == nil {
			return reply, nil
		}

		var statusErr *llm.StatusError
		if !errors.As(err, &statusErr) || !statusErr.Retryable() {
			g.logger.Error("GENERATION", "Model request failed", map[string]interface{}{"error": err})
			return "", err
		}

		lastErr = err
		if attempt == g.cfg.MaxAttempts {
			break
		}

		g.logger.Warn("GENERATION", "Model backend overloaded, retrying", map[string]interface{}{
			"status":  statusErr.Code,
			"attempt": attempt,
			"of":      g.cfg.MaxAttempts,
			"wait":    delay.String(),
		})
		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}

	g.logger.Error("GENERATION", "Model request failed after all attempts", map[string]interface{}{
		"attempts": g.cfg.MaxAttempts,
		"error":    lastErr,
	})
	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, g.cfg.MaxAttempts, lastErr)
}
