package history

import (
	"context"
	"time"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/repository/contract"
	"ampersand-agent/internal/repository/memory"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/store"
)

const (
	DefaultSummaryInterval = 50

	HydratedSummaryPrefix   = "Summary of previous conversations:\n"
	CompressedSummaryPrefix = "Summary:\n"
)

type Message = store.Message

// NewMessage stamps a message with the current time.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now()}
}

// Store is the tiered conversation memory: a bounded RAM window per
// conversation plus one persisted summary.
type Store struct {
	windows   *memory.WindowRepository
	summaries contract.ISummaryRepository
	logger    logger.ILogger
}

// NewStore creates a new conversation memory store
func NewStore(windows *memory.WindowRepository, summaries contract.ISummaryRepository, log logger.ILogger) *Store {
	return &Store{
		windows:   windows,
		summaries: summaries,
		logger:    log,
	}
}

// Append records a message and returns the new window length.
func (s *Store) Append(conversationID string, msg Message) int {
	length, _ := s.windows.Append(conversationID, msg)
	return length
}

// Recent returns the window oldest first. Unknown conversations yield an empty slice.
func (s *Store) Recent(conversationID string) []Message {
	return s.windows.Get(conversationID)
}

func (s *Store) Replace(conversationID string, msgs ...Message) {
	s.windows.Replace(conversationID, msgs)
}

// Appended is the number of messages ever appended to the conversation.
func (s *Store) Appended(conversationID string) int {
	return s.windows.Appended(conversationID)
}

func (s *Store) Conversations() []string {
	return s.windows.Conversations()
}

// LoadSummary returns the persisted summary, or "" when none exists or the
// backend fails.
func (s *Store) LoadSummary(ctx context.Context, conversationID string) string {
	summary, err := s.summaries.Load(ctx, conversationID)
	if err != nil {
		s.logger.Error("MEMORY", "Failed to load summary", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err,
		})
		return ""
	}
	return summary
}

// SaveSummary overwrites the persisted summary.
func (s *Store) SaveSummary(ctx context.Context, conversationID, summary string) error {
	if err := s.summaries.Save(ctx, conversationID, summary); err != nil {
		s.logger.Error("MEMORY", "Failed to save summary", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err,
		})
		return err
	}
	return nil
}

// Hydrate seeds the window with the persisted summary the first time a
// conversation is touched in this process. It reports whether a summary was seeded.
func (s *Store) Hydrate(ctx context.Context, conversationID string) bool {
	if !s.windows.MarkHydrated(conversationID) {
		return false
	}
	summary := s.LoadSummary(ctx, conversationID)
	if summary == "" {
		return false
	}
	s.Append(conversationID, NewMessage(llm.RoleSystem, HydratedSummaryPrefix+summary))
	s.logger.Info("MEMORY", "Loaded persisted summary into memory", map[string]interface{}{
		"conversation_id": conversationID,
	})
	return true
}

// ToLLM drops timestamps for the wire.
func ToLLM(msgs []Message) []llm.Message {
	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
