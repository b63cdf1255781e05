package service

import (
	"context"
	"strings"
	"sync"

	"ampersand-agent/internal/constant"
	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/mode"
	"ampersand-agent/pkg/rag/executor"
	"ampersand-agent/pkg/rag/history"
	"ampersand-agent/pkg/utils"
)

// ReferencedMessage is the message an inbound event replies to.
type ReferencedMessage struct {
	Content      string
	AuthorIsSelf bool
}

// InboundEvent is a chat-platform message as seen by the agent.
type InboundEvent struct {
	ChannelID   string
	AuthorIsBot bool
	Content     string
	Reference   *ReferencedMessage
}

// Replier delivers text back to the platform. Reply answers the inbound
// message, Send posts a follow-up to the same channel.
type Replier interface {
	Reply(ctx context.Context, text string) error
	Send(ctx context.Context, text string) error
}

// Pipeline is the part of executor.Pipeline the service drives.
type Pipeline interface {
	HandleInboundQuery(ctx context.Context, q executor.InboundQuery) (string, error)
	Record(ctx context.Context, conversationID string, msg history.Message) bool
}

// MemoryReader exposes a conversation's memory for inspection.
type MemoryReader interface {
	Recent(conversationID string) []history.Message
	LoadSummary(ctx context.Context, conversationID string) string
}

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	HandleEvent(ctx context.Context, event InboundEvent, replier Replier) error
	Ask(ctx context.Context, q executor.InboundQuery) (string, error)
	Memory(ctx context.Context, conversationID string) ([]history.Message, string)
	Modes() []mode.Mode
}

type Config struct {
	// Tracked reports whether a conversation's messages are recorded.
	// nil records everything.
	Tracked      func(conversationID string) bool
	MessageLimit int
}

type chatbotService struct {
	pipeline Pipeline
	memory   MemoryReader
	parser   *mode.Parser
	catalog  *mode.Catalog
	locks    *keyedMutex
	cfg      Config
	logger   logger.ILogger
}

// NewChatbotService creates a new chatbot service
func NewChatbotService(
	pipeline Pipeline,
	memory MemoryReader,
	catalog *mode.Catalog,
	parser *mode.Parser,
	cfg Config,
	log logger.ILogger,
) IChatbotService {
	if cfg.Tracked == nil {
		cfg.Tracked = func(string) bool { return true }
	}
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = utils.DefaultMessageLimit
	}
	return &chatbotService{
		pipeline: pipeline,
		memory:   memory,
		parser:   parser,
		catalog:  catalog,
		locks:    newKeyedMutex(),
		cfg:      cfg,
		logger:   log,
	}
}

// HandleEvent processes one platform message. Orchestration failures are
// answered with the failure notice and not returned; only delivery errors are.
func (s *chatbotService) HandleEvent(ctx context.Context, event InboundEvent, replier Replier) error {
	if event.AuthorIsBot {
		return nil
	}

	unlock := s.locks.Lock(event.ChannelID)
	defer unlock()

	tracked := s.cfg.Tracked(event.ChannelID)
	if tracked {
		s.pipeline.Record(ctx, event.ChannelID, history.NewMessage(llm.RoleUser, event.Content))
	}

	stripped, mentioned := s.parser.StripMention(event.Content)
	repliedTo := event.Reference != nil && event.Reference.AuthorIsSelf
	if !mentioned && !repliedTo {
		return nil
	}

	switch strings.ToLower(stripped) {
	case constant.AboutCommand:
		return s.deliver(ctx, event.ChannelID, tracked, constant.SelfSummary, replier)
	case constant.ModesCommand:
		return s.deliver(ctx, event.ChannelID, tracked, constant.ModesGuide, replier)
	}

	query, ok := s.route(ctx, event, stripped, mentioned)
	if !ok {
		return nil
	}
	if query.Query == "" {
		return s.deliver(ctx, event.ChannelID, tracked, constant.InstructionalReply, replier)
	}
	query.Source = event.Content

	reply, err := s.pipeline.HandleInboundQuery(ctx, query)
	if err != nil {
		s.logger.Error("CHATBOT", "Failed to handle inbound query", map[string]interface{}{
			"conversation_id": event.ChannelID,
			"mode":            query.ModeName,
			"error":           err.Error(),
		})
		if sendErr := replier.Reply(ctx, constant.FailureNotice); sendErr != nil {
			s.logger.Warn("CHATBOT", "Failed to send failure notice", map[string]interface{}{
				"conversation_id": event.ChannelID,
				"error":           sendErr.Error(),
			})
		}
		return nil
	}
	if reply == "" {
		return nil
	}
	return s.deliver(ctx, event.ChannelID, tracked, reply, replier)
}

// route turns an addressed message into a query. ok is false when the
// message should get no answer at all.
func (s *chatbotService) route(ctx context.Context, event InboundEvent, stripped string, mentioned bool) (executor.InboundQuery, bool) {
	lookup := func(context.Context) (string, bool) {
		if event.Reference == nil || strings.TrimSpace(event.Reference.Content) == "" {
			return "", false
		}
		return event.Reference.Content, true
	}

	cmd := s.parser.Parse(ctx, event.Content, lookup)
	if cmd.HasMode() {
		s.logger.Info("CHATBOT", "Mode command parsed", map[string]interface{}{
			"conversation_id": event.ChannelID,
			"mode":            cmd.Mode.Name,
			"form":            cmd.State.String(),
		})
		return executor.InboundQuery{ConversationID: event.ChannelID, Query: cmd.Instruction, ModeName: cmd.Mode.Name}, true
	}

	if !mentioned {
		return executor.InboundQuery{ConversationID: event.ChannelID, Query: strings.TrimSpace(event.Content)}, true
	}

	// "<mention> trigger:" with nothing after the colon
	if trigger, found := strings.CutSuffix(stripped, ":"); found {
		if _, isMode := s.catalog.ByTrigger(strings.TrimSpace(trigger)); isMode {
			return executor.InboundQuery{}, false
		}
	}
	// bare trigger without a message to work on
	if _, isMode := s.catalog.ByTrigger(stripped); isMode {
		return executor.InboundQuery{ConversationID: event.ChannelID}, true
	}

	return executor.InboundQuery{ConversationID: event.ChannelID, Query: stripped}, true
}

func (s *chatbotService) deliver(ctx context.Context, conversationID string, tracked bool, text string, replier Replier) error {
	if tracked {
		s.pipeline.Record(ctx, conversationID, history.NewMessage(llm.RoleAssistant, text))
	}

	for i, chunk := range utils.SplitMessage(text, s.cfg.MessageLimit) {
		send := replier.Send
		if i == 0 {
			send = replier.Reply
		}
		if err := send(ctx, chunk); err != nil {
			s.logger.Error("CHATBOT", "Failed to deliver reply", map[string]interface{}{
				"conversation_id": conversationID,
				"chunk":           i,
				"error":           err.Error(),
			})
			return err
		}
	}
	return nil
}

// Ask runs a query outside any chat platform. The query and the reply are
// both recorded.
func (s *chatbotService) Ask(ctx context.Context, q executor.InboundQuery) (string, error) {
	unlock := s.locks.Lock(q.ConversationID)
	defer unlock()

	s.pipeline.Record(ctx, q.ConversationID, history.NewMessage(llm.RoleUser, q.Query))

	reply, err := s.pipeline.HandleInboundQuery(ctx, q)
	if err != nil {
		return "", err
	}
	if reply != "" {
		s.pipeline.Record(ctx, q.ConversationID, history.NewMessage(llm.RoleAssistant, reply))
	}
	return reply, nil
}

func (s *chatbotService) Memory(ctx context.Context, conversationID string) ([]history.Message, string) {
	return s.memory.Recent(conversationID), s.memory.LoadSummary(ctx, conversationID)
}

func (s *chatbotService) Modes() []mode.Mode {
	return s.catalog.Modes()
}

// keyedMutex serializes work per conversation. Entries are dropped once no
// goroutine holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
