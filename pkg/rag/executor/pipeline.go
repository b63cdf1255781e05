package executor

import (
	"context"
	"fmt"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/events"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/mode"
	"ampersand-agent/pkg/rag/decision"
	"ampersand-agent/pkg/rag/history"
	"ampersand-agent/pkg/rag/prompt"
	"ampersand-agent/pkg/rag/rank"
	"ampersand-agent/pkg/rag/result"
	"ampersand-agent/pkg/rag/sanitize"
	"ampersand-agent/pkg/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Searcher interface {
	Search(ctx context.Context, query string, limit int) result.Result[[]search.Candidate]
}

type Extractor interface {
	Extract(ctx context.Context, url string) result.Result[string]
}

type Generator interface {
	Generate(ctx context.Context, systemPrompt string, memory []string, history []llm.Message) (string, error)
}

type SearchPolicy interface {
	Decide(conversationID, query string, force bool) decision.Decision
}

// Memory is the part of history.Store the pipeline drives.
type Memory interface {
	Append(conversationID string, msg history.Message) int
	Recent(conversationID string) []history.Message
	Replace(conversationID string, msgs ...history.Message)
	Appended(conversationID string) int
	SaveSummary(ctx context.Context, conversationID, summary string) error
	Hydrate(ctx context.Context, conversationID string) bool
}

// InboundQuery is one request for a reply. An empty ModeName selects the
// conversational path.
type InboundQuery struct {
	ConversationID string
	Query          string
	// Source is the user message as recorded in memory, when it differs
	// from Query (mention and trigger still attached).
	Source      string
	ForceSearch bool
	ModeName    string
}

type Config struct {
	SearchCandidates int
	WebContentLimit  int
	SummaryInterval  int
}

type Dependencies struct {
	Catalog   *mode.Catalog
	Policy    SearchPolicy
	Searcher  Searcher
	Extractor Extractor
	Generator Generator
	Memory    Memory
	Publisher events.Publisher
	Logger    logger.ILogger
}

// Pipeline orchestrates retrieval, memory and generation for one query.
// 1. decide whether to search
// 2. search, rank and extract sources
// 3. assemble the prompt from memory and context
// 4. generate and sanitize the reply
type Pipeline struct {
	catalog   *mode.Catalog
	policy    SearchPolicy
	searcher  Searcher
	extractor Extractor
	generator Generator
	memory    Memory
	publisher events.Publisher
	logger    logger.ILogger
	tracer    trace.Tracer
	cfg       Config
}

// NewPipeline creates a new response pipeline
func NewPipeline(deps Dependencies, cfg Config) *Pipeline {
	if cfg.SearchCandidates <= 0 {
		cfg.SearchCandidates = search.DefaultLimit
	}
	if cfg.WebContentLimit <= 0 {
		cfg.WebContentLimit = prompt.DefaultWebContentLimit
	}
	if cfg.SummaryInterval <= 0 {
		cfg.SummaryInterval = history.DefaultSummaryInterval
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Pipeline{
		catalog:   deps.Catalog,
		policy:    deps.Policy,
		searcher:  deps.Searcher,
		extractor: deps.Extractor,
		generator: deps.Generator,
		memory:    deps.Memory,
		publisher: publisher,
		logger:    deps.Logger,
		tracer:    otel.Tracer("ampersand-agent/executor"),
		cfg:       cfg,
	}
}

// HandleInboundQuery produces the reply for q. An empty reply with a nil
// error means the model had nothing to say and nothing should be sent.
func (p *Pipeline) HandleInboundQuery(ctx context.Context, q InboundQuery) (string, error) {
	ctx, span := p.tracer.Start(ctx, "executor.HandleInboundQuery", trace.WithAttributes(
		attribute.String("conversation.id", q.ConversationID),
		attribute.String("mode", q.ModeName),
	))
	defer span.End()

	var selected *mode.Mode
	if q.ModeName != "" {
		m, err := p.catalog.Lookup(q.ModeName)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "unknown mode")
			return "", err
		}
		selected = &m
	}

	p.memory.Hydrate(ctx, q.ConversationID)

	systemPrompt := prompt.SystemPrompt(selected)

	force := q.ForceSearch || (selected != nil && selected.ForcesSearch())
	d := p.policy.Decide(q.ConversationID, q.Query, force)
	span.SetAttributes(attribute.Bool("search.performed", d.Search))

	var memory []string
	if d.Search {
		sources := 1
		if selected != nil {
			sources = selected.SourceCount()
		}
		memory = append(memory, p.webContext(ctx, q.ConversationID, q.Query, sources))
	}

	instruction := q.Query
	if url, ok := prompt.FindURL(instruction); ok {
		instruction = prompt.WithURLContent(instruction, url, p.extractor.Extract(ctx, url).Value)
	}

	var examples []llm.Message
	if selected != nil {
		examples = selected.ExampleMessages()
	}
	window := history.ToLLM(p.memory.Recent(q.ConversationID))
	current := q.Source
	if current == "" {
		current = q.Query
	}
	messages := prompt.History(window, examples, current, instruction)

	raw, err := p.generator.Generate(ctx, systemPrompt, memory, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	if raw == "" {
		p.logger.Warn("PIPELINE", "Generated empty reply, not sending", map[string]interface{}{
			"conversation_id": q.ConversationID,
		})
		return "", nil
	}

	reply := prompt.Labeled(selected, sanitize.Output(raw))

	modeName := ""
	if selected != nil {
		modeName = selected.Name
	}
	p.publish(ctx, events.NewReplyGenerated(q.ConversationID, modeName, d.Search, len(reply)))

	return reply, nil
}

// webContext runs search, ranking and extraction and renders the result as
// one memory entry. It never fails; empty outcomes become system notes.
func (p *Pipeline) webContext(ctx context.Context, conversationID, query string, want int) string {
	ctx, span := p.tracer.Start(ctx, "executor.webContext", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.sources_wanted", want),
	))
	defer span.End()

	candidates := p.searcher.Search(ctx, query, p.cfg.SearchCandidates).Value
	if len(candidates) == 0 {
		p.logger.Warn("PIPELINE", "Search yielded no viable candidates", map[string]interface{}{"query": query})
		p.publish(ctx, events.NewSearchExecuted(conversationID, query, 0, nil))
		return prompt.NoResultsNote(query)
	}

	ranked := rank.Rank(candidates, query)
	p.logger.Info("PIPELINE", "Scored search candidates", map[string]interface{}{
		"candidates": len(ranked),
		"top":        ranked[0].Link,
		"top_score":  ranked[0].Score,
	})

	var texts, sources []string
	for _, c := range ranked {
		if len(texts) >= want {
			break
		}
		text := p.extractor.Extract(ctx, c.Link).Value
		if text == "" {
			continue
		}
		texts = append(texts, text)
		sources = append(sources, c.Link)
	}
	span.SetAttributes(attribute.Int("search.sources_used", len(sources)))
	p.publish(ctx, events.NewSearchExecuted(conversationID, query, len(candidates), sources))

	if len(texts) == 0 {
		p.logger.Warn("PIPELINE", "All candidate URLs failed to yield parsable content", map[string]interface{}{"query": query})
		return prompt.NoUsableContentNote(query)
	}

	entry := prompt.WebContext(sources, texts, p.cfg.WebContentLimit)
	p.logger.Info("PIPELINE", "Injecting fresh web context", map[string]interface{}{
		"sources": len(sources),
		"chars":   len(entry),
	})
	return entry
}

func (p *Pipeline) publish(ctx context.Context, event events.Event) {
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("PIPELINE", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
