package executor

import (
	"context"
	"errors"
	"fmt"

	"ampersand-agent/pkg/events"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/rag/history"
	"ampersand-agent/pkg/rag/prompt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrEmptySummary = errors.New("model returned an empty summary")

// Record appends msg to the conversation and, on every SummaryInterval-th
// append, compresses the window into a persisted summary. It reports whether
// a compression happened. Compression failures are logged and leave the
// window as it was.
func (p *Pipeline) Record(ctx context.Context, conversationID string, msg history.Message) bool {
	p.memory.Hydrate(ctx, conversationID)
	p.memory.Append(conversationID, msg)

	appended := p.memory.Appended(conversationID)
	if appended%p.cfg.SummaryInterval != 0 {
		return false
	}

	if err := p.Compress(ctx, conversationID); err != nil {
		p.logger.Error("PIPELINE", "Failed to generate/save conversation summary", map[string]interface{}{
			"conversation_id": conversationID,
			"error":           err,
		})
		return false
	}
	return true
}

// Compress summarizes the current window, persists the summary and replaces
// the window with it.
func (p *Pipeline) Compress(ctx context.Context, conversationID string) error {
	ctx, span := p.tracer.Start(ctx, "executor.Compress", trace.WithAttributes(
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	window := p.memory.Recent(conversationID)
	request := prompt.Summarization(history.ToLLM(window))

	summary, err := p.generator.Generate(ctx, request, nil, []llm.Message{{Role: llm.RoleUser, Content: request}})
	if err == nil && summary == "" {
		err = ErrEmptySummary
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarization failed")
		return fmt.Errorf("failed to summarize conversation: %w", err)
	}

	if err := p.memory.SaveSummary(ctx, conversationID, summary); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary not persisted")
		return fmt.Errorf("failed to persist summary: %w", err)
	}

	p.memory.Replace(conversationID, history.NewMessage(llm.RoleSystem, history.CompressedSummaryPrefix+summary))
	p.logger.Info("PIPELINE", "Conversation summary saved", map[string]interface{}{
		"conversation_id": conversationID,
		"window":          len(window),
	})
	p.publish(ctx, events.NewMemoryCompressed(conversationID, p.memory.Appended(conversationID), len(summary)))
	return nil
}
