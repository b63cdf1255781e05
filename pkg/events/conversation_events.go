package events

import "time"

const (
	TypeSearchExecuted   = "SEARCH_EXECUTED"
	TypeReplyGenerated   = "REPLY_GENERATED"
	TypeMemoryCompressed = "MEMORY_COMPRESSED"
)

func NewSearchExecuted(conversationID, query string, candidates int, sources []string) Event {
	return BaseEvent{
		Type: TypeSearchExecuted,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"query":           query,
			"candidates":      candidates,
			"sources":         sources,
		},
		OccurredAt: time.Now(),
	}
}

func NewReplyGenerated(conversationID, mode string, searched bool, replyChars int) Event {
	return BaseEvent{
		Type: TypeReplyGenerated,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"mode":            mode,
			"searched":        searched,
			"reply_chars":     replyChars,
		},
		OccurredAt: time.Now(),
	}
}

func NewMemoryCompressed(conversationID string, appended int, summaryChars int) Event {
	return BaseEvent{
		Type: TypeMemoryCompressed,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"appended":        appended,
			"summary_chars":   summaryChars,
		},
		OccurredAt: time.Now(),
	}
}
