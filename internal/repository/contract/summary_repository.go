package contract

import "context"

// ISummaryRepository persists one rolling summary per conversation.
// Saving overwrites; loading an unknown conversation returns "" and no error.
type ISummaryRepository interface {
	Load(ctx context.Context, conversationID string) (string, error)
	Save(ctx context.Context, conversationID string, summary string) error
}
