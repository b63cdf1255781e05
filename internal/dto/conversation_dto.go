package dto

import "time"

type AskRequest struct {
	Query       string `json:"query" validate:"required,max=8000"`
	Mode        string `json:"mode,omitempty" validate:"omitempty,oneof=synoptic dissection explanation guidance research"`
	ForceSearch bool   `json:"force_search,omitempty"`
}

type AskResponse struct {
	ConversationId string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

// InboundEventRequest mirrors a chat-platform message for platforms that
// push events over HTTP.
type InboundEventRequest struct {
	AuthorIsBot bool                  `json:"author_is_bot"`
	Content     string                `json:"content" validate:"required"`
	Reference   *ReferencedMessageDTO `json:"reference,omitempty"`
}

type ReferencedMessageDTO struct {
	Content      string `json:"content"`
	AuthorIsSelf bool   `json:"author_is_self"`
}

type InboundEventResponse struct {
	Replies []string `json:"replies"`
}

type MessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type MemoryResponse struct {
	ConversationId string       `json:"conversation_id"`
	Window         []MessageDTO `json:"window"`
	Summary        string       `json:"summary,omitempty"`
}

type ModeResponse struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Triggers    []string `json:"triggers"`
}
