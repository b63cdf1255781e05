package store

import "time"

// Message is one entry of a conversation window.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the volatile state kept for one conversation id.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"` // oldest first

	// Appended counts every Append since the process started, including
	// messages that have since been evicted or compressed away.
	Appended int `json:"appended"`

	// Hydrated is set once a persisted summary has been considered.
	Hydrated bool `json:"hydrated"`
}
