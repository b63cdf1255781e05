package memory

import (
	"sync"

	"ampersand-agent/pkg/store"

	"github.com/patrickmn/go-cache"
)

const DefaultCapacity = 20

// WindowRepository keeps a bounded FIFO window of messages per conversation.
// Windows never expire; the process lifetime bounds them.
type WindowRepository struct {
	cache    *cache.Cache
	capacity int

	// serializes read-modify-write on a single window
	mu sync.Mutex
}

func NewWindowRepository(capacity int) *WindowRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &WindowRepository{
		cache:    cache.New(cache.NoExpiration, 0),
		capacity: capacity,
	}
}

func (r *WindowRepository) Capacity() int {
	return r.capacity
}

// Append adds a message, evicting the oldest beyond capacity, and returns the
// new window length together with the total number of appends.
func (r *WindowRepository) Append(conversationID string, msg store.Message) (length int, appended int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.load(conversationID)

	messages := append(conv.Messages, msg)
	if len(messages) > r.capacity {
		messages = messages[len(messages)-r.capacity:]
	}
	next := &store.Conversation{
		ID:       conv.ID,
		Messages: append([]store.Message(nil), messages...),
		Appended: conv.Appended + 1,
		Hydrated: conv.Hydrated,
	}
	r.cache.Set(conversationID, next, cache.NoExpiration)
	return len(next.Messages), next.Appended
}

// Get returns a copy of the window, oldest first.
func (r *WindowRepository) Get(conversationID string) []store.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.load(conversationID)
	return append([]store.Message{}, conv.Messages...)
}

// Replace swaps the whole window. Only the newest capacity messages are kept.
func (r *WindowRepository) Replace(conversationID string, msgs []store.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.load(conversationID)
	if len(msgs) > r.capacity {
		msgs = msgs[len(msgs)-r.capacity:]
	}
	r.cache.Set(conversationID, &store.Conversation{
		ID:       conv.ID,
		Messages: append([]store.Message(nil), msgs...),
		Appended: conv.Appended,
		Hydrated: conv.Hydrated,
	}, cache.NoExpiration)
}

// Appended returns the total append count for the conversation.
func (r *WindowRepository) Appended(conversationID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(conversationID).Appended
}

// MarkHydrated flips the hydrated flag and reports whether this call did it.
func (r *WindowRepository) MarkHydrated(conversationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.load(conversationID)
	if conv.Hydrated {
		return false
	}
	next := *conv
	next.Hydrated = true
	r.cache.Set(conversationID, &next, cache.NoExpiration)
	return true
}

// Conversations lists the ids currently held in RAM.
func (r *WindowRepository) Conversations() []string {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids
}

func (r *WindowRepository) load(conversationID string) *store.Conversation {
	if x, found := r.cache.Get(conversationID); found {
		return x.(*store.Conversation)
	}
	return &store.Conversation{ID: conversationID}
}
