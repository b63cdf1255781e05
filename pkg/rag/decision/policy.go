package decision

import (
	"strings"
	"sync"
	"time"

	"ampersand-agent/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

const DefaultCooldown = 90 * time.Second

// LeadWords mark a query as a question when they open it.
var LeadWords = map[string]bool{
	"what": true, "who": true, "when": true, "where": true, "why": true,
	"how": true, "is": true, "do": true, "does": true, "can": true,
	"will": true, "should": true, "explain": true, "summarize": true,
	"dissect": true, "fact-check": true, "guide": true, "research": true,
}

// Decision is the outcome for one inbound query.
type Decision struct {
	Search     bool
	Question   bool
	OnCooldown bool
}

// Policy decides whether a query triggers a web search and owns the
// per-conversation last-search timestamps.
type Policy struct {
	// mu makes the cooldown check and the claim one step
	mu       sync.Mutex
	cooldown time.Duration
	lastRun  *cache.Cache
	now      func() time.Time
	logger   logger.ILogger
}

type Option func(*Policy)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

// NewPolicy creates a new search decision policy
func NewPolicy(cooldown time.Duration, log logger.ILogger, opts ...Option) *Policy {
	if cooldown < 0 {
		cooldown = 0
	}
	p := &Policy{
		cooldown: cooldown,
		lastRun:  cache.New(cooldown, 2*cooldown),
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide evaluates the query and, when the answer is to search, records the
// search time before returning. Of several concurrent questions for one
// conversation, at most one is told to search.
func (p *Policy) Decide(conversationID, query string, force bool) Decision {
	query = strings.TrimSpace(query)
	if query == "" {
		return Decision{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	d := Decision{
		Question:   IsQuestion(query),
		OnCooldown: p.onCooldown(conversationID, now),
	}
	d.Search = force || (d.Question && !d.OnCooldown)

	if d.Search {
		p.lastRun.Set(conversationID, now, cache.DefaultExpiration)
	} else if d.Question && d.OnCooldown {
		p.logger.Info("DECISION", "Search skipped due to active cooldown", map[string]interface{}{
			"conversation_id": conversationID,
			"query":           query,
		})
	}
	return d
}

// LastSearch returns when the conversation last searched.
func (p *Policy) LastSearch(conversationID string) (time.Time, bool) {
	if v, found := p.lastRun.Get(conversationID); found {
		return v.(time.Time), true
	}
	return time.Time{}, false
}

func (p *Policy) onCooldown(conversationID string, now time.Time) bool {
	last, found := p.LastSearch(conversationID)
	if !found {
		return false
	}
	return now.Sub(last) < p.cooldown
}

// IsQuestion reports whether a query ends with "?" or opens with a lead word.
func IsQuestion(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	if strings.HasSuffix(query, "?") {
		return true
	}
	first := strings.ToLower(strings.Fields(query)[0])
	first = strings.TrimRight(first, ",.:;!")
	return LeadWords[first]
}
