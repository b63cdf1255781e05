package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/rag/result"
)

const (
	DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"
	DefaultLimit    = 10
	maxLimit        = 10
)

// Candidate is one web search hit. Score is filled in by the ranker.
type Candidate struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Score   int    `json:"score,omitempty"`
}

// Denylist holds link substrings that never make it into context:
// social media, forums, shopping, fan fiction, low-trust outlets, blogs and dictionaries.
var Denylist = []string{
	"youtube.com", "twitter.com", "x.com", "facebook.com", "instagram.com",
	"reddit.com", "tiktok.com", "pinterest.com", "linkedin.com", "tumblr.com",
	"imgur.com", "quora.com", "stackexchange.com", "stackoverflow.com",
	"answers.yahoo.com", "ask.fm", "proboards.com", "freeforums.net",
	"amazon.com", "ebay.com", "walmart.com", "etsy.com", "aliexpress.com",
	"bestbuy.com", "target.com", "fandom.com", "wattpad.com",
	"archiveofourown.org", "breitbart.com", "infowars.com",
	"thegatewaypundit.com", "dailycaller.com", "dailywire.com", "rt.com",
	"sputniknews.com", "theblaze.com", "medium.com", "blogspot.com",
	"substack.com", "wiktionary.org", "dictionary.com", "thesaurus.com",
	"merriam-webster.com", "xml",
}

type Config struct {
	APIKey   string
	EngineID string
	Endpoint string
	Timeout  time.Duration
}

// Gateway queries the Google Custom Search JSON API.
type Gateway struct {
	cfg    Config
	client *http.Client
	logger logger.ILogger
}

// NewGateway creates a new search gateway
func NewGateway(cfg Config, log logger.ILogger) *Gateway {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

type cseResponse struct {
	Items []Candidate `json:"items"`
}

// Search returns filtered candidates in backend order. Failures degrade to an
// empty list and are logged; they never surface as errors.
func (g *Gateway) Search(ctx context.Context, query string, limit int) result.Result[[]Candidate] {
	if g.cfg.APIKey == "" || g.cfg.EngineID == "" {
		return g.degrade(query, result.ReasonNotConfigured, fmt.Errorf("search credentials missing"))
	}
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("key", g.cfg.APIKey)
	params.Set("cx", g.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return g.degrade(query, result.ReasonTransport, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return g.degrade(query, result.ReasonTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return g.degrade(query, result.ReasonStatus, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var payload cseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return g.degrade(query, result.ReasonDecode, err)
	}

	candidates := Filter(payload.Items)
	g.logger.Debug("SEARCH", "Search completed", map[string]interface{}{
		"query":    query,
		"returned": len(payload.Items),
		"kept":     len(candidates),
	})
	return result.OK(candidates)
}

func (g *Gateway) degrade(query string, reason result.Reason, err error) result.Result[[]Candidate] {
	res := result.Degrade[[]Candidate](reason, err)
	details := res.LogDetails()
	details["query"] = query
	g.logger.Warn("SEARCH", "Web search degraded", details)
	res.Value = []Candidate{}
	return res
}

// Filter drops incomplete and denylisted candidates, preserving order.
func Filter(items []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(items))
	for _, item := range items {
		if item.Link == "" || item.Title == "" || item.Snippet == "" {
			continue
		}
		if Denied(item.Link) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// Denied reports whether a link contains any denylisted substring.
func Denied(link string) bool {
	lower := strings.ToLower(link)
	for _, blocked := range Denylist {
		if strings.Contains(lower, blocked) {
			return true
		}
	}
	return false
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
