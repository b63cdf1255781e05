// Package article fetches web pages and pulls out their readable text.
package article

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/pkg/rag/result"
	"ampersand-agent/pkg/rag/sanitize"

	"golang.org/x/net/html"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxBodyBytes     = 5 << 20

	// a paragraph container must carry at least this much text to beat the body fallback
	minParagraphText = 100
)

var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"head":     true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"br": true, "li": true, "ul": true, "ol": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "header": true, "footer": true, "nav": true,
}

type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// Extractor downloads a page and returns its main text, sanitized.
type Extractor struct {
	client    *http.Client
	userAgent string
	logger    logger.ILogger
}

// NewExtractor creates a new article extractor
func NewExtractor(cfg Config, log logger.ILogger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Extractor{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		logger:    log,
	}
}

// Text is Extract without the degradation detail.
func (e *Extractor) Text(ctx context.Context, url string) string {
	return e.Extract(ctx, url).Value
}

// Extract never returns an error. Any failure yields an empty, degraded result.
func (e *Extractor) Extract(ctx context.Context, url string) result.Result[string] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return e.degrade(url, result.ReasonTransport, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return e.degrade(url, result.ReasonTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return e.degrade(url, result.ReasonStatus, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return e.degrade(url, result.ReasonTransport, err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return e.degrade(url, result.ReasonParse, err)
	}

	text := sanitize.Article(MainText(doc))
	if text == "" {
		return e.degrade(url, result.ReasonEmpty, nil)
	}

	e.logger.Debug("ARTICLE", "Extracted article text", map[string]interface{}{
		"url":   url,
		"chars": len(text),
	})
	return result.OK(text)
}

func (e *Extractor) degrade(url string, reason result.Reason, err error) result.Result[string] {
	res := result.Degrade[string](reason, err)
	details := res.LogDetails()
	details["url"] = url
	e.logger.Warn("ARTICLE", "Article extraction failed", details)
	return res
}

// MainText picks the readable region of a parsed document and returns its raw
// text with line breaks at block boundaries.
//  1. <article>, <main> or [role=main]
//  2. the element whose direct <p> children hold the most text
//  3. the whole <body>
func MainText(doc *html.Node) string {
	for _, match := range []func(*html.Node) bool{
		isTag("article"),
		isTag("main"),
		hasRoleMain,
	} {
		if n := findFirst(doc, match); n != nil {
			if text := strings.TrimSpace(textContent(n)); text != "" {
				return text
			}
		}
	}

	if n := densestParagraphContainer(doc); n != nil {
		return strings.TrimSpace(textContent(n))
	}

	if body := findFirst(doc, isTag("body")); body != nil {
		return strings.TrimSpace(textContent(body))
	}
	return strings.TrimSpace(textContent(doc))
}

func isTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func hasRoleMain(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == "role" && strings.EqualFold(attr.Val, "main") {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && skippedTags[n.Data] {
		return nil
	}
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func densestParagraphContainer(doc *html.Node) *html.Node {
	var best *html.Node
	bestLen := minParagraphText - 1

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.ElementNode {
			total := 0
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "p" {
					total += len(strings.TrimSpace(textContent(c)))
				}
			}
			if total > bestLen {
				best, bestLen = n, total
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return best
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			sb.WriteString(node.Data)
			return
		case html.ElementNode:
			if skippedTags[node.Data] {
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if node.Type == html.ElementNode && blockTags[node.Data] {
			sb.WriteString("\n")
		}
	}
	walk(n)
	return sb.String()
}
