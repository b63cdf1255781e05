package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"ampersand-agent/internal/constant"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/mode"
)

const (
	DefaultWebContentLimit = 50000
	sourceSeparator        = "\n\n---\n\n"
)

var urlPattern = regexp.MustCompile(`https?://[^\s>)]+`)

// SystemPrompt returns the mode template layered over the persona, or the
// persona with the conversational suffix when m is nil.
func SystemPrompt(m *mode.Mode) string {
	if m == nil {
		return constant.BaseSystemPrompt + constant.ConversationalSuffix
	}
	return m.Prompt + constant.ModePromptSeparator + constant.BaseSystemPrompt
}

// WebContext renders extracted source texts as one memory entry. The joined
// text is capped at limit characters.
func WebContext(sources, texts []string, limit int) string {
	if limit <= 0 {
		limit = DefaultWebContentLimit
	}
	combined := truncateRunes(strings.Join(texts, sourceSeparator), limit)
	return fmt.Sprintf("The following is context from web search(es) (sources: %s):\n%s", strings.Join(sources, ", "), combined)
}

// NoUsableContentNote is used when candidates existed but none could be extracted.
func NoUsableContentNote(query string) string {
	return fmt.Sprintf(`[System Note: A web search for "%s" yielded no usable results after heuristic analysis.]`, query)
}

// NoResultsNote is used when the search returned no viable candidates.
func NoResultsNote(query string) string {
	return fmt.Sprintf(`[System Note: A web search for "%s" yielded no usable results.]`, query)
}

// FindURL returns the first http(s) URL in text.
func FindURL(text string) (string, bool) {
	u := urlPattern.FindString(text)
	return u, u != ""
}

// WithURLContent appends extracted page text, or a note that the page could not be parsed.
func WithURLContent(instruction, url, content string) string {
	if content == "" {
		return instruction + fmt.Sprintf("\n\n[Note: The URL provided (%s) could not be parsed.]", url)
	}
	return instruction + "\n\n[Parsed Content from URL]:\n" + content
}

// History orders the conversation for the model: window, few-shot examples,
// then the instruction. When the newest window entry is the current user
// message, as recorded, that copy is dropped so the turn appears once, last.
func History(window, examples []llm.Message, current, instruction string) []llm.Message {
	if instruction != "" && len(window) > 0 {
		last := window[len(window)-1]
		if last.Role == llm.RoleUser && (last.Content == current || last.Content == instruction) {
			window = window[:len(window)-1]
		}
	}

	out := make([]llm.Message, 0, len(window)+len(examples)+1)
	out = append(out, window...)
	out = append(out, examples...)
	if instruction != "" {
		out = append(out, llm.Message{Role: llm.RoleUser, Content: instruction})
	}
	return out
}

// Summarization renders the compression request for a window.
func Summarization(window []llm.Message) string {
	contents := make([]string, len(window))
	for i, m := range window {
		contents[i] = m.Content
	}
	return constant.SummarizationPrompt + strings.Join(contents, "\n")
}

// Labeled prefixes a mode reply with its label.
func Labeled(m *mode.Mode, reply string) string {
	if m == nil {
		return reply
	}
	return m.Label() + " " + reply
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
