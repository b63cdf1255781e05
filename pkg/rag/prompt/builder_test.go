package prompt

import (
	"strings"
	"testing"

	"ampersand-agent/internal/constant"
	"ampersand-agent/pkg/llm"
	"ampersand-agent/pkg/mode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t, constant.BaseSystemPrompt+"\n\nRespond concisely. No fluff.", SystemPrompt(nil))

	m := &mode.Mode{Name: mode.Explanation, Prompt: "Explain things."}
	assert.Equal(t, "Explain things.\n\n---\n\n"+constant.BaseSystemPrompt, SystemPrompt(m))
}

func TestWebContext(t *testing.T) {
	got := WebContext([]string{"https://a.org", "https://b.gov"}, []string{"alpha", "beta"}, 0)
	assert.Equal(t, "The following is context from web search(es) (sources: https://a.org, https://b.gov):\nalpha\n\n---\n\nbeta", got)

	capped := WebContext([]string{"s"}, []string{strings.Repeat("x", 20)}, 5)
	assert.True(t, strings.HasSuffix(capped, ":\nxxxxx"))
}

func TestNotes(t *testing.T) {
	assert.Equal(t, `[System Note: A web search for "mars" yielded no usable results after heuristic analysis.]`, NoUsableContentNote("mars"))
	assert.Equal(t, `[System Note: A web search for "mars" yielded no usable results.]`, NoResultsNote("mars"))
}

func TestFindURL(t *testing.T) {
	u, ok := FindURL("check <https://example.com/a?b=1> please")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a?b=1", u)

	u, ok = FindURL("(see http://x.test/page)")
	assert.True(t, ok)
	assert.Equal(t, "http://x.test/page", u)

	_, ok = FindURL("no links here")
	assert.False(t, ok)
}

func TestWithURLContent(t *testing.T) {
	assert.Equal(t, "sum\n\n[Parsed Content from URL]:\nbody", WithURLContent("sum", "https://u", "body"))
	assert.Equal(t, "sum\n\n[Note: The URL provided (https://u) could not be parsed.]", WithURLContent("sum", "https://u", ""))
}

func TestHistory(t *testing.T) {
	window := []llm.Message{
		{Role: llm.RoleUser, Content: "earlier"},
		{Role: llm.RoleAssistant, Content: "reply"},
	}
	examples := []llm.Message{
		{Role: llm.RoleUser, Content: "ex q"},
		{Role: llm.RoleAssistant, Content: "ex a"},
	}

	out := History(window, examples, "now", "now")
	require.Len(t, out, 5)
	assert.Equal(t, "earlier", out[0].Content)
	assert.Equal(t, "ex q", out[2].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "now"}, out[4])

	withCopy := append(window, llm.Message{Role: llm.RoleUser, Content: "now"})
	out = History(withCopy, nil, "now", "now")
	require.Len(t, out, 3)
	assert.Equal(t, "now", out[2].Content)

	out = History(withCopy, examples, "now", "now")
	require.Len(t, out, 5)
	assert.Equal(t, "ex a", out[3].Content)
	assert.Equal(t, "now", out[4].Content)

	assert.Len(t, History(window, nil, "", ""), 2)
}

func TestHistoryDropsRecordedMention(t *testing.T) {
	window := []llm.Message{
		{Role: llm.RoleUser, Content: "earlier"},
		{Role: llm.RoleUser, Content: "<@1> explain: tides"},
	}

	out := History(window, nil, "<@1> explain: tides", "tides")

	require.Len(t, out, 2)
	assert.Equal(t, "earlier", out[0].Content)
	assert.Equal(t, "tides", out[1].Content)

	// an older message that merely ends the same way is kept
	out = History(window, nil, "<@1> tides", "tides")
	assert.Len(t, out, 3)
}

func TestSummarization(t *testing.T) {
	got := Summarization([]llm.Message{{Role: llm.RoleUser, Content: "hi"}, {Role: llm.RoleAssistant, Content: "yo"}})
	assert.Equal(t, constant.SummarizationPrompt+"hi\nyo", got)
	assert.True(t, strings.HasSuffix(constant.SummarizationPrompt, "\n\nConversation:\n"))
}

func TestLabeled(t *testing.T) {
	assert.Equal(t, "plain", Labeled(nil, "plain"))
	assert.Equal(t, "[**Research Mode**] answer", Labeled(&mode.Mode{Name: mode.Research}, "answer"))
}
