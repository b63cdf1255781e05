package token

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"ampersand-agent/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(content string) llm.Message {
	return llm.Message{Role: llm.RoleUser, Content: content}
}

func TestCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"one", 1},
		{"  two   words ", 2},
		{"line one\nline two", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.text), "Count(%q)", tt.text)
	}
}

func TestTrimKeepsNewestSuffixInOrder(t *testing.T) {
	messages := []llm.Message{
		msg("a b c d"), // 4
		msg("e f"),     // 2
		msg("g h i"),   // 3
		msg("j"),       // 1
	}

	out := Trim(messages, 6)

	require.Len(t, out, 3)
	assert.Equal(t, "e f", out[0].Content)
	assert.Equal(t, "g h i", out[1].Content)
	assert.Equal(t, "j", out[2].Content)
}

func TestTrimStopsAtFirstOverflow(t *testing.T) {
	// "big" does not fit, so the small older message is excluded too.
	messages := []llm.Message{msg("x"), msg("b i g g e r"), msg("y")}

	out := Trim(messages, 3)

	require.Len(t, out, 1)
	assert.Equal(t, "y", out[0].Content)
}

func TestTrimNewestAloneOverBudget(t *testing.T) {
	out := Trim([]llm.Message{msg("a"), msg("one two three")}, 2)
	assert.Empty(t, out)
}

func TestTrimSuffixProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		n := r.Intn(12)
		messages := make([]llm.Message, n)
		for i := range messages {
			words := make([]string, r.Intn(8))
			for w := range words {
				words[w] = fmt.Sprintf("w%d", w)
			}
			messages[i] = msg(strings.Join(words, " "))
		}
		budget := r.Intn(30)

		out := Trim(messages, budget)

		assert.LessOrEqual(t, CountMessages(out), budget)
		offset := len(messages) - len(out)
		for i := range out {
			assert.Equal(t, messages[offset+i], out[i])
		}
	}
}
