// Package token estimates prompt cost and trims conversation history to a budget.
//
// The estimate is a whitespace word count. It is a coarse proxy for a real
// tokenizer and is only used to keep prompts comfortably under the model window.
package token

import (
	"strings"

	"ampersand-agent/pkg/llm"
)

// Count returns the estimated token cost of text.
func Count(text string) int {
	return len(strings.Fields(text))
}

// CountMessages sums Count over every message content.
func CountMessages(messages []llm.Message) int {
	total := 0
	for _, m := range messages {
		total += Count(m.Content)
	}
	return total
}

// Trim returns the longest suffix of messages whose estimated cost fits maxTokens.
// The scan runs newest-first and stops at the first message that does not fit,
// so the result is always contiguous and keeps chronological order.
func Trim(messages []llm.Message, maxTokens int) []llm.Message {
	total := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := Count(messages[i].Content)
		if total+cost > maxTokens {
			break
		}
		total += cost
		start = i
	}

	out := make([]llm.Message, len(messages)-start)
	copy(out, messages[start:])
	return out
}
