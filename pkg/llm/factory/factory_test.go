package factory

import (
	"testing"

	"ampersand-agent/pkg/llm/ollama"
	"ampersand-agent/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "groq", Model: "llama3-70b-8192", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider(Config{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.Provider{}, p)

	_, err = NewLLMProvider(Config{Provider: "mystery"})
	assert.EqualError(t, err, "unsupported LLM provider: mystery")
}
