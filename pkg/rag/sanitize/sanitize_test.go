package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"collapses whitespace", "  Paris   is\n\nthe capital.  ", "Paris is the capital."},
		{"strips brace blocks", "Intro .a{color:red} text", "Intro .a text"},
		{"drops class selector line", "Keep me\n.nav-bar\nAnd me", "Keep me And me"},
		{"drops hash line", "# heading-ish\nBody", "Body"},
		{"drops statement line", "var x = 1;\nReal sentence", "Real sentence"},
		{"drops opening brace line", "function f() {\nText", "Text"},
		{"nested braces keep outer shell", "a {b {c} d} e", "a {b d} e"},
		{"collapses no-break spaces", "Paris\u00a0\u00a0is the\u00a0 capital", "Paris is the capital"},
		{"collapses vertical tabs", "capital\v\vof France", "capital of France"},
		{"collapses other unicode spaces", "\u2003thin\u2009space\u3000", "thin space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Article(tt.in))
		})
	}
}

func TestArticleIsIdempotentOnCleanText(t *testing.T) {
	clean := "The Eiffel Tower is in Paris."
	assert.Equal(t, clean, Article(Article(clean)))
}

func TestOutput(t *testing.T) {
	assert.Equal(t, "", Output(""))
	assert.Equal(t, "fast, cheap, good", Output("fast—cheap–good"))
	assert.Equal(t, "a, b, c", Output("a‒b―c"))
	assert.Equal(t, "keep-hyphens  and;semicolons", Output("keep-hyphens  and;semicolons"))
}
