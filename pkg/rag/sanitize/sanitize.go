package sanitize

import (
	"regexp"
	"strings"
)

var (
	// non-nested {...} fragments left behind by inline CSS or templating
	braceBlockPattern = regexp.MustCompile(`\{[^{}]*\}`)

	dashReplacer = strings.NewReplacer(
		"\u2012", ", ",
		"\u2013", ", ",
		"\u2014", ", ",
		"\u2015", ", ",
	)
)

// Article normalizes text extracted from a web page.
// It removes brace blocks, drops lines that look like code or markup, and
// collapses whitespace to single spaces.
func Article(text string) string {
	if text == "" {
		return ""
	}

	cleaned := braceBlockPattern.ReplaceAllString(text, "")

	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if looksLikeCode(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}

	// strings.Fields splits on every Unicode space, including the
	// no-break spaces html.Parse produces for &nbsp;
	return strings.Join(strings.Fields(strings.Join(kept, "\n")), " ")
}

func looksLikeCode(line string) bool {
	return strings.HasPrefix(line, ".") ||
		strings.HasPrefix(line, "#") ||
		strings.HasSuffix(line, ";") ||
		strings.HasSuffix(line, "{")
}

// Output applies house style to model replies: dash-like punctuation
// (figure dash, en dash, em dash, horizontal bar) becomes a comma and a space.
func Output(text string) string {
	return dashReplacer.Replace(text)
}
