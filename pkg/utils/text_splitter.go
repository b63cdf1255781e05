package utils

import (
	"strings"
	"unicode/utf8"
)

const DefaultMessageLimit = 2000

// SplitText splits a long string into chunks of approximately 'chunkSize' characters.
// It includes an 'overlap' to preserve context at boundaries.
func SplitText(text string, chunkSize int, overlap int) []string {
	if utf8.RuneCountInString(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// SplitMessage breaks a chat reply into chunks of at most limit characters,
// cutting on line boundaries. A single line longer than limit is cut hard.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for _, piece := range SplitText(line, limit, 0) {
			n := utf8.RuneCountInString(piece)
			sep := 0
			if size > 0 {
				sep = 1
			}
			if size+sep+n > limit {
				flush()
				sep = 0
			}
			if sep == 1 {
				current.WriteByte('\n')
			}
			current.WriteString(piece)
			size += sep + n
		}
	}
	flush()

	return chunks
}
