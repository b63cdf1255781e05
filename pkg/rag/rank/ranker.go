package rank

import (
	"sort"
	"strings"

	"ampersand-agent/pkg/search"
)

const maxQueryWords = 5

// PreferredSources get a flat bonus when they appear in a link.
var PreferredSources = []string{
	"wikipedia.org", "reuters.com", "apnews.com", "npr.org", "pbs.org",
	"bbc.com", "forbes.com", "bloomberg.com", "techcrunch.com",
	"theverge.com", "arstechnica.com", "webmd.com", "mayoclinic.org",
	"nih.gov", "cdc.gov", "espn.com", "theathletic.com",
	"bleacherreport.com", "cbssports.com",
}

// Rank scores candidates against the query and returns a new slice sorted by
// descending score. Ties keep their original order.
func Rank(candidates []search.Candidate, query string) []search.Candidate {
	words := queryWords(query)

	ranked := make([]search.Candidate, len(candidates))
	for i, c := range candidates {
		c.Score = Score(c, words)
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Score computes the heuristic relevance of one candidate.
func Score(c search.Candidate, words []string) int {
	link := strings.ToLower(c.Link)
	title := strings.ToLower(c.Title)
	snippet := strings.ToLower(c.Snippet)

	score := 0
	for _, source := range PreferredSources {
		if strings.Contains(link, source) {
			score += 20
			break
		}
	}
	if strings.Contains(link, ".gov") {
		score += 5
	}
	if strings.Contains(link, ".edu") {
		score += 4
	}
	if strings.Contains(link, ".org") {
		score += 2
	}

	for _, w := range words {
		if strings.Contains(title, w) {
			score += 2
		}
		if strings.Contains(snippet, w) {
			score++
		}
	}
	return score
}

func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) > maxQueryWords {
		fields = fields[:maxQueryWords]
	}
	return fields
}
