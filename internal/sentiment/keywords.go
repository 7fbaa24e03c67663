package sentiment

import "strings"

const maxKeywords = 5

// stopWords are tokens that carry no topical signal on their own: articles,
// conjunctions, auxiliary verbs and common prepositions.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {},
	"has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "must": {},
	"can": {}, "a": {}, "an": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "from": {},
}

// ExtractKeywords derives up to five keywords from a submission's subject and
// comment without touching the classification service. It is the fallback
// keyword source for degraded analysis results: pure, deterministic, and total
// over any string input.
func ExtractKeywords(subject, comment string) []string {
	text := strings.ToLower(subject + " " + comment)

	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(text) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		word = strings.TrimRight(word, ".,!?;:")
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}

	if len(keywords) == 0 {
		return []string{strings.ToLower(subject)}
	}
	return keywords
}
