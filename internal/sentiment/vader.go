package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var vaderAnalyzer = govader.NewSentimentIntensityAnalyzer()

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// StripLinks drops URLs from a comment, keeping the link text of markdown
// links. URLs skew VADER scores without adding sentiment.
func StripLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return bareURLPattern.ReplaceAllString(input, "")
}

// FlattenMarkdown renders a comment's markdown to plain text so formatting
// characters don't leak into the lexicon lookup.
func FlattenMarkdown(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := strings.Join(strings.Fields(string(output)), " ")
	return StripLinks(plain)
}

// LocalScore runs the in-process VADER analyzer over a comment and returns the
// compound score with a coarse label. This is the deterministic baseline
// attached to analytics events; it never feeds the stored analysis record.
func LocalScore(text string) (float64, string) {
	scores := vaderAnalyzer.PolarityScores(FlattenMarkdown(text))
	score := scores.Compound

	var label string
	switch {
	case score >= 0.20:
		label = "positive"
	case score <= -0.20:
		label = "negative"
	default:
		label = "neutral"
	}

	return score, label
}
