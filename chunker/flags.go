package chunker

import (
	"regexp"
	"strings"

	"github.com/evidentia/docsynth/core"
)

var (
	digitPattern = regexp.MustCompile(`[0-9]`)
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// sdgKeywords is the fixed keyword list used for the HasSDGKeywords flag.
// Matching is case-insensitive on whole chunk text.
var sdgKeywords = []string{
	"poverty",
	"hunger",
	"nutrition",
	"health",
	"education",
	"gender",
	"equality",
	"water",
	"sanitation",
	"energy",
	"employment",
	"unemployment",
	"inequality",
	"climate",
	"biodiversity",
	"governance",
	"resilience",
	"sustainable development",
	"sdg",
}

// DetectFlags computes the lexical content flags for a chunk of text.
// These are cheap signals used downstream to prioritize evidence-bearing
// chunks in summaries; they are computed once and stored with the chunk.
func DetectFlags(text string) core.ContentFlags {
	lower := strings.ToLower(text)

	flags := core.ContentFlags{
		HasNumbers:     digitPattern.MatchString(text),
		HasPercentages: strings.Contains(text, "%"),
		HasYears:       yearPattern.MatchString(text),
	}

	for _, keyword := range sdgKeywords {
		if strings.Contains(lower, keyword) {
			flags.HasSDGKeywords = true
			break
		}
	}

	return flags
}
