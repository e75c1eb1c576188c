package synthesis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/evidentia/docsynth/core"
)

// Placeholder metadata attached to every extracted indicator. The
// extraction is heuristic; sourcing and SDG mapping are left to human
// validation.
const (
	indicatorDataSources  = "WHO / National Statistical Office / World Bank"
	indicatorFrequency    = "Annual"
	indicatorSDGRelevance = "SDG Target TBD"
)

// indicatorPattern matches noun phrases ending in a measurement keyword,
// e.g. "youth unemployment rate" or "immunization coverage". The first
// token must start with a letter so numbers in the evidence don't open
// a candidate phrase.
var indicatorPattern = regexp.MustCompile(`(?i)\b([a-z][\w ]*(?:rate|ratio|index|level|score|coverage|prevalence|incidence))\b`)

// Leading words trimmed off candidate phrases. Sentence-level matches
// often drag in the preceding clause; stripping connectives keeps the
// phrase to the measurement noun.
var phraseStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
	"by": true, "from": true, "that": true, "this": true, "is": true,
	"are": true, "was": true, "were": true, "as": true, "its": true,
}

// maxPhraseWords caps candidate length. Longer matches are clause
// fragments, not indicator names; only the trailing words matter.
const maxPhraseWords = 5

// IndicatorExtractor derives indicator candidates from evidence text.
type IndicatorExtractor interface {
	// Extract returns up to topK indicator candidates found in text,
	// most frequent first. Returns nil when nothing matches.
	Extract(text string, topK int) []string
}

// PatternExtractor extracts indicator candidates by keyword pattern.
// Candidates are ranked by how often they recur across the evidence,
// with alphabetical order breaking ties so extraction is deterministic.
type PatternExtractor struct{}

var _ IndicatorExtractor = (*PatternExtractor)(nil)

// NewPatternExtractor creates a pattern-based indicator extractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract returns up to topK indicator phrases found in text.
func (e *PatternExtractor) Extract(text string, topK int) []string {
	if topK <= 0 || text == "" {
		return nil
	}

	counts := make(map[string]int)
	for _, match := range indicatorPattern.FindAllStringSubmatch(text, -1) {
		phrase := normalizePhrase(match[1])
		if phrase == "" {
			continue
		}
		counts[phrase]++
	}

	if len(counts) == 0 {
		return nil
	}

	phrases := make([]string, 0, len(counts))
	for phrase := range counts {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return phrases[i] < phrases[j]
	})

	if len(phrases) > topK {
		phrases = phrases[:topK]
	}
	return phrases
}

// normalizePhrase trims leading connectives, caps the word count, and
// title-cases the result. Returns "" for phrases that reduce to nothing.
func normalizePhrase(raw string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))

	for len(words) > 1 && phraseStopWords[words[0]] {
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}
	if len(words) > maxPhraseWords {
		words = words[len(words)-maxPhraseWords:]
		// Capping can expose a new leading connective
		for len(words) > 1 && phraseStopWords[words[0]] {
			words = words[1:]
		}
	}

	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// buildIndicators attaches placeholder metadata to candidate names.
// When no candidates were extracted, numbered fallbacks are generated
// from the topic so the matrix is never empty.
func buildIndicators(topic string, candidates []string, topK int) []core.Indicator {
	if len(candidates) == 0 {
		candidates = make([]string, topK)
		for i := range candidates {
			candidates[i] = fmt.Sprintf("%s Indicator %d", topic, i+1)
		}
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	purpose := fmt.Sprintf("This indicator measures progress on %s and reflects impact on target populations.", strings.ToLower(topic))

	indicators := make([]core.Indicator, len(candidates))
	for i, name := range candidates {
		indicators[i] = core.Indicator{
			Name:         name,
			Purpose:      purpose,
			DataSources:  indicatorDataSources,
			Frequency:    indicatorFrequency,
			SDGRelevance: indicatorSDGRelevance,
		}
	}
	return indicators
}
