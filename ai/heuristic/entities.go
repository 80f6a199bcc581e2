package heuristic

import (
	"context"
	"strings"
	"unicode"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/core"
)

// organizationMarkers identify a capitalised phrase as an organization when
// they appear as one of its words.
var organizationMarkers = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "ltd": true, "llc": true,
	"plc": true, "co": true, "company": true, "group": true, "bank": true,
	"university": true, "institute": true, "agency": true, "ministry": true,
	"department": true, "council": true, "committee": true, "association": true,
	"foundation": true, "party": true, "reserve": true, "commission": true,
	"union": true, "organization": true, "organisation": true, "fund": true,
	"court": true, "parliament": true, "congress": true, "senate": true,
}

// connectors may join capitalised words inside one phrase.
var connectors = map[string]bool{
	"of": true, "de": true, "van": true, "von": true, "for": true, "and": true,
}

// leadingWords are sentence openers dropped from the start of a phrase.
var leadingWords = map[string]bool{
	"The": true, "A": true, "An": true, "In": true, "On": true, "At": true,
	"But": true, "And": true, "As": true, "By": true, "For": true, "From": true,
}

// EntityExtractor finds capitalised multi-word phrases.
// Locations cannot be told apart from people without a gazetteer and are
// left empty.
type EntityExtractor struct{}

var _ ai.EntityExtractor = EntityExtractor{}

// ExtractEntities returns the phrases recognised in text.
func (EntityExtractor) ExtractEntities(_ context.Context, text string) (core.Entities, error) {
	entities := core.EmptyEntities()
	seen := make(map[string]bool)

	for _, phrase := range capitalisedPhrases(text) {
		if seen[phrase] {
			continue
		}
		seen[phrase] = true

		if isOrganization(phrase) {
			entities.Organizations = append(entities.Organizations, phrase)
		} else {
			entities.People = append(entities.People, phrase)
		}
	}
	return entities, nil
}

func isOrganization(phrase string) bool {
	for _, word := range strings.Fields(phrase) {
		if organizationMarkers[strings.ToLower(strings.Trim(word, "."))] {
			return true
		}
	}
	return false
}

// capitalisedPhrases returns runs of two or more capitalised words.
// A run never spans sentence punctuation, and connectors are kept only
// between capitalised words.
func capitalisedPhrases(text string) []string {
	var phrases []string
	var run []string

	flush := func() {
		for len(run) > 0 && leadingWords[run[0]] {
			run = run[1:]
		}
		// drop trailing connectors
		for len(run) > 0 && connectors[run[len(run)-1]] {
			run = run[:len(run)-1]
		}
		if countCapitalised(run) >= 2 {
			phrases = append(phrases, strings.Join(run, " "))
		}
		run = nil
	}

	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '&'
		})
		word = strings.TrimSuffix(word, ".")
		endsClause := strings.ContainsAny(raw[len(raw)-1:], ".,;:!?)\"")

		switch {
		case word == "":
			flush()
		case isCapitalised(word):
			run = append(run, word)
		case len(run) > 0 && connectors[word]:
			run = append(run, word)
		default:
			flush()
		}

		if endsClause {
			flush()
		}
	}
	flush()

	return phrases
}

func countCapitalised(words []string) int {
	n := 0
	for _, w := range words {
		if isCapitalised(w) {
			n++
		}
	}
	return n
}

func isCapitalised(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
