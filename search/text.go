package search

import "strings"

// Stop words dropped when free text is turned into keywords
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "news": true, "about": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Lowercase and trim punctuation
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// KeywordsFromText turns a free-text phrase into distinct query keywords,
// preserving first-seen order.
func KeywordsFromText(text string) []string {
	words := tokenizeAndFilter(text)
	seen := make(map[string]bool, len(words))
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if !seen[word] {
			seen[word] = true
			keywords = append(keywords, word)
		}
	}
	return keywords
}
