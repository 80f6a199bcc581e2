package heuristic

import (
	"context"
	"strings"

	"github.com/IamLizu/news-aggregator/ai"
)

// TopicExtractor returns the first whitespace-delimited tokens of the text.
type TopicExtractor struct{}

var _ ai.TopicExtractor = TopicExtractor{}

// ExtractTopics returns up to maxTopics leading tokens of text.
func (TopicExtractor) ExtractTopics(_ context.Context, text string, maxTopics int) ([]string, error) {
	if maxTopics <= 0 {
		return []string{}, nil
	}

	tokens := strings.Fields(text)
	if len(tokens) > maxTopics {
		tokens = tokens[:maxTopics]
	}
	return tokens, nil
}
