package heuristic

import "github.com/IamLizu/news-aggregator/ai"

// NewProvider returns an AIProvider backed entirely by local heuristics.
func NewProvider() ai.AIProvider {
	return ai.Compose(TopicExtractor{}, EntityExtractor{})
}
