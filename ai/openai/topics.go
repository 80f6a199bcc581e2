package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IamLizu/news-aggregator/ai"
)

// TopicExtractor implements ai.TopicExtractor using OpenAI-compatible chat APIs.
type TopicExtractor struct {
	completer *completer
	logger    *slog.Logger
}

var _ ai.TopicExtractor = (*TopicExtractor)(nil)

func newTopicExtractor(c *completer, logger *slog.Logger) *TopicExtractor {
	return &TopicExtractor{
		completer: c,
		logger:    logger.With("component", "openai-topics"),
	}
}

// ExtractTopics asks the model for up to maxTopics comma-separated keywords.
// An empty response yields an empty slice. Request failures are returned
// wrapped in ai.ErrEnrichmentFailed.
func (e *TopicExtractor) ExtractTopics(ctx context.Context, text string, maxTopics int) ([]string, error) {
	if maxTopics <= 0 {
		return []string{}, nil
	}

	response, err := e.completer.complete(ctx, buildTopicPrompt(maxTopics), text)
	if err != nil {
		e.logger.Error("failed to generate topics", "err", err)
		return nil, fmt.Errorf("%w: topics: %w", ai.ErrEnrichmentFailed, err)
	}
	if response == "" {
		e.logger.Debug("model returned no topics")
		return []string{}, nil
	}

	topics := splitKeywords(response, maxTopics)
	e.logger.Debug("extracted topics", "count", len(topics))
	return topics, nil
}
