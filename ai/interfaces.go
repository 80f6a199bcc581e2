package ai

import (
	"context"

	"github.com/IamLizu/news-aggregator/core"
)

// TopicExtractor derives short topic keywords from article text.
// Implementations must be thread-safe for concurrent use.
type TopicExtractor interface {
	// ExtractTopics returns at most maxTopics topics for text.
	// Returns an empty slice if no topics are found.
	// Returns an error wrapping ErrEnrichmentFailed if the extraction itself fails.
	ExtractTopics(ctx context.Context, text string, maxTopics int) ([]string, error)
}

// EntityExtractor recognises people, locations and organizations in article text.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities returns the entities named in text.
	// Provider and parse failures are logged and yield core.EmptyEntities()
	// with a nil error; only context cancellation is returned as an error.
	ExtractEntities(ctx context.Context, text string) (core.Entities, error)
}

// AIProvider aggregates enrichment services for convenient initialization and lifecycle management.
type AIProvider interface {
	// TopicExtractor returns the topic extraction service.
	// The returned TopicExtractor is safe for concurrent use.
	TopicExtractor() TopicExtractor

	// EntityExtractor returns the entity extraction service.
	// The returned EntityExtractor is safe for concurrent use.
	EntityExtractor() EntityExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
