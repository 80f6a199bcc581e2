// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.TopicExtractor,
// ai.EntityExtractor and ai.AIProvider for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	topics, err := mockProvider.TopicExtractor().ExtractTopics(ctx, "test", 5)
//
//	// Custom behavior injection
//	topics := mock.NewMockTopicExtractor().
//	    WithExtractTopicsFunc(func(ctx context.Context, text string, n int) ([]string, error) {
//	        return nil, ai.ErrEnrichmentFailed
//	    })
//
//	// Check call counts
//	count := topics.CallCount()
//
// # Default Behavior
//
//   - MockTopicExtractor: Returns the first maxTopics lowercased words of the text
//   - MockEntityExtractor: Returns empty entity lists
//   - MockProvider: Aggregates one of each
package mock
