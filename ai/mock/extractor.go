package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/core"
)

// MockTopicExtractor is a test double for ai.TopicExtractor.
// It allows tests to control topic extraction behavior and track calls.
// Safe for concurrent use by the ingestion worker pool.
type MockTopicExtractor struct {
	// ExtractTopicsFunc allows customizing the ExtractTopics behavior.
	// If nil, returns the first maxTopics lowercased words of the text.
	ExtractTopicsFunc func(ctx context.Context, text string, maxTopics int) ([]string, error)

	callCount atomic.Int64
}

var _ ai.TopicExtractor = (*MockTopicExtractor)(nil)

// NewMockTopicExtractor creates a mock topic extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockTopicExtractor().
func NewMockTopicExtractor() *MockTopicExtractor {
	return &MockTopicExtractor{}
}

// ExtractTopics returns mock topics for text.
func (m *MockTopicExtractor) ExtractTopics(ctx context.Context, text string, maxTopics int) ([]string, error) {
	m.callCount.Add(1)

	if m.ExtractTopicsFunc != nil {
		return m.ExtractTopicsFunc(ctx, text, maxTopics)
	}

	topics := []string{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(topics) >= maxTopics {
			break
		}
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word != "" {
			topics = append(topics, word)
		}
	}
	return topics, nil
}

// CallCount returns the number of times ExtractTopics was called.
func (m *MockTopicExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockTopicExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractTopicsFunc = nil
}

// WithExtractTopicsFunc sets custom behavior and returns the mock for chaining.
func (m *MockTopicExtractor) WithExtractTopicsFunc(fn func(ctx context.Context, text string, maxTopics int) ([]string, error)) *MockTopicExtractor {
	m.ExtractTopicsFunc = fn
	return m
}

// MockEntityExtractor is a test double for ai.EntityExtractor.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc allows customizing the ExtractEntities behavior.
	// If nil, returns empty entity lists.
	ExtractEntitiesFunc func(ctx context.Context, text string) (core.Entities, error)

	callCount atomic.Int64
}

var _ ai.EntityExtractor = (*MockEntityExtractor)(nil)

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities returns mock entities for text.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) (core.Entities, error) {
	m.callCount.Add(1)

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}
	return core.EmptyEntities(), nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractEntitiesFunc = nil
}

// WithExtractEntitiesFunc sets custom behavior and returns the mock for chaining.
func (m *MockEntityExtractor) WithExtractEntitiesFunc(fn func(ctx context.Context, text string) (core.Entities, error)) *MockEntityExtractor {
	m.ExtractEntitiesFunc = fn
	return m
}
