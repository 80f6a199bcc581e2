// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import (
	"sync/atomic"

	"github.com/IamLizu/news-aggregator/ai"
)

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock topic and entity extractor instances.
type MockProvider struct {
	topics   *MockTopicExtractor
	entities *MockEntityExtractor
	closed   atomic.Bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockTopicExtractor()/GetMockEntityExtractor() to access concrete types
// for test assertions.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockTopicExtractor(), NewMockEntityExtractor())
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(topics *MockTopicExtractor, entities *MockEntityExtractor) *MockProvider {
	return &MockProvider{
		topics:   topics,
		entities: entities,
	}
}

// TopicExtractor returns the mock topic extractor.
func (p *MockProvider) TopicExtractor() ai.TopicExtractor {
	return p.topics
}

// EntityExtractor returns the mock entity extractor.
func (p *MockProvider) EntityExtractor() ai.EntityExtractor {
	return p.entities
}

// Close records that the provider was closed.
func (p *MockProvider) Close() error {
	p.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed.Load()
}

// GetMockTopicExtractor returns the underlying mock topic extractor for test assertions.
func (p *MockProvider) GetMockTopicExtractor() *MockTopicExtractor {
	return p.topics
}

// GetMockEntityExtractor returns the underlying mock entity extractor for test assertions.
func (p *MockProvider) GetMockEntityExtractor() *MockEntityExtractor {
	return p.entities
}
