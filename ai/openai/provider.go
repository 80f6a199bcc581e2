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


package openai

import (
	"log/slog"
	"net/http"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Provider implements ai.AIProvider using an OpenAI-compatible chat service.
// Both extractors share one client and one rate limiter.
type Provider struct {
	config   *ai.Config
	topics   *TopicExtractor
	entities *EntityExtractor
	logger   *slog.Logger
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	client     llms.Model
	httpClient *http.Client
	logger     *slog.Logger
}

// WithModelClient uses the given model client instead of dialing config.Host.
func WithModelClient(client llms.Model) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets the HTTP client used to reach the service.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.AIProvider, error) {
	return newProvider(config, opts...)
}

func newProvider(config *ai.Config, opts ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	client := o.client
	if client == nil {
		// Use "none" as token for local OpenAI-compatible services that don't require authentication
		clientOpts := []openai.Option{
			openai.WithBaseURL(config.Host),
			openai.WithToken(config.Token),
			openai.WithModel(config.Model),
		}
		if o.httpClient != nil {
			clientOpts = append(clientOpts, openai.WithHTTPClient(o.httpClient))
		}
		var err error
		client, err = openai.New(clientOpts...)
		if err != nil {
			return nil, err
		}
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	c := &completer{
		client:      client,
		limiter:     limiter,
		model:       config.Model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
	}

	return &Provider{
		config:   config,
		topics:   newTopicExtractor(c, o.logger),
		entities: newEntityExtractor(c, o.logger),
		logger:   o.logger.With("component", "openai-provider"),
	}, nil
}

// NewTopicExtractor creates a topic extractor using the provided configuration.
//
// Returns ai.TopicExtractor interface to enforce abstraction.
func NewTopicExtractor(config *ai.Config, opts ...Option) (ai.TopicExtractor, error) {
	p, err := newProvider(config, opts...)
	if err != nil {
		return nil, err
	}
	return p.topics, nil
}

// NewEntityExtractor creates an entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config, opts ...Option) (ai.EntityExtractor, error) {
	p, err := newProvider(config, opts...)
	if err != nil {
		return nil, err
	}
	return p.entities, nil
}

// TopicExtractor returns the topic extraction service.
func (p *Provider) TopicExtractor() ai.TopicExtractor {
	return p.topics
}

// EntityExtractor returns the entity extraction service.
func (p *Provider) EntityExtractor() ai.EntityExtractor {
	return p.entities
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
