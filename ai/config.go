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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how a capability is implemented.
type Strategy string

const (
	// StrategyHeuristic uses local, deterministic rules with no I/O.
	StrategyHeuristic Strategy = "heuristic"
	// StrategyLLM calls an OpenAI-compatible chat model.
	StrategyLLM Strategy = "llm"
)

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case StrategyHeuristic, StrategyLLM:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Config holds configuration for enrichment providers.
type Config struct {
	// Host is the base URL of the OpenAI-compatible chat API.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// Model is the chat model identifier used for extraction.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token is sent as the API bearer token.
	// Local OpenAI-compatible services accept any value.
	Token string

	// MaxTokens bounds the length of each model response.
	// Default: 200
	MaxTokens int

	// Temperature is the sampling temperature for model requests.
	// Default: 0
	Temperature float64

	// MaxTopics is the number of topics requested per article.
	// Default: 5
	MaxTopics int

	// RequestsPerSecond limits model requests across all extractors.
	// Zero disables rate limiting.
	RequestsPerSecond float64

	// TopicStrategy selects the topic extractor.
	// Default: heuristic
	TopicStrategy Strategy

	// EntityStrategy selects the entity extractor.
	// Default: llm
	EntityStrategy Strategy
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the chat service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the chat model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithMaxTokens sets the per-response token limit.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithMaxTopics sets the number of topics extracted per article.
func WithMaxTopics(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTopics = n
	}
}

// WithRequestsPerSecond sets the model request rate limit.
func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// WithTopicStrategy selects the topic extractor implementation.
func WithTopicStrategy(s Strategy) ConfigOption {
	return func(c *Config) {
		c.TopicStrategy = s
	}
}

// WithEntityStrategy selects the entity extractor implementation.
func WithEntityStrategy(s Strategy) ConfigOption {
	return func(c *Config) {
		c.EntityStrategy = s
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		Model:          "qwen2.5:3b",
		Token:          "none",
		MaxTokens:      200,
		Temperature:    0,
		MaxTopics:      5,
		TopicStrategy:  StrategyHeuristic,
		EntityStrategy: StrategyLLM,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434"),
//	    WithModel("gpt-4o-mini"),
//	    WithTopicStrategy(StrategyLLM),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// UsesLLM reports whether any capability is configured to call the model.
func (c *Config) UsesLLM() bool {
	return c.TopicStrategy == StrategyLLM || c.EntityStrategy == StrategyLLM
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if _, err := ParseStrategy(string(c.TopicStrategy)); err != nil {
		return fmt.Errorf("ai config: TopicStrategy: %w", err)
	}
	if _, err := ParseStrategy(string(c.EntityStrategy)); err != nil {
		return fmt.Errorf("ai config: EntityStrategy: %w", err)
	}
	if c.MaxTopics < 1 {
		return errors.New("ai config: MaxTopics must be at least 1")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("ai config: RequestsPerSecond must not be negative")
	}

	if !c.UsesLLM() {
		return nil
	}
	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.MaxTokens < 1 {
		return errors.New("ai config: MaxTokens must be at least 1")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	return nil
}
