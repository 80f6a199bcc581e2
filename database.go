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


package newsaggregator

import (
	"errors"
	"log/slog"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/ai/heuristic"
	"github.com/IamLizu/news-aggregator/ai/openai"
	"github.com/IamLizu/news-aggregator/api"
	"github.com/IamLizu/news-aggregator/feed"
	"github.com/IamLizu/news-aggregator/ingestion"
	"github.com/IamLizu/news-aggregator/search"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/IamLizu/news-aggregator/storage/badger"
)

const gcDiscardRatio = 0.5

// Database bundles the article store with the enrichment provider and
// builds the components that operate on them.
type Database struct {
	backend     *badger.Backend
	articles    *badger.ArticleRepository
	checkpoints *badger.CheckpointRepository
	provider    ai.AIProvider
	feedOpts    []feed.Option
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	feedOpts []feed.Option
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the enrichment configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithFeedOptions configures the feed adapter used by ingestion pipelines.
func WithFeedOptions(opts ...feed.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.feedOpts = append(o.feedOpts, opts...)
	}
}

// WithInMemory keeps all data in memory. The file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// Open opens the article store at filePath and prepares the enrichment provider.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewProvider(options.aiConfig, options.logger)
		if err != nil {
			return nil, err
		}
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory, options.logger)
	if err != nil {
		provider.Close()
		return nil, err
	}

	feedOpts := append([]feed.Option{feed.WithLogger(options.logger)}, options.feedOpts...)

	return &Database{
		backend:     backend,
		articles:    badger.NewArticleRepository(backend),
		checkpoints: badger.NewCheckpointRepository(backend),
		provider:    provider,
		feedOpts:    feedOpts,
		logger:      options.logger,
	}, nil
}

// NewProvider builds the enrichment provider selected by cfg. Each capability
// uses either the local heuristics or the configured chat model; the model
// client is only created when at least one capability needs it.
func NewProvider(cfg *ai.Config, logger *slog.Logger) (ai.AIProvider, error) {
	if cfg == nil {
		cfg = ai.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	local := heuristic.NewProvider()
	if !cfg.UsesLLM() {
		return local, nil
	}

	llm, err := openai.NewProvider(cfg, openai.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	topics := local.TopicExtractor()
	if cfg.TopicStrategy == ai.StrategyLLM {
		topics = llm.TopicExtractor()
	}
	entities := local.EntityExtractor()
	if cfg.EntityStrategy == ai.StrategyLLM {
		entities = llm.EntityExtractor()
	}
	return ai.Compose(topics, entities, llm, local), nil
}

// Close releases the provider and the store.
func (db *Database) Close() error {
	var errs []error

	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CollectGarbage reclaims space left behind by deleted articles.
func (db *Database) CollectGarbage() error {
	return db.backend.CollectGarbage(gcDiscardRatio)
}

func (db *Database) ArticleRepository() storage.ArticleRepository {
	return db.articles
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpoints
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewIngestionPipeline creates a pipeline that fetches with the configured
// feed adapter and records per-feed checkpoints.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	defaults := []ingestion.Option{
		ingestion.WithLogger(db.logger),
		ingestion.WithCheckpoints(db.checkpoints),
	}
	return ingestion.NewPipeline(db.articles, feed.NewAdapter(db.feedOpts...), db.provider, append(defaults, opts...)...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.articles, append([]search.Option{search.WithLogger(db.logger)}, opts...)...)
}

// NewServer creates the HTTP facade. A nil pipeline disables the fetch route.
func (db *Database) NewServer(pipeline *ingestion.Pipeline, opts ...api.Option) *api.Server {
	opts = append([]api.Option{api.WithLogger(db.logger)}, opts...)
	if pipeline == nil {
		return api.NewServer(db.articles, nil, opts...)
	}
	return api.NewServer(db.articles, pipeline, opts...)
}
