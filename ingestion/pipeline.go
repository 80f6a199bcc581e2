package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultPoolSize is the number of articles enriched concurrently.
	DefaultPoolSize = 5

	// DefaultEnrichTimeout bounds the enrichment of a single article.
	DefaultEnrichTimeout = 60 * time.Second

	// DefaultMaxTopics is the number of topics requested per article.
	DefaultMaxTopics = 5
)

// FeedParser fetches a feed and returns its items.
type FeedParser interface {
	Parse(ctx context.Context, feedURL string) (*core.FeedDocument, error)
}

// Pipeline orchestrates the ingestion and enrichment of feed articles.
type Pipeline struct {
	articles       storage.ArticleRepository
	checkpoints    storage.CheckpointRepository
	parser         FeedParser
	topics         ai.TopicExtractor
	entities       ai.EntityExtractor
	pool           *ants.Pool
	maxTopics      int
	strictTopics   bool
	enrichTimeout  time.Duration
	fetchAttempts  int
	fetchBaseDelay time.Duration
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent enrichment.
// Default is DefaultPoolSize, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxTopics sets the number of topics requested per article.
func WithMaxTopics(n int) Option {
	return func(p *Pipeline) error {
		if n < 0 {
			return fmt.Errorf("max topics must not be negative: %d", n)
		}
		p.maxTopics = n
		return nil
	}
}

// WithStrictTopics drops articles whose topic extraction fails instead of
// keeping them with empty topics.
func WithStrictTopics(strict bool) Option {
	return func(p *Pipeline) error {
		p.strictTopics = strict
		return nil
	}
}

// WithEnrichTimeout bounds the enrichment of each article.
// Zero disables the per-article timeout.
func WithEnrichTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout < 0 {
			return fmt.Errorf("enrich timeout must not be negative: %s", timeout)
		}
		p.enrichTimeout = timeout
		return nil
	}
}

// WithFetchRetry retries failed fetches with exponential backoff.
// Default is a single attempt.
func WithFetchRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.fetchAttempts = attempts
		p.fetchBaseDelay = baseDelay
		return nil
	}
}

// WithCheckpoints records per-feed statistics after every successful run.
func WithCheckpoints(checkpoints storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = checkpoints
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	articles storage.ArticleRepository,
	parser FeedParser,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if articles == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if parser == nil {
		return nil, ErrFeedParserRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		articles:      articles,
		parser:        parser,
		topics:        provider.TopicExtractor(),
		entities:      provider.EntityExtractor(),
		pool:          pool,
		maxTopics:     DefaultMaxTopics,
		enrichTimeout: DefaultEnrichTimeout,
		fetchAttempts: 1,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// runStats counts what happened to a feed's items.
type runStats struct {
	fetched  int
	enriched int
	degraded int
	dropped  int
	saved    int
}

// Execute fetches feedURL, enriches its items and persists the new ones.
// It returns every enriched article of the batch, including those the
// repository already held.
func (p *Pipeline) Execute(ctx context.Context, feedURL string) ([]*core.Article, error) {
	articles, _, err := p.run(ctx, feedURL)
	return articles, err
}

func (p *Pipeline) run(ctx context.Context, feedURL string) ([]*core.Article, runStats, error) {
	var stats runStats

	if !core.IsValidURL(feedURL) {
		return nil, stats, fmt.Errorf("%w: %q", ErrInvalidFeedURL, feedURL)
	}

	logger := p.logger.With("feed", feedURL)
	logger.Info("fetching feed")

	var doc *core.FeedDocument
	err := retryWithBackoff(ctx, logger, func() error {
		var err error
		doc, err = p.parser.Parse(ctx, feedURL)
		return err
	}, p.fetchAttempts, p.fetchBaseDelay)
	if err != nil {
		logger.Error("failed to fetch feed", "err", err)
		return nil, stats, err
	}

	stats.fetched = len(doc.Items)
	if stats.fetched == 0 {
		logger.Info("feed has no items")
		p.saveCheckpoint(ctx, feedURL, stats)
		return []*core.Article{}, stats, nil
	}

	articles := make([]*core.Article, len(doc.Items))
	for i, item := range doc.Items {
		articles[i] = core.ArticleFromFeedItem(item, feedURL)
	}

	enriched, err := p.enrich(ctx, articles, &stats)
	if err != nil {
		return nil, stats, err
	}

	saved, err := p.articles.SaveArticles(ctx, enriched...)
	if err != nil {
		logger.Error("failed to save articles", "err", err)
		return nil, stats, err
	}
	stats.saved = len(saved)

	logger.Info("feed ingested",
		"fetched", stats.fetched,
		"enriched", stats.enriched,
		"degraded", stats.degraded,
		"dropped", stats.dropped,
		"saved", stats.saved)

	p.saveCheckpoint(ctx, feedURL, stats)
	return enriched, stats, nil
}

// saveCheckpoint records feed statistics. Failures are logged only.
func (p *Pipeline) saveCheckpoint(ctx context.Context, feedURL string, stats runStats) {
	if p.checkpoints == nil {
		return
	}
	err := p.checkpoints.SaveCheckpoint(ctx, &core.FeedCheckpoint{
		FeedURL: feedURL,
		Fetched: stats.fetched,
		Saved:   stats.saved,
	})
	if err != nil {
		p.logger.Warn("failed to save feed checkpoint", "feed", feedURL, "err", err)
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
