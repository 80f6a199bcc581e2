package search

import (
	"context"
	"log/slog"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/storage"
)

// Searcher answers article retrieval requests on top of an ArticleRepository.
type Searcher struct {
	repository storage.ArticleRepository
	maxResults int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMaxResults caps the number of articles returned.
// Default is 0, meaning unlimited.
func WithMaxResults(n int) Option {
	return func(s *Searcher) error {
		if n < 0 {
			return ErrInvalidMaxResults
		}
		s.maxResults = n
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.ArticleRepository, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrArticleRepositoryRequired
	}

	s := &Searcher{
		repository: repository,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Find returns articles matching the query, newest first.
func (s *Searcher) Find(ctx context.Context, query storage.Query) ([]*core.Article, error) {
	return s.FindWithMonitor(ctx, query, nil)
}

// FindWithMonitor is Find with callbacks at each stage of the retrieval.
func (s *Searcher) FindWithMonitor(ctx context.Context, query storage.Query, monitor SearchMonitor) (results []*core.Article, err error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)
	defer func() { monitor.Finish(results, err) }()

	articles, err := s.repository.GetAllArticles(ctx, query)
	if err != nil {
		s.logger.Error("error retrieving articles",
			"keywords", query.Keywords,
			"fromDate", query.FromDate,
			"toDate", query.ToDate,
			"err", err)
		return nil, err
	}
	monitor.AfterRetrieval(articles)

	if s.maxResults > 0 && len(articles) > s.maxResults {
		monitor.Truncated(len(articles), s.maxResults)
		articles = articles[:s.maxResults]
	}

	s.logger.Debug("retrieved articles", "count", len(articles))
	return articles, nil
}

// FindText derives keywords from free text and runs Find with them.
func (s *Searcher) FindText(ctx context.Context, text, fromDate, toDate string) ([]*core.Article, error) {
	return s.Find(ctx, storage.Query{
		Keywords: KeywordsFromText(text),
		FromDate: fromDate,
		ToDate:   toDate,
	})
}

// FindByTopic returns articles tagged with exactly topic.
func (s *Searcher) FindByTopic(ctx context.Context, topic string) ([]*core.Article, error) {
	articles, err := s.repository.FindByTopic(ctx, topic)
	if err != nil {
		s.logger.Error("error retrieving articles by topic", "topic", topic, "err", err)
		return nil, err
	}
	return s.limit(articles), nil
}

// FindByEntity returns articles naming exactly the given entity.
func (s *Searcher) FindByEntity(ctx context.Context, kind core.EntityKind, name string) ([]*core.Article, error) {
	articles, err := s.repository.FindByEntity(ctx, kind, name)
	if err != nil {
		s.logger.Error("error retrieving articles by entity", "kind", kind, "name", name, "err", err)
		return nil, err
	}
	return s.limit(articles), nil
}

func (s *Searcher) limit(articles []*core.Article) []*core.Article {
	if s.maxResults > 0 && len(articles) > s.maxResults {
		return articles[:s.maxResults]
	}
	return articles
}
