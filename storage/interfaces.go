package storage

import (
	"context"

	"github.com/IamLizu/news-aggregator/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// ArticleRepository provides operations for managing articles.
type ArticleRepository interface {
	Repository

	// SaveArticles inserts articles as an unordered batch.
	// Articles whose link already exists, and articles failing validation,
	// are skipped and logged; they never fail the batch.
	// Sets Id and CreatedAt on every persisted article.
	// Returns only the newly persisted articles.
	// Returns ErrPersistenceFailed if the store cannot be written at all.
	SaveArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error)

	// GetAllArticles returns articles matching the query, ordered by
	// PublicationDate descending.
	// Returns a *ValidationError if a date in the query cannot be parsed.
	GetAllArticles(ctx context.Context, query Query) ([]*core.Article, error)

	// GetArticle retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id core.ID) (*core.Article, error)

	// FindByTopic returns articles tagged with exactly the given topic,
	// newest first.
	FindByTopic(ctx context.Context, topic string) ([]*core.Article, error)

	// FindByEntity returns articles whose entity list of the given kind
	// contains exactly name, newest first.
	FindByEntity(ctx context.Context, kind core.EntityKind, name string) ([]*core.Article, error)

	// DeleteArticles removes articles and their index entries by ID.
	// Missing IDs are ignored. Returns the number of articles removed.
	DeleteArticles(ctx context.Context, ids ...core.ID) (int, error)

	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)
}

// CheckpointRepository tracks per-feed ingestion state.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint for checkpoint.FeedURL,
	// replacing any previous one. Sets UpdatedAt.
	SaveCheckpoint(ctx context.Context, checkpoint *core.FeedCheckpoint) error

	// LoadCheckpoint returns the checkpoint for a feed.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, feedURL string) (*core.FeedCheckpoint, error)

	// ListCheckpoints returns all checkpoints ordered by feed URL.
	ListCheckpoints(ctx context.Context) ([]*core.FeedCheckpoint, error)
}
