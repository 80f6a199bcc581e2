package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/dgraph-io/badger/v4"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend     *Backend
	logger      *slog.Logger
	ownsBackend bool
	now         func() time.Time
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository on a shared backend.
// Closing the repository leaves the backend open.
func NewArticleRepository(backend *Backend) *ArticleRepository {
	return &ArticleRepository{
		backend: backend,
		logger:  backend.logger.With("component", "article_repository"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewRepository opens a BadgerDB database at path and returns an article
// repository that owns it.
func NewRepository(path string, logger *slog.Logger) (storage.ArticleRepository, error) {
	backend, err := OpenBackend(path, false, logger)
	if err != nil {
		return nil, err
	}
	repo := NewArticleRepository(backend)
	repo.ownsBackend = true
	return repo, nil
}

// Close closes the backend if this repository opened it.
func (r *ArticleRepository) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// SaveArticles inserts each article in its own transaction.
func (r *ArticleRepository) SaveArticles(ctx context.Context, articles ...*core.Article) ([]*core.Article, error) {
	if r.backend.IsClosed() {
		return nil, fmt.Errorf("%w: %w", storage.ErrPersistenceFailed, storage.ErrStorageClosed)
	}

	saved := make([]*core.Article, 0, len(articles))
	var duplicates, invalid int

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return saved, fmt.Errorf("%w: %w", storage.ErrPersistenceFailed, err)
		}

		err := r.insertArticle(article)
		switch {
		case err == nil:
			saved = append(saved, article)
		case errors.Is(err, storage.ErrDuplicateKey):
			duplicates++
			r.logger.Debug("skipping duplicate article", "link", article.Link)
		case errors.Is(err, core.ErrInvalidArticle):
			invalid++
			link := ""
			if article != nil {
				link = article.Link
			}
			r.logger.Warn("skipping invalid article", "link", link, "error", err)
		default:
			return saved, fmt.Errorf("%w: %w", storage.ErrPersistenceFailed, err)
		}
	}

	r.logger.Info("saved articles",
		"received", len(articles),
		"saved", len(saved),
		"duplicates", duplicates,
		"invalid", invalid)

	return saved, nil
}

// insertArticle writes one article and its index entries.
// A concurrent insert of the same link surfaces as a commit conflict; the
// insert is retried once so the loser observes the winner's link key.
func (r *ArticleRepository) insertArticle(article *core.Article) error {
	if err := core.ValidateArticle(article); err != nil {
		return err
	}

	record := *article
	record.Title = strings.TrimSpace(record.Title)
	record.Link = strings.TrimSpace(record.Link)
	record.Description = strings.TrimSpace(record.Description)
	record.Content = strings.TrimSpace(record.Content)
	record.Id = core.IDFromContent(record.Link)
	record.CreatedAt = r.now()
	if record.Topics == nil {
		record.Topics = []string{}
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			if err := ensureAbsent(tx, makeArticleLinkKey(record.Link)); err != nil {
				return err
			}
			if err := ensureAbsent(tx, makeArticleKey(record.Id)); err != nil {
				return err
			}
			if err := writeArticle(tx, &record); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, record.Link)
	}
	if err != nil {
		return err
	}

	*article = record
	return nil
}

// ensureAbsent returns storage.ErrDuplicateKey if key exists.
func ensureAbsent(tx *badger.Txn, key []byte) error {
	_, err := tx.Get(key)
	if err == nil {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, key)
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// writeArticle stores the primary record and every index entry.
func writeArticle(tx *badger.Txn, article *core.Article) error {
	idValue := storage.MarshalID(article.Id)

	if err := tx.Set(makeArticleKey(article.Id), storage.MarshalArticle(article)); err != nil {
		return err
	}
	if err := tx.Set(makeArticleLinkKey(article.Link), idValue); err != nil {
		return err
	}
	if err := tx.Set(makeArticleDateKey(article.PublicationDate, article.Id), idValue); err != nil {
		return err
	}
	for _, key := range indexKeys(article) {
		if err := tx.Set(key, idValue); err != nil {
			return err
		}
	}
	return nil
}

// indexKeys returns the topic and entity index keys of an article.
func indexKeys(article *core.Article) [][]byte {
	var keys [][]byte
	for _, topic := range article.Topics {
		keys = append(keys, makeTopicKey(topic, article.Id))
	}
	for _, kind := range core.EntityKinds {
		for _, name := range article.Entities.Values(kind) {
			keys = append(keys, makeEntityKey(kind, name, article.Id))
		}
	}
	return keys
}

// GetAllArticles walks the date index from newest to oldest inside the
// query's date bounds and applies the keyword predicate to each article.
func (r *ArticleRepository) GetAllArticles(ctx context.Context, query storage.Query) ([]*core.Article, error) {
	filter, err := query.Compile()
	if err != nil {
		return nil, err
	}

	results := []*core.Article{}
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeLastArticleDateKey()
		if !filter.Until.IsZero() {
			startKey = makePartialArticleDateKey(filter.Until)
		}
		var lowerKey []byte
		if !filter.From.IsZero() {
			lowerKey = makePartialArticleDateKey(filter.From)
		}
		prefix := prefixBytes(articleDatePrefix)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}
			if lowerKey != nil && bytes.Compare(key, lowerKey) < 0 {
				break
			}

			article, err := r.readIndexedArticle(tx, iter.Item())
			if err != nil {
				return err
			}
			if article != nil && filter.Matches(article) {
				results = append(results, article)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrPersistenceFailed, err)
	}

	return results, nil
}

// GetArticle retrieves a single article by ID.
func (r *ArticleRepository) GetArticle(ctx context.Context, id core.ID) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readArticle(tx, makeArticleKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindByTopic returns articles carrying exactly the given topic.
func (r *ArticleRepository) FindByTopic(ctx context.Context, topic string) ([]*core.Article, error) {
	return r.scanIndex(ctx, makePartialTopicKey(topic))
}

// FindByEntity returns articles whose entity list of kind contains name.
func (r *ArticleRepository) FindByEntity(ctx context.Context, kind core.EntityKind, name string) ([]*core.Article, error) {
	if !slices.Contains(core.EntityKinds, kind) {
		return nil, &storage.ValidationError{Field: "kind", Value: string(kind)}
	}
	return r.scanIndex(ctx, makePartialEntityKey(kind, name))
}

// scanIndex loads every article referenced under prefix, newest first.
func (r *ArticleRepository) scanIndex(ctx context.Context, prefix []byte) ([]*core.Article, error) {
	results := []*core.Article{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			article, err := r.readIndexedArticle(tx, iter.Item())
			if err != nil {
				return err
			}
			if article != nil {
				results = append(results, article)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(results)
	return results, nil
}

// DeleteArticles removes articles and all their index entries.
func (r *ArticleRepository) DeleteArticles(ctx context.Context, ids ...core.ID) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeArticleKey(id)
			article, err := readArticle(tx, key)
			if err != nil {
				return err
			}
			if article == nil {
				continue
			}

			keys := append(indexKeys(article),
				makeArticleLinkKey(article.Link),
				makeArticleDateKey(article.PublicationDate, article.Id),
				key)
			for _, k := range keys {
				if err := tx.Delete(k); err != nil {
					return err
				}
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	r.logger.Info("deleted articles", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// Count returns the number of stored articles.
func (r *ArticleRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefixBytes(articlePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Helper methods

// readIndexedArticle resolves an index entry to its article.
func (r *ArticleRepository) readIndexedArticle(tx *badger.Txn, item *badger.Item) (*core.Article, error) {
	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readArticle(tx, makeArticleKey(id))
}

// readArticle reads an article from the transaction.
// Returns nil, nil if the key does not exist.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		article, unmarshalErr = storage.UnmarshalArticle(val)
		return unmarshalErr
	})
	return article, err
}

// sortNewestFirst orders articles by publication date descending, breaking
// ties by ID so results are stable.
func sortNewestFirst(articles []*core.Article) {
	slices.SortFunc(articles, func(a, b *core.Article) int {
		if c := b.PublicationDate.Compare(a.PublicationDate); c != 0 {
			return c
		}
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
}
