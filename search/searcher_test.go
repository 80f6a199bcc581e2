package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/IamLizu/news-aggregator/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) storage.ArticleRepository {
	t.Helper()
	repo, _, backend, err := badger.NewMemoryRepositories(nil)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return repo
}

func seed(t *testing.T, repo storage.ArticleRepository) {
	t.Helper()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	articles := []*core.Article{
		{
			Title:           "Central bank raises rates",
			Link:            "https://example.com/rates",
			PublicationDate: base,
			Topics:          []string{"economy", "interest rates"},
			Entities: core.Entities{
				Organizations: []string{"Federal Reserve"},
			},
		},
		{
			Title:           "Cup final tonight",
			Link:            "https://example.com/final",
			PublicationDate: base.Add(24 * time.Hour),
			Topics:          []string{"football"},
			Entities: core.Entities{
				Locations: []string{"London"},
			},
		},
		{
			Title:           "Markets rally",
			Link:            "https://example.com/markets",
			PublicationDate: base.Add(48 * time.Hour),
			Topics:          []string{"economy", "markets"},
		},
	}
	_, err := repo.SaveArticles(context.Background(), articles...)
	require.NoError(t, err)
}

type recordingMonitor struct {
	started   bool
	retrieved int
	truncated bool
	finished  []*core.Article
	finishErr error
}

func (m *recordingMonitor) Start(_ storage.Query)                   { m.started = true }
func (m *recordingMonitor) AfterRetrieval(articles []*core.Article) { m.retrieved = len(articles) }
func (m *recordingMonitor) Truncated(_, _ int)                      { m.truncated = true }
func (m *recordingMonitor) Finish(results []*core.Article, err error) {
	m.finished = results
	m.finishErr = err
}

func TestNewSearcher(t *testing.T) {
	repo := newRepo(t)

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(repo)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(repo, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(repo, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewSearcher(nil)
		assert.Equal(t, ErrArticleRepositoryRequired, err)
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := NewSearcher(repo, WithMaxResults(-1))
		assert.Equal(t, ErrInvalidMaxResults, err)
	})
}

func TestFind_EmptyDatabase(t *testing.T) {
	searcher, err := NewSearcher(newRepo(t))
	require.NoError(t, err)

	results, err := searcher.Find(context.Background(), storage.Query{Keywords: []string{"economy"}})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFind(t *testing.T) {
	repo := newRepo(t)
	seed(t, repo)
	searcher, err := NewSearcher(repo)
	require.NoError(t, err)
	ctx := context.Background()

	results, err := searcher.Find(ctx, storage.Query{Keywords: []string{"economy"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://example.com/markets", results[0].Link)
	assert.Equal(t, "https://example.com/rates", results[1].Link)

	results, err = searcher.Find(ctx, storage.Query{FromDate: "2025-05-02", ToDate: "2025-05-02"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/final", results[0].Link)
}

func TestFind_InvalidDate(t *testing.T) {
	searcher, err := NewSearcher(newRepo(t))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.FindWithMonitor(context.Background(), storage.Query{ToDate: "tomorrow"}, monitor)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.True(t, monitor.started)
	assert.ErrorIs(t, monitor.finishErr, storage.ErrInvalidQuery)
}

func TestFindWithMonitor_Truncation(t *testing.T) {
	repo := newRepo(t)
	seed(t, repo)
	searcher, err := NewSearcher(repo, WithMaxResults(2))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.FindWithMonitor(context.Background(), storage.Query{}, monitor)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, 3, monitor.retrieved)
	assert.True(t, monitor.truncated)
	assert.Len(t, monitor.finished, 2)
}

func TestFindText(t *testing.T) {
	repo := newRepo(t)
	seed(t, repo)
	searcher, err := NewSearcher(repo)
	require.NoError(t, err)

	results, err := searcher.FindText(context.Background(), "news about the Federal Reserve", "", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/rates", results[0].Link)
}

func TestFindByTopicAndEntity(t *testing.T) {
	repo := newRepo(t)
	seed(t, repo)
	searcher, err := NewSearcher(repo, WithMaxResults(1))
	require.NoError(t, err)
	ctx := context.Background()

	byTopic, err := searcher.FindByTopic(ctx, "economy")
	require.NoError(t, err)
	require.Len(t, byTopic, 1)
	assert.Equal(t, "https://example.com/markets", byTopic[0].Link)

	byEntity, err := searcher.FindByEntity(ctx, core.EntityLocations, "London")
	require.NoError(t, err)
	require.Len(t, byEntity, 1)
	assert.Equal(t, "https://example.com/final", byEntity[0].Link)
}

func TestKeywordsFromText(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"", []string{}},
		{"the and of", []string{}},
		{"Climate, climate CHANGE!", []string{"climate", "change"}},
		{"news about (Elon Musk)", []string{"elon", "musk"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordsFromText(tt.text))
		})
	}
}
