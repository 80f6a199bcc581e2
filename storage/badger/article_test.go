package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (storage.ArticleRepository, storage.CheckpointRepository, *Backend) {
	t.Helper()
	articles, checkpoints, backend, err := NewMemoryRepositories(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		articles.Close()
		backend.Close()
	})
	return articles, checkpoints, backend
}

func testArticle(link string, published time.Time, topics ...string) *core.Article {
	return &core.Article{
		Title:           "Article " + link,
		Link:            link,
		PublicationDate: published,
		Description:     "description",
		Source:          "https://example.com/rss",
		Topics:          topics,
		Entities:        core.EmptyEntities(),
	}
}

func links(articles []*core.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Link
	}
	return out
}

func TestSaveArticles(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	saved, err := repo.SaveArticles(ctx,
		testArticle("https://example.com/a", now),
		testArticle("https://example.com/b", now.Add(-time.Hour)))
	require.NoError(t, err)
	require.Len(t, saved, 2)

	for _, a := range saved {
		assert.Equal(t, core.IDFromContent(a.Link), a.Id)
		assert.False(t, a.CreatedAt.IsZero())
	}

	got, err := repo.GetArticle(ctx, saved[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got.Link)
	assert.True(t, now.Equal(got.PublicationDate))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveArticles_DuplicateLinks(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.SaveArticles(ctx, testArticle("https://example.com/a", now))
	require.NoError(t, err)

	// One existing link, one in-batch duplicate, one new article
	saved, err := repo.SaveArticles(ctx,
		testArticle("https://example.com/a", now),
		testArticle("https://example.com/c", now),
		testArticle("https://example.com/c", now),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/c"}, links(saved))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveArticles_InvalidSkipped(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	noDate := testArticle("https://example.com/nodate", time.Time{})
	noTitle := testArticle("https://example.com/notitle", now)
	noTitle.Title = " "

	saved, err := repo.SaveArticles(ctx, noDate, nil, noTitle, testArticle("https://example.com/ok", now))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/ok"}, links(saved))
}

func TestSaveArticles_EmptyBatch(t *testing.T) {
	repo, _, _ := newTestRepos(t)

	saved, err := repo.SaveArticles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSaveArticles_StorageClosed(t *testing.T) {
	repo, _, backend := newTestRepos(t)
	require.NoError(t, backend.Close())

	_, err := repo.SaveArticles(context.Background(), testArticle("https://example.com/a", time.Now()))
	assert.ErrorIs(t, err, storage.ErrPersistenceFailed)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestSaveArticles_ConcurrentSameLink(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	const writers = 8
	var wg sync.WaitGroup
	savedCounts := make([]int, writers)
	errs := make([]error, writers)

	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			saved, err := repo.SaveArticles(ctx, testArticle("https://example.com/race", now))
			savedCounts[i] = len(saved)
			errs[i] = err
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range writers {
		require.NoError(t, errs[i])
		total += savedCounts[i]
	}
	assert.Equal(t, 1, total)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetAllArticles_OrderAndFilters(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	day := func(d, h int) time.Time {
		return time.Date(2025, 3, d, h, 0, 0, 0, time.UTC)
	}

	fed := testArticle("https://example.com/fed", day(10, 23), "economy")
	fed.Entities.Organizations = []string{"Federal Reserve"}
	match := testArticle("https://example.com/match", day(11, 8), "football")
	match.Entities.People = []string{"Lionel Messi"}
	match.Entities.Locations = []string{"Miami"}
	early := testArticle("https://example.com/early", day(9, 0), "Economy Outlook")

	_, err := repo.SaveArticles(ctx, fed, match, early)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query storage.Query
		want  []string
	}{
		{
			name:  "no criteria, newest first",
			query: storage.Query{},
			want:  []string{match.Link, fed.Link, early.Link},
		},
		{
			name:  "keyword across topics case-insensitive",
			query: storage.Query{Keywords: []string{"ECONOMY"}},
			want:  []string{fed.Link, early.Link},
		},
		{
			name:  "keyword on people",
			query: storage.Query{Keywords: []string{"messi"}},
			want:  []string{match.Link},
		},
		{
			name:  "keyword on locations or organizations",
			query: storage.Query{Keywords: []string{"miami", "reserve"}},
			want:  []string{match.Link, fed.Link},
		},
		{
			name:  "single day inclusive",
			query: storage.Query{FromDate: "2025-03-10", ToDate: "2025-03-10"},
			want:  []string{fed.Link},
		},
		{
			name:  "from date only",
			query: storage.Query{FromDate: "2025-03-10"},
			want:  []string{match.Link, fed.Link},
		},
		{
			name:  "to date only",
			query: storage.Query{ToDate: "2025-03-10"},
			want:  []string{fed.Link, early.Link},
		},
		{
			name:  "keyword and date combined",
			query: storage.Query{Keywords: []string{"economy"}, FromDate: "2025-03-10"},
			want:  []string{fed.Link},
		},
		{
			name:  "nothing matches",
			query: storage.Query{Keywords: []string{"cricket"}},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetAllArticles(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, links(got))
		})
	}
}

func TestGetAllArticles_InvalidDate(t *testing.T) {
	repo, _, _ := newTestRepos(t)

	_, err := repo.GetAllArticles(context.Background(), storage.Query{FromDate: "03/10/2025"})
	require.Error(t, err)

	var verr *storage.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, storage.FieldFromDate, verr.Field)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = repo.GetAllArticles(context.Background(), storage.Query{ToDate: "soon"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, storage.FieldToDate, verr.Field)
}

func TestFindByTopic(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.SaveArticles(ctx,
		testArticle("https://example.com/1", now.Add(-2*time.Hour), "ai"),
		testArticle("https://example.com/2", now, "ai", "chips"),
		testArticle("https://example.com/3", now, "airlines"),
	)
	require.NoError(t, err)

	got, err := repo.FindByTopic(ctx, "ai")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/2", "https://example.com/1"}, links(got))

	got, err = repo.FindByTopic(ctx, "AI")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindByEntity(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	a := testArticle("https://example.com/1", time.Now().UTC())
	a.Entities.Locations = []string{"Paris"}
	_, err := repo.SaveArticles(ctx, a)
	require.NoError(t, err)

	got, err := repo.FindByEntity(ctx, core.EntityLocations, "Paris")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = repo.FindByEntity(ctx, core.EntityPeople, "Paris")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = repo.FindByEntity(ctx, core.EntityKind("planets"), "Mars")
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestDeleteArticles(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	saved, err := repo.SaveArticles(ctx,
		testArticle("https://example.com/1", now, "ai"),
		testArticle("https://example.com/2", now, "ai"))
	require.NoError(t, err)
	require.Len(t, saved, 2)

	deleted, err := repo.DeleteArticles(ctx, saved[0].Id, core.ID(12345))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = repo.GetArticle(ctx, saved[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byTopic, err := repo.FindByTopic(ctx, "ai")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/2"}, links(byTopic))

	// The link is free again after deletion
	again, err := repo.SaveArticles(ctx, testArticle("https://example.com/1", now))
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestCheckpoints(t *testing.T) {
	_, checkpoints, _ := newTestRepos(t)
	ctx := context.Background()

	missing, err := checkpoints.LoadCheckpoint(ctx, "https://example.com/none")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for i, feed := range []string{"https://b.example.com/rss", "https://a.example.com/rss"} {
		require.NoError(t, checkpoints.SaveCheckpoint(ctx, &core.FeedCheckpoint{
			FeedURL: feed,
			Fetched: 10 + i,
			Saved:   i,
		}))
	}

	got, err := checkpoints.LoadCheckpoint(ctx, "https://b.example.com/rss")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Fetched)
	assert.False(t, got.UpdatedAt.IsZero())

	all, err := checkpoints.ListCheckpoints(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://a.example.com/rss", all[0].FeedURL)
}

func BenchmarkSaveArticles(b *testing.B) {
	repo, _, backend, err := NewMemoryRepositories(nil)
	require.NoError(b, err)
	defer backend.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; b.Loop(); i++ {
		_, _ = repo.SaveArticles(ctx, testArticle(fmt.Sprintf("https://example.com/%d", i), now))
	}
}

func TestNewRepository_OwnsBackend(t *testing.T) {
	path := t.TempDir()
	repo, err := NewRepository(path, nil)
	require.NoError(t, err)

	_, err = repo.SaveArticles(context.Background(), testArticle("https://example.com/a", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// The directory lock is released on close
	reopened, err := NewRepository(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
