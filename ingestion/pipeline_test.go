package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/ai/mock"
	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/feed"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/IamLizu/news-aggregator/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubParser implements FeedParser with canned documents per URL.
type stubParser struct {
	mu       sync.Mutex
	docs     map[string]*core.FeedDocument
	failures map[string]int // remaining failures per URL; -1 fails forever
	calls    map[string]int
}

func newStubParser() *stubParser {
	return &stubParser{
		docs:     map[string]*core.FeedDocument{},
		failures: map[string]int{},
		calls:    map[string]int{},
	}
}

func (s *stubParser) Parse(ctx context.Context, feedURL string) (*core.FeedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[feedURL]++
	if n := s.failures[feedURL]; n != 0 {
		if n > 0 {
			s.failures[feedURL] = n - 1
		}
		return nil, fmt.Errorf("%w: HTTP 503", feed.ErrFetchFailed)
	}
	doc, ok := s.docs[feedURL]
	if !ok {
		return &core.FeedDocument{}, nil
	}
	return doc, nil
}

func (s *stubParser) callCount(feedURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[feedURL]
}

type fixture struct {
	articles    storage.ArticleRepository
	checkpoints storage.CheckpointRepository
	backend     *badger.Backend
	parser      *stubParser
	provider    *mock.MockProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	articles, checkpoints, backend, err := badger.NewMemoryRepositories(nil)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return &fixture{
		articles:    articles,
		checkpoints: checkpoints,
		backend:     backend,
		parser:      newStubParser(),
		provider:    mock.NewMockProviderWithServices(mock.NewMockTopicExtractor(), mock.NewMockEntityExtractor()),
	}
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(f.articles, f.parser, f.provider, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func ptr(t time.Time) *time.Time { return &t }

const feedURL = "https://example.com/rss"

func sampleDoc(n int) *core.FeedDocument {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	doc := &core.FeedDocument{Title: "Example"}
	for i := range n {
		doc.Items = append(doc.Items, core.FeedItem{
			Title:          fmt.Sprintf("Story %d", i),
			Link:           fmt.Sprintf("https://example.com/story/%d", i),
			PubDate:        ptr(base.Add(time.Duration(i) * time.Hour)),
			ContentSnippet: fmt.Sprintf("Snippet %d", i),
		})
	}
	return doc
}

func TestNewPipeline(t *testing.T) {
	f := newFixture(t)

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(f.articles, f.parser, f.provider)
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, DefaultMaxTopics, p.maxTopics)
		assert.Equal(t, DefaultEnrichTimeout, p.enrichTimeout)
		assert.Equal(t, DefaultPoolSize, p.pool.Cap())
	})

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(f.articles, f.parser, f.provider,
			WithPoolSize(2), WithMaxTopics(3), WithStrictTopics(true), WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 2, p.pool.Cap())
		assert.Equal(t, 3, p.maxTopics)
		assert.True(t, p.strictTopics)
	})

	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewPipeline(nil, f.parser, f.provider)
		assert.Equal(t, ErrArticleRepositoryRequired, err)
		_, err = NewPipeline(f.articles, nil, f.provider)
		assert.Equal(t, ErrFeedParserRequired, err)
		_, err = NewPipeline(f.articles, f.parser, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewPipeline(f.articles, f.parser, f.provider, WithFetchRetry(0, time.Millisecond))
		assert.Equal(t, ErrInvalidMaxAttempts, err)
		_, err = NewPipeline(f.articles, f.parser, f.provider, WithMaxTopics(-1))
		assert.Error(t, err)
		_, err = NewPipeline(f.articles, f.parser, f.provider, WithEnrichTimeout(-time.Second))
		assert.Error(t, err)
	})
}

func TestExecute_InvalidURL(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	for _, url := range []string{"", "not a url", "ftp://example.com/rss", "https://"} {
		t.Run(url, func(t *testing.T) {
			articles, err := p.Execute(context.Background(), url)
			assert.ErrorIs(t, err, ErrInvalidFeedURL)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
			assert.Nil(t, articles)
			assert.Equal(t, 0, f.parser.callCount(url))
		})
	}
}

func TestExecute_FetchFailure(t *testing.T) {
	f := newFixture(t)
	f.parser.failures[feedURL] = -1
	p := f.pipeline(t)

	_, err := p.Execute(context.Background(), feedURL)
	assert.ErrorIs(t, err, feed.ErrFetchFailed)
	assert.Equal(t, 1, f.parser.callCount(feedURL))
	assert.Equal(t, 0, f.provider.GetMockTopicExtractor().CallCount())
}

func TestExecute_FetchRetry(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(1)
	f.parser.failures[feedURL] = 2
	p := f.pipeline(t, WithFetchRetry(3, time.Millisecond))

	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.Equal(t, 3, f.parser.callCount(feedURL))
}

func TestExecute_EmptyFeed(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, WithCheckpoints(f.checkpoints))

	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)

	count, err := f.articles.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, f.provider.GetMockTopicExtractor().CallCount())

	cp, err := f.checkpoints.LoadCheckpoint(context.Background(), feedURL)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 0, cp.Fetched)
}

func TestExecute_MapsEnrichesAndPersists(t *testing.T) {
	f := newFixture(t)
	published := time.Date(2025, 5, 2, 7, 0, 0, 0, time.UTC)
	iso := time.Date(2025, 5, 3, 7, 0, 0, 0, time.UTC)
	f.parser.docs[feedURL] = &core.FeedDocument{Items: []core.FeedItem{
		{
			Title:          "Fed holds rates",
			Link:           "https://example.com/fed",
			PubDate:        &published,
			ISODate:        &iso,
			ContentSnippet: "snippet",
			Description:    "<p>description</p>",
			Content:        "Full content here",
		},
		{
			Title:       "ISO dated",
			Link:        "https://example.com/iso",
			ISODate:     &iso,
			Description: "only description",
		},
	}}

	var texts sync.Map
	f.provider.GetMockEntityExtractor().WithExtractEntitiesFunc(func(_ context.Context, text string) (core.Entities, error) {
		texts.Store(text, true)
		return core.Entities{Organizations: []string{"Federal Reserve"}}, nil
	})

	p := f.pipeline(t, WithMaxTopics(2), WithCheckpoints(f.checkpoints))
	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	fed := articles[0]
	assert.Equal(t, "Fed holds rates", fed.Title)
	assert.True(t, published.Equal(fed.PublicationDate))
	assert.Equal(t, "snippet", fed.Description)
	assert.Equal(t, "Full content here", fed.Content)
	assert.Equal(t, feedURL, fed.Source)
	assert.Equal(t, []string{"fed", "holds"}, fed.Topics)
	assert.Equal(t, []string{"Federal Reserve"}, fed.Entities.Organizations)
	assert.Equal(t, []string{}, fed.Entities.People)

	isoDated := articles[1]
	assert.True(t, iso.Equal(isoDated.PublicationDate))
	assert.Equal(t, "only description", isoDated.Description)

	_, ok := texts.Load("Fed holds rates\n\nFull content here")
	assert.True(t, ok)
	_, ok = texts.Load("ISO dated\n\nonly description")
	assert.True(t, ok)

	stored, err := f.articles.GetAllArticles(context.Background(), storage.Query{Keywords: []string{"federal"}})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	cp, err := f.checkpoints.LoadCheckpoint(context.Background(), feedURL)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.Fetched)
	assert.Equal(t, 2, cp.Saved)
}

func TestExecute_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(3)
	p := f.pipeline(t)
	ctx := context.Background()

	first, err := p.Execute(ctx, feedURL)
	require.NoError(t, err)
	second, err := p.Execute(ctx, feedURL)
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Len(t, second, 3)

	count, err := f.articles.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestExecute_InvalidItemsSkippedByStore(t *testing.T) {
	f := newFixture(t)
	doc := sampleDoc(2)
	doc.Items[0].PubDate = nil
	f.parser.docs[feedURL] = doc
	p := f.pipeline(t)

	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	assert.Len(t, articles, 2)

	count, err := f.articles.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecute_EnrichmentFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(3)
	f.provider.GetMockTopicExtractor().WithExtractTopicsFunc(func(_ context.Context, text string, _ int) ([]string, error) {
		if text == "Story 1\n\nSnippet 1" {
			return nil, ai.ErrEnrichmentFailed
		}
		return []string{"news"}, nil
	})
	f.provider.GetMockEntityExtractor().WithExtractEntitiesFunc(func(_ context.Context, text string) (core.Entities, error) {
		if text == "Story 2\n\nSnippet 2" {
			return core.Entities{}, context.DeadlineExceeded
		}
		return core.Entities{People: []string{"Ada Lovelace"}}, nil
	})
	p := f.pipeline(t)

	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, []string{"news"}, articles[0].Topics)
	assert.Equal(t, []string{}, articles[1].Topics)
	assert.Equal(t, []string{"Ada Lovelace"}, articles[1].Entities.People)
	assert.Equal(t, core.EmptyEntities(), articles[2].Entities)

	count, err := f.articles.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.Equal(t, 3, f.provider.GetMockTopicExtractor().CallCount())
	assert.Equal(t, 3, f.provider.GetMockEntityExtractor().CallCount())
}

func TestExecute_StrictTopicsDrops(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(3)
	f.provider.GetMockTopicExtractor().WithExtractTopicsFunc(func(_ context.Context, text string, _ int) ([]string, error) {
		if text == "Story 0\n\nSnippet 0" {
			return nil, ai.ErrEnrichmentFailed
		}
		return []string{"news"}, nil
	})
	p := f.pipeline(t, WithStrictTopics(true))

	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "https://example.com/story/1", articles[0].Link)

	count, err := f.articles.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestExecute_EnrichTimeout(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(1)
	f.provider.GetMockTopicExtractor().WithExtractTopicsFunc(func(ctx context.Context, _ string, _ int) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := f.pipeline(t, WithEnrichTimeout(20*time.Millisecond))

	start := time.Now()
	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Empty(t, articles[0].Topics)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExecute_BoundedConcurrency(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(12)

	var active, peak atomic.Int32
	f.provider.GetMockTopicExtractor().WithExtractTopicsFunc(func(_ context.Context, _ string, _ int) ([]string, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return []string{"news"}, nil
	})
	p := f.pipeline(t, WithPoolSize(3))

	articles, err := p.Execute(context.Background(), feedURL)
	require.NoError(t, err)
	assert.Len(t, articles, 12)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestExecute_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(2)
	p := f.pipeline(t)
	require.NoError(t, f.backend.Close())

	_, err := p.Execute(context.Background(), feedURL)
	assert.ErrorIs(t, err, storage.ErrPersistenceFailed)
}

func TestExecute_ContextCanceled(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(2)
	p := f.pipeline(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.provider.GetMockTopicExtractor().WithExtractTopicsFunc(func(context.Context, string, int) ([]string, error) {
		cancel()
		return []string{"news"}, nil
	})

	_, err := p.Execute(ctx, feedURL)
	assert.ErrorIs(t, err, context.Canceled)

	count, err := f.articles.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestExecute_AfterRelease(t *testing.T) {
	f := newFixture(t)
	f.parser.docs[feedURL] = sampleDoc(1)
	p, err := NewPipeline(f.articles, f.parser, f.provider)
	require.NoError(t, err)
	p.Release()

	_, err = p.Execute(context.Background(), feedURL)
	assert.True(t, errors.Is(err, ErrPipelineReleased))
}
