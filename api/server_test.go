package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/feed"
	"github.com/IamLizu/news-aggregator/ingestion"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/IamLizu/news-aggregator/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	articles []*core.Article
	err      error
	query    storage.Query
}

func (f *fakeFinder) GetAllArticles(_ context.Context, q storage.Query) ([]*core.Article, error) {
	f.query = q
	return f.articles, f.err
}

type fakeIngester struct {
	articles []*core.Article
	err      error
	feedURL  string
}

func (f *fakeIngester) Execute(_ context.Context, feedURL string) ([]*core.Article, error) {
	f.feedURL = feedURL
	return f.articles, f.err
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := NewServer(&fakeFinder{}, nil)
	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetArticles_QueryParameters(t *testing.T) {
	finder := &fakeFinder{articles: []*core.Article{{
		Id:              42,
		Title:           "Rates",
		Link:            "https://example.com/rates",
		PublicationDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Source:          "https://example.com/rss",
		Topics:          []string{"economy"},
	}}}
	s := NewServer(finder, nil)

	rec := get(t, s, "/articles?keyword=economy&keyword=Fed,%20rates&fromDate=2025-05-01&toDate=2025-05-31")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, storage.Query{
		Keywords: []string{"economy", "Fed", "rates"},
		FromDate: "2025-05-01",
		ToDate:   "2025-05-31",
	}, finder.query)

	body := decode[articlesResponse](t, rec)
	require.Equal(t, 1, body.Count)
	got := body.Articles[0]
	assert.Equal(t, uint64(42), got.ID)
	assert.Equal(t, []string{"economy"}, got.Topics)
	assert.Equal(t, []string{}, got.Entities.People)
	assert.Nil(t, got.CreatedAt)
}

func TestGetArticles_EmptyResultIsArray(t *testing.T) {
	s := NewServer(&fakeFinder{articles: nil}, nil)
	rec := get(t, s, "/articles")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"articles":[]}`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid date", &storage.ValidationError{Field: storage.FieldFromDate, Value: "x"}, http.StatusBadRequest},
		{"invalid feed url", fmt.Errorf("%w: %q", ingestion.ErrInvalidFeedURL, "x"), http.StatusBadRequest},
		{"fetch failure", fmt.Errorf("%w: HTTP 404", feed.ErrFetchFailed), http.StatusBadGateway},
		{"persistence failure", fmt.Errorf("%w: disk full", storage.ErrPersistenceFailed), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeFinder{}, &fakeIngester{err: tt.err})
			rec := get(t, s, "/articles/fetch?feedUrl=https://example.com/rss")
			assert.Equal(t, tt.status, rec.Code)

			body := decode[errorResponse](t, rec)
			assert.Equal(t, tt.status, body.Error.Status)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestErrorMapping_InternalMessageHidden(t *testing.T) {
	s := NewServer(&fakeFinder{err: errors.New("secret detail")}, nil)
	rec := get(t, s, "/articles")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestFetch_MissingFeedURL(t *testing.T) {
	ingester := &fakeIngester{}
	s := NewServer(&fakeFinder{}, ingester)

	rec := get(t, s, "/articles/fetch")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing feedUrl parameter", decode[errorResponse](t, rec).Error.Message)
	assert.Empty(t, ingester.feedURL)
}

func TestFetch_Success(t *testing.T) {
	ingester := &fakeIngester{articles: []*core.Article{{Title: "a", Link: "https://example.com/a"}}}
	s := NewServer(&fakeFinder{}, ingester)

	rec := get(t, s, "/articles/fetch?feedUrl=https%3A%2F%2Fexample.com%2Frss")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/rss", ingester.feedURL)
	assert.Equal(t, 1, decode[articlesResponse](t, rec).Count)
}

func TestFetch_NotRegisteredWithoutIngester(t *testing.T) {
	s := NewServer(&fakeFinder{}, nil)
	rec := get(t, s, "/articles/fetch?feedUrl=https://example.com/rss")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetArticles_BadgerRepository(t *testing.T) {
	repo, _, backend, err := badger.NewMemoryRepositories(nil)
	require.NoError(t, err)
	defer backend.Close()

	_, err = repo.SaveArticles(context.Background(), &core.Article{
		Title:           "Cup final",
		Link:            "https://example.com/final",
		PublicationDate: time.Date(2025, 5, 2, 18, 0, 0, 0, time.UTC),
		Topics:          []string{"football"},
	})
	require.NoError(t, err)

	s := NewServer(repo, nil)

	rec := get(t, s, "/articles?keyword=FOOT")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[articlesResponse](t, rec)
	require.Equal(t, 1, body.Count)
	assert.NotNil(t, body.Articles[0].CreatedAt)

	rec = get(t, s, "/articles?fromDate=02-05-2025")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, backend.Close())
	rec = get(t, s, "/articles")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
