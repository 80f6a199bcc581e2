package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/feed"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ArticleFinder retrieves stored articles.
type ArticleFinder interface {
	GetAllArticles(ctx context.Context, query storage.Query) ([]*core.Article, error)
}

// FeedIngester runs one feed through the ingestion pipeline.
type FeedIngester interface {
	Execute(ctx context.Context, feedURL string) ([]*core.Article, error)
}

// Server is the HTTP facade.
type Server struct {
	echo     *echo.Echo
	articles ArticleFinder
	ingester FeedIngester
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates the HTTP facade. ingester may be nil, in which case the
// fetch route is not registered.
func NewServer(articles ArticleFinder, ingester FeedIngester, opts ...Option) *Server {
	s := &Server{
		echo:     echo.New(),
		articles: articles,
		ingester: ingester,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "err", v.Error)...)
				return nil
			}
			s.logger.Debug("request", attrs...)
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	articles := s.echo.Group("/articles")
	articles.GET("", s.handleGetArticles)
	if s.ingester != nil {
		articles.GET("/fetch", s.handleFetch)
	}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", "addr", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGetArticles(c echo.Context) error {
	params := c.QueryParams()

	var keywords []string
	for _, kw := range params["keyword"] {
		// Accept both repeated and comma-separated keywords
		for part := range strings.SplitSeq(kw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				keywords = append(keywords, part)
			}
		}
	}

	query := storage.Query{
		Keywords: keywords,
		FromDate: params.Get("fromDate"),
		ToDate:   params.Get("toDate"),
	}

	articles, err := s.articles.GetAllArticles(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticlesResponse(articles))
}

func (s *Server) handleFetch(c echo.Context) error {
	feedURL := strings.TrimSpace(c.QueryParam("feedUrl"))
	if feedURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing feedUrl parameter")
	}

	articles, err := s.ingester.Execute(c.Request().Context(), feedURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArticlesResponse(articles))
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, feed.ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrPersistenceFailed), errors.Is(err, storage.ErrStorageClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes every handler error as a JSON error body.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusFor(err)
	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("unhandled error", "uri", c.Request().RequestURI, "err", err)
		message = http.StatusText(status)
	}

	if writeErr := c.JSON(status, errorResponse{Error: errorBody{Message: message, Status: status}}); writeErr != nil {
		s.logger.Error("failed to write error response", "err", writeErr)
	}
}
