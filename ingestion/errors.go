package ingestion

import (
	"errors"
	"fmt"

	"github.com/IamLizu/news-aggregator/core"
)

var (
	// ErrArticleRepositoryRequired is returned when an article repository is not provided.
	ErrArticleRepositoryRequired = errors.New("article repository required")

	// ErrFeedParserRequired is returned when a feed parser is not provided.
	ErrFeedParserRequired = errors.New("feed parser required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidFeedURL is returned when a feed URL is not an absolute http(s) URL.
	ErrInvalidFeedURL = fmt.Errorf("%w: invalid feed URL", core.ErrInvalidInput)

	// ErrInvalidMaxAttempts is returned when a retry is configured with fewer than one attempt.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrPipelineReleased is returned when work is submitted after Release.
	ErrPipelineReleased = errors.New("pipeline released")
)
