package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// BatchResult summarizes a multi-feed run.
type BatchResult struct {
	Feeds     int
	Succeeded int
	Failed    int
	Articles  int // enriched articles returned across all feeds
	Saved     int // articles newly persisted
	Errors    []error
}

// Err joins the per-feed errors, or returns nil if every feed succeeded.
func (r BatchResult) Err() error {
	return errors.Join(r.Errors...)
}

// ExecuteAll runs Execute for each feed in order. A failing feed is logged
// and recorded in the result without stopping the batch. Progress is written
// to progress when it is non-nil. Cancelling ctx stops before the next feed.
func (p *Pipeline) ExecuteAll(ctx context.Context, feedURLs []string, progress io.Writer) BatchResult {
	result := BatchResult{Feeds: len(feedURLs)}

	tracker := NewProgressTracker(progress, len(feedURLs))
	tracker.Start()

	for _, feedURL := range feedURLs {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		articles, stats, err := p.run(ctx, feedURL)
		if err != nil {
			p.logger.Error("feed failed", "feed", feedURL, "err", err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", feedURL, err))
			tracker.FeedDone(0, true)
			continue
		}

		result.Succeeded++
		result.Articles += len(articles)
		result.Saved += stats.saved
		tracker.FeedDone(len(articles), false)
	}

	tracker.Finish()
	p.logger.Info("batch complete",
		"feeds", result.Feeds,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"articles", result.Articles,
		"saved", result.Saved,
		"elapsed", tracker.Elapsed())

	return result
}
