package ingestion

import (
	"context"
	"errors"
	"sync"

	"github.com/IamLizu/news-aggregator/core"
)

// enrichOutcome is the result of enriching one article.
type enrichOutcome int

const (
	outcomeEnriched enrichOutcome = iota
	outcomeDegraded
	outcomeDropped
)

// enrich fills topics and entities for every article on the worker pool.
// The returned slice keeps input order and omits dropped articles.
func (p *Pipeline) enrich(ctx context.Context, articles []*core.Article, stats *runStats) ([]*core.Article, error) {
	outcomes := make([]enrichOutcome, len(articles))

	var wg sync.WaitGroup
	var submitErr error
	for i, article := range articles {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = p.enrichArticle(ctx, article)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return nil, errors.Join(ErrPipelineReleased, submitErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := make([]*core.Article, 0, len(articles))
	for i, article := range articles {
		switch outcomes[i] {
		case outcomeEnriched:
			stats.enriched++
		case outcomeDegraded:
			stats.enriched++
			stats.degraded++
		case outcomeDropped:
			stats.dropped++
			continue
		}
		kept = append(kept, article)
	}
	return kept, nil
}

// enrichArticle runs both extractors against one article. A failing
// extractor leaves its field empty.
func (p *Pipeline) enrichArticle(ctx context.Context, article *core.Article) enrichOutcome {
	if p.enrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.enrichTimeout)
		defer cancel()
	}

	text := article.EnrichmentText()
	outcome := outcomeEnriched

	topics, err := p.topics.ExtractTopics(ctx, text, p.maxTopics)
	if err != nil {
		if p.strictTopics {
			p.logger.Warn("dropping article after topic extraction failure", "link", article.Link, "err", err)
			return outcomeDropped
		}
		p.logger.Warn("topic extraction failed", "link", article.Link, "err", err)
		topics = nil
		outcome = outcomeDegraded
	}
	if topics == nil {
		topics = []string{}
	}
	article.Topics = topics

	entities, err := p.entities.ExtractEntities(ctx, text)
	if err != nil {
		p.logger.Warn("entity extraction failed", "link", article.Link, "err", err)
		entities = core.EmptyEntities()
		outcome = outcomeDegraded
	}
	article.Entities = normalizeEntities(entities)

	return outcome
}

// normalizeEntities replaces nil entity lists with empty ones.
func normalizeEntities(e core.Entities) core.Entities {
	if e.People == nil {
		e.People = []string{}
	}
	if e.Locations == nil {
		e.Locations = []string{}
	}
	if e.Organizations == nil {
		e.Organizations = []string{}
	}
	return e
}
