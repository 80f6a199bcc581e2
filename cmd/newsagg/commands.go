package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	newsaggregator "github.com/IamLizu/news-aggregator"
	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/feed"
	"github.com/IamLizu/news-aggregator/ingestion"
	"github.com/IamLizu/news-aggregator/scheduler"
	"github.com/IamLizu/news-aggregator/search"
	"github.com/IamLizu/news-aggregator/storage"
	"github.com/urfave/cli/v2"
)

// aiConfig builds the enrichment configuration from the global flags.
func aiConfig(c *cli.Context) (*ai.Config, error) {
	topics, err := ai.ParseStrategy(c.String("topics"))
	if err != nil {
		return nil, fmt.Errorf("invalid --topics: %w", err)
	}
	entities, err := ai.ParseStrategy(c.String("entities"))
	if err != nil {
		return nil, fmt.Errorf("invalid --entities: %w", err)
	}

	cfg := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithModel(c.String("ai-model")),
		ai.WithToken(c.String("ai-token")),
		ai.WithMaxTopics(c.Int("max-topics")),
		ai.WithRequestsPerSecond(c.Float64("requests-per-second")),
		ai.WithTopicStrategy(topics),
		ai.WithEntityStrategy(entities),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*newsaggregator.Database, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	cfg, err := aiConfig(c)
	if err != nil {
		return nil, err
	}

	db, err := newsaggregator.Open(dbPath,
		newsaggregator.WithAIConfig(cfg),
		newsaggregator.WithLogger(slog.Default()),
		newsaggregator.WithFeedOptions(feed.WithTimeout(c.Duration("fetch-timeout"))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func newPipeline(c *cli.Context, db *newsaggregator.Database) (*ingestion.Pipeline, error) {
	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithPoolSize(c.Int("concurrency")),
		ingestion.WithMaxTopics(c.Int("max-topics")),
		ingestion.WithStrictTopics(c.Bool("strict-topics")),
		ingestion.WithEnrichTimeout(c.Duration("enrich-timeout")),
		ingestion.WithFetchRetry(c.Int("fetch-attempts"), fetchRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	return pipeline, nil
}

func fetchCommand(c *cli.Context) error {
	feeds, err := ingestion.LoadFeedList(c.String("json"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := newPipeline(c, db)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if !c.Bool("schedule") {
		result := pipeline.ExecuteAll(c.Context, feeds, c.App.ErrWriter)
		printBatchSummary(c.App.Writer, result)
		return nil
	}

	sched := scheduler.New(scheduler.WithLogger(slog.Default()))
	if err := sched.ScheduleTask(fetchTaskName, c.String("cron"), fetchTask(pipeline, feeds)); err != nil {
		return err
	}
	slog.Info("feed fetching scheduled", "cron", c.String("cron"), "feeds", len(feeds))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start()
	<-ctx.Done()
	return stopScheduler(sched)
}

// fetchTask runs one pass over feeds. Per-feed failures are already logged by
// the pipeline, so the task only reports them in aggregate.
func fetchTask(pipeline *ingestion.Pipeline, feeds []string) scheduler.Task {
	return func(ctx context.Context) error {
		result := pipeline.ExecuteAll(ctx, feeds, nil)
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d feeds failed: %w", result.Failed, result.Feeds, result.Err())
		}
		return nil
	}
}

func stopScheduler(sched *scheduler.Scheduler) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		slog.Warn("scheduled tasks did not finish before shutdown", "err", err)
	}
	return nil
}

func printBatchSummary(w io.Writer, result ingestion.BatchResult) {
	fmt.Fprintf(w, "Feeds: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
	fmt.Fprintf(w, "Articles: %d fetched, %d new\n", result.Articles, result.Saved)
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  error: %v\n", err)
	}
}

func viewCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithMaxResults(c.Int("limit")))
	if err != nil {
		return err
	}

	query := storage.Query{
		Keywords: c.StringSlice("keyword"),
		FromDate: c.String("fromDate"),
		ToDate:   c.String("toDate"),
	}
	slog.Info("fetching and filtering articles", "keywords", query.Keywords, "fromDate", query.FromDate, "toDate", query.ToDate)

	topic := c.String("topic")
	kind, name := entityFlag(c)
	if text := c.String("text"); text != "" {
		query.Keywords = append(query.Keywords, search.KeywordsFromText(text)...)
	}

	var articles []*core.Article
	switch {
	case topic != "":
		articles, err = searcher.FindByTopic(c.Context, topic)
	case name != "":
		articles, err = searcher.FindByEntity(c.Context, kind, name)
	default:
		articles, err = searcher.Find(c.Context, query)
	}
	if err != nil {
		return err
	}

	// Index lookups do not apply the date and keyword criteria.
	if topic != "" || name != "" {
		filter, err := query.Compile()
		if err != nil {
			return err
		}
		articles = slices.DeleteFunc(articles, func(a *core.Article) bool { return !filter.Matches(a) })
	}

	printArticles(c.App.Writer, articles)
	return nil
}

var entityFlags = []struct {
	flag string
	kind core.EntityKind
}{
	{"person", core.EntityPeople},
	{"location", core.EntityLocations},
	{"organization", core.EntityOrganizations},
}

// entityFlag returns the first entity lookup requested on the command line.
func entityFlag(c *cli.Context) (core.EntityKind, string) {
	for _, ef := range entityFlags {
		if name := c.String(ef.flag); name != "" {
			return ef.kind, name
		}
	}
	return "", ""
}

func printArticles(w io.Writer, articles []*core.Article) {
	fmt.Fprintf(w, "%d articles\n", len(articles))
	for _, a := range articles {
		fmt.Fprintf(w, "\n%s  %s\n", a.PublicationDate.Format(time.DateOnly), a.Title)
		fmt.Fprintf(w, "  %s\n", a.Link)
		if len(a.Topics) > 0 {
			fmt.Fprintf(w, "  topics: %s\n", strings.Join(a.Topics, ", "))
		}
		for _, kind := range core.EntityKinds {
			if names := a.Entities.Values(kind); len(names) > 0 {
				fmt.Fprintf(w, "  %s: %s\n", kind, strings.Join(names, ", "))
			}
		}
	}
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := newPipeline(c, db)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	var sched *scheduler.Scheduler
	if path := c.String("json"); path != "" {
		feeds, err := ingestion.LoadFeedList(path)
		if err != nil {
			return err
		}
		sched = scheduler.New(scheduler.WithLogger(slog.Default()))
		if err := sched.ScheduleTask(fetchTaskName, c.String("cron"), fetchTask(pipeline, feeds)); err != nil {
			return err
		}
		sched.Start()
		slog.Info("feed fetching scheduled", "cron", c.String("cron"), "feeds", len(feeds))
	}

	server := db.NewServer(pipeline)
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", c.String("addr"))
		serveErr <- server.Start(c.String("addr"))
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
		defer cancel()
		err = server.Shutdown(shutdownCtx)
	}

	if sched != nil {
		stopScheduler(sched)
	}
	return err
}

func deleteCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	links := c.StringSlice("link")
	ids := make([]core.ID, 0, len(links))
	for _, link := range links {
		ids = append(ids, core.IDFromContent(strings.TrimSpace(link)))
	}

	deleted, err := db.ArticleRepository().DeleteArticles(c.Context, ids...)
	if err != nil {
		return fmt.Errorf("failed to delete articles: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Deleted %d of %d articles\n", deleted, len(links))

	if deleted > 0 {
		if err := db.CollectGarbage(); err != nil {
			slog.Warn("value log garbage collection failed", "err", err)
		}
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	checkpoints, err := db.CheckpointRepository().ListCheckpoints(c.Context)
	if err != nil {
		return err
	}
	count, err := db.ArticleRepository().Count(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%d articles stored\n", count)
	if len(checkpoints) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEED\tFETCHED\tSAVED\tUPDATED")
	for _, cp := range checkpoints {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", cp.FeedURL, cp.Fetched, cp.Saved, cp.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
