// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/feed"
	"github.com/IamLizu/news-aggregator/ingestion"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	defaultCron          = "*/10 * * * *"
	defaultFetchAttempts = 3
	fetchRetryDelay      = time.Second
	defaultDB            = "news.db"
	defaultAddr          = ":3000"
	fetchTaskName        = "fetch-feeds"
	shutdownPeriod       = 30 * time.Second
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// globalFlags may also be set from the TOML file named by --config, using
// the flag names as keys.
func globalFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load flag values from a TOML file",
			EnvVars: []string{"NEWSAGG_CONFIG"},
		},
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"NEWSAGG_LOG_LEVEL"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Set logging format (text, json)",
			Value:   "text",
			EnvVars: []string{"NEWSAGG_LOG_FORMAT"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   defaultDB,
			EnvVars: []string{"NEWSAGG_DB"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible chat service host URL",
			Value:   defaults.Host,
			EnvVars: []string{"NEWSAGG_AI_HOST"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "ai-model",
			Usage:   "Chat model used for LLM extraction",
			Value:   defaults.Model,
			EnvVars: []string{"NEWSAGG_AI_MODEL"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "API token for the chat service",
			Value:   defaults.Token,
			EnvVars: []string{"NEWSAGG_AI_TOKEN"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "topics",
			Usage:   "Topic extraction strategy (heuristic, llm)",
			Value:   string(defaults.TopicStrategy),
			EnvVars: []string{"NEWSAGG_TOPICS"},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "entities",
			Usage:   "Entity extraction strategy (heuristic, llm)",
			Value:   string(defaults.EntityStrategy),
			EnvVars: []string{"NEWSAGG_ENTITIES"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "max-topics",
			Usage:   "Number of topics extracted per article",
			Value:   ingestion.DefaultMaxTopics,
			EnvVars: []string{"NEWSAGG_MAX_TOPICS"},
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:    "strict-topics",
			Usage:   "Drop articles whose topic extraction fails",
			EnvVars: []string{"NEWSAGG_STRICT_TOPICS"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "concurrency",
			Usage:   "Maximum articles enriched concurrently per feed",
			Value:   ingestion.DefaultPoolSize,
			EnvVars: []string{"NEWSAGG_CONCURRENCY"},
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "fetch-timeout",
			Usage:   "Timeout for fetching one feed",
			Value:   feed.DefaultTimeout,
			EnvVars: []string{"NEWSAGG_FETCH_TIMEOUT"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "fetch-attempts",
			Usage:   "Attempts per feed fetch, with exponential backoff between them",
			Value:   defaultFetchAttempts,
			EnvVars: []string{"NEWSAGG_FETCH_ATTEMPTS"},
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "enrich-timeout",
			Usage:   "Timeout for enriching one article",
			Value:   ingestion.DefaultEnrichTimeout,
			EnvVars: []string{"NEWSAGG_ENRICH_TIMEOUT"},
		}),
		altsrc.NewFloat64Flag(&cli.Float64Flag{
			Name:    "requests-per-second",
			Usage:   "Limit chat model requests per second (0 disables)",
			EnvVars: []string{"NEWSAGG_REQUESTS_PER_SECOND"},
		}),
	}
}

func newApp() *cli.App {
	flags := globalFlags()
	return &cli.App{
		Name:  "newsagg",
		Usage: "Aggregate, enrich and search news from RSS and Atom feeds",
		Flags: flags,
		Before: func(c *cli.Context) error {
			load := altsrc.InitInputSourceWithContext(flags, altsrc.NewTomlSourceFromFlagFunc("config"))
			if err := load(c); err != nil {
				return fmt.Errorf("failed to load config file: %w", err)
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "Fetch articles from RSS feeds",
				Action: fetchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "json",
						Aliases:  []string{"j"},
						Usage:    "Path to JSON file containing feeds",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "schedule",
						Aliases: []string{"s"},
						Usage:   "Schedule the feed fetching process",
					},
					&cli.StringFlag{
						Name:    "cron",
						Usage:   "Cron expression used with --schedule",
						Value:   defaultCron,
						EnvVars: []string{"NEWSAGG_CRON"},
					},
				},
			},
			{
				Name:   "view",
				Usage:  "View and filter articles based on query",
				Action: viewCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Keywords to filter articles (repeatable)",
					},
					&cli.StringFlag{
						Name:    "fromDate",
						Aliases: []string{"f"},
						Usage:   "Start date for filtering articles (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:    "toDate",
						Aliases: []string{"t"},
						Usage:   "End date for filtering articles (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Free text whose significant words are used as keywords",
					},
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Only show articles tagged with this exact topic",
					},
					&cli.StringFlag{
						Name:  "person",
						Usage: "Only show articles naming this person",
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "Only show articles naming this location",
					},
					&cli.StringFlag{
						Name:  "organization",
						Usage: "Only show articles naming this organization",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of articles shown (0 for all)",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   defaultAddr,
						EnvVars: []string{"NEWSAGG_ADDR"},
					},
					&cli.StringFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Path to JSON file containing feeds fetched on schedule",
					},
					&cli.StringFlag{
						Name:    "cron",
						Usage:   "Cron expression for scheduled fetching",
						Value:   defaultCron,
						EnvVars: []string{"NEWSAGG_CRON"},
					},
				},
			},
			{
				Name:   "delete",
				Usage:  "Delete stored articles by link",
				Action: deleteCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "link",
						Usage:    "Link of an article to delete (repeatable)",
						Required: true,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show per-feed ingestion checkpoints",
				Action: statusCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format := strings.ToLower(c.String("log-format")); format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
