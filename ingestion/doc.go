// Package ingestion orchestrates the fetch, enrich and persist workflow for
// news feeds.
//
// Pipeline.Execute runs one feed through these stages:
//   - Validate the feed URL
//   - Fetch and parse the feed, optionally retrying with backoff
//   - Map items into articles
//   - Enrich every article with topics and named entities, concurrently on a
//     bounded worker pool
//   - Persist the batch with a single repository call
//
// Enrichment failures degrade only the affected article (empty topics or
// entities) unless strict topic handling is enabled, in which case an article
// whose topics cannot be extracted is dropped. Pipeline.ExecuteAll runs a list
// of feeds sequentially and isolates per-feed failures.
package ingestion
