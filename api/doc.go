// Package api exposes article retrieval and on-demand ingestion over HTTP.
//
// Routes:
//
//	GET /articles?keyword=a&keyword=b&fromDate=2025-05-01&toDate=2025-05-31
//	GET /articles/fetch?feedUrl=https://example.com/rss
//	GET /health
//
// Errors are returned as {"error": {"message": ..., "status": ...}} with the
// status derived from the error kind: invalid input 400, feed fetch failure
// 502, persistence failure 503 and anything else 500.
package api
