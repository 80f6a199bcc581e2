// Package feed fetches syndication feeds over HTTP and converts them into
// core.FeedDocument values.
//
// RSS, Atom and JSON Feed documents are recognised by gofeed. Each item keeps
// its raw description and content; a plain-text content snippet is derived
// by stripping markup with bluemonday's strict policy.
//
// The adapter performs exactly one request per Parse call. Retrying is left
// to the caller.
package feed
