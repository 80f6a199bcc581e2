package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Article IDs are derived from the article link so that re-ingesting the
// same item always addresses the same record.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entities holds the named entities recognised in an article.
type Entities struct {
	People        []string
	Locations     []string
	Organizations []string
}

// EmptyEntities returns an Entities value with all three lists present and empty.
func EmptyEntities() Entities {
	return Entities{
		People:        []string{},
		Locations:     []string{},
		Organizations: []string{},
	}
}

// IsEmpty reports whether no entities of any kind are present.
func (e Entities) IsEmpty() bool {
	return len(e.People) == 0 && len(e.Locations) == 0 && len(e.Organizations) == 0
}

// EntityKind names one of the entity lists.
type EntityKind string

const (
	EntityPeople        EntityKind = "people"
	EntityLocations     EntityKind = "locations"
	EntityOrganizations EntityKind = "organizations"
)

// EntityKinds lists every entity kind in storage order.
var EntityKinds = []EntityKind{EntityPeople, EntityLocations, EntityOrganizations}

// Values returns the entity list for the given kind.
func (e Entities) Values(kind EntityKind) []string {
	switch kind {
	case EntityPeople:
		return e.People
	case EntityLocations:
		return e.Locations
	case EntityOrganizations:
		return e.Organizations
	}
	return nil
}

// Article is the canonical, persisted form of a feed item.
// Articles are immutable once persisted; Link is the identity key.
type Article struct {
	Id              ID
	Title           string
	Link            string
	PublicationDate time.Time
	Description     string
	Content         string // empty when the feed carried no content
	Source          string // feed URL the article was ingested from
	Topics          []string
	Entities        Entities
	CreatedAt       time.Time // set when the article is persisted
}

// FeedItem is a raw item as delivered by a feed parser.
type FeedItem struct {
	Title          string
	Link           string
	PubDate        *time.Time // primary publication date
	ISODate        *time.Time // alternate ISO-8601 date
	ContentSnippet string     // content with markup stripped
	Description    string
	Content        string
}

// FeedDocument is a parsed feed.
type FeedDocument struct {
	Title string
	Items []FeedItem
}

// ArticleFromFeedItem maps a feed item into an un-enriched Article.
// The publication date falls back from PubDate to ISODate and the description
// from ContentSnippet to Description.
func ArticleFromFeedItem(item FeedItem, source string) *Article {
	article := &Article{
		Id:          IDFromContent(strings.TrimSpace(item.Link)),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: strings.TrimSpace(item.Description),
		Content:     strings.TrimSpace(item.Content),
		Source:      source,
		Topics:      []string{},
		Entities:    EmptyEntities(),
	}

	switch {
	case item.PubDate != nil && !item.PubDate.IsZero():
		article.PublicationDate = *item.PubDate
	case item.ISODate != nil && !item.ISODate.IsZero():
		article.PublicationDate = *item.ISODate
	}

	if snippet := strings.TrimSpace(item.ContentSnippet); snippet != "" {
		article.Description = snippet
	}

	return article
}

// EnrichmentText returns the text handed to enrichment: the title followed
// by the content, or the description when there is no content.
func (a *Article) EnrichmentText() string {
	body := a.Content
	if body == "" {
		body = a.Description
	}
	return a.Title + "\n\n" + body
}

// FeedCheckpoint records the outcome of the last successful ingestion of a feed.
type FeedCheckpoint struct {
	FeedURL   string
	Fetched   int // items delivered by the feed
	Saved     int // articles newly persisted
	UpdatedAt time.Time
}
