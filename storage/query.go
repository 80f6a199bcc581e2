package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/IamLizu/news-aggregator/core"
)

// Query field names reported by ValidationError.
const (
	FieldFromDate = "fromDate"
	FieldToDate   = "toDate"
)

const dateLayout = "2006-01-02"

// Query is a retrieval request as supplied by a caller.
// Dates are calendar days (YYYY-MM-DD or RFC 3339) and are inclusive.
type Query struct {
	Keywords []string
	FromDate string
	ToDate   string
}

// Filter is a compiled Query.
// From is inclusive and Until exclusive; a zero value means unbounded.
type Filter struct {
	From     time.Time
	Until    time.Time
	Keywords []string // lower-cased, blanks removed
}

// Compile validates the query and converts it to a Filter.
func (q Query) Compile() (Filter, error) {
	var f Filter

	if q.FromDate != "" {
		day, err := parseDay(FieldFromDate, q.FromDate)
		if err != nil {
			return Filter{}, err
		}
		f.From = day
	}

	if q.ToDate != "" {
		day, err := parseDay(FieldToDate, q.ToDate)
		if err != nil {
			return Filter{}, err
		}
		f.Until = day.AddDate(0, 0, 1)
	}

	if !f.From.IsZero() && !f.Until.IsZero() && !f.From.Before(f.Until) {
		return Filter{}, &ValidationError{
			Field: FieldToDate,
			Value: q.ToDate,
			Err:   errors.New("toDate is before fromDate"),
		}
	}

	for _, kw := range q.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			f.Keywords = append(f.Keywords, kw)
		}
	}

	return f, nil
}

// parseDay returns the UTC start of the calendar day named by value.
func parseDay(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: value, Err: err}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// MatchesDate reports whether t falls inside the date bounds.
func (f Filter) MatchesDate(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && !t.Before(f.Until) {
		return false
	}
	return true
}

// MatchesKeywords reports whether any keyword is a case-insensitive substring
// of any topic or entity of the article. No keywords matches everything.
func (f Filter) MatchesKeywords(article *core.Article) bool {
	if len(f.Keywords) == 0 {
		return true
	}

	fields := [][]string{
		article.Topics,
		article.Entities.People,
		article.Entities.Locations,
		article.Entities.Organizations,
	}
	for _, values := range fields {
		for _, value := range values {
			lower := strings.ToLower(value)
			for _, kw := range f.Keywords {
				if strings.Contains(lower, kw) {
					return true
				}
			}
		}
	}
	return false
}

// Matches applies both the date and keyword predicates.
func (f Filter) Matches(article *core.Article) bool {
	return f.MatchesDate(article.PublicationDate) && f.MatchesKeywords(article)
}
