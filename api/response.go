package api

import (
	"time"

	"github.com/IamLizu/news-aggregator/core"
)

type entitiesResponse struct {
	People        []string `json:"people"`
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
}

type articleResponse struct {
	ID              uint64           `json:"id"`
	Title           string           `json:"title"`
	Link            string           `json:"link"`
	PublicationDate time.Time        `json:"publicationDate"`
	Description     string           `json:"description,omitempty"`
	Content         string           `json:"content,omitempty"`
	Source          string           `json:"source"`
	Topics          []string         `json:"topics"`
	Entities        entitiesResponse `json:"entities"`
	CreatedAt       *time.Time       `json:"createdAt,omitempty"`
}

type articlesResponse struct {
	Count    int               `json:"count"`
	Articles []articleResponse `json:"articles"`
}

type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toArticleResponse(a *core.Article) articleResponse {
	resp := articleResponse{
		ID:              uint64(a.Id),
		Title:           a.Title,
		Link:            a.Link,
		PublicationDate: a.PublicationDate,
		Description:     a.Description,
		Content:         a.Content,
		Source:          a.Source,
		Topics:          nonNil(a.Topics),
		Entities: entitiesResponse{
			People:        nonNil(a.Entities.People),
			Locations:     nonNil(a.Entities.Locations),
			Organizations: nonNil(a.Entities.Organizations),
		},
	}
	if !a.CreatedAt.IsZero() {
		created := a.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func toArticlesResponse(articles []*core.Article) articlesResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	return articlesResponse{Count: len(out), Articles: out}
}
