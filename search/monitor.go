package search

import (
	"github.com/IamLizu/news-aggregator/core"
	"github.com/IamLizu/news-aggregator/storage"
)

// SearchMonitor provides hooks to observe a retrieval.
// Implement this interface to track intermediate steps and results.
type SearchMonitor interface {
	Start(query storage.Query)
	AfterRetrieval(articles []*core.Article)
	Truncated(total, kept int)
	Finish(results []*core.Article, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ storage.Query)             {}
func (n *noopMonitor) AfterRetrieval(_ []*core.Article)  {}
func (n *noopMonitor) Truncated(_, _ int)                {}
func (n *noopMonitor) Finish(_ []*core.Article, _ error) {}
