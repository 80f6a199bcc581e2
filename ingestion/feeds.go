package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FeedList is the on-disk feed list format.
type FeedList struct {
	Feeds []string `json:"feeds"`
}

// LoadFeedList reads a JSON feed list of the form {"feeds": ["https://...", ...]}.
// Blank entries are dropped; URL validation is left to the pipeline.
func LoadFeedList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed list: %w", err)
	}

	var list FeedList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse feed list %s: %w", path, err)
	}

	feeds := make([]string, 0, len(list.Feeds))
	for _, f := range list.Feeds {
		if f = strings.TrimSpace(f); f != "" {
			feeds = append(feeds, f)
		}
	}
	return feeds, nil
}
