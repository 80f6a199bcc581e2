package ai

import (
	"errors"
	"io"
)

// compositeProvider combines independently chosen extractors into one AIProvider.
type compositeProvider struct {
	topics   TopicExtractor
	entities EntityExtractor
	closers  []io.Closer
}

// Compose builds an AIProvider from a topic extractor and an entity extractor.
// Close closes every closer given, in order.
func Compose(topics TopicExtractor, entities EntityExtractor, closers ...io.Closer) AIProvider {
	return &compositeProvider{
		topics:   topics,
		entities: entities,
		closers:  closers,
	}
}

func (p *compositeProvider) TopicExtractor() TopicExtractor {
	return p.topics
}

func (p *compositeProvider) EntityExtractor() EntityExtractor {
	return p.entities
}

func (p *compositeProvider) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
