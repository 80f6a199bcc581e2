package ai

import "errors"

var (
	// ErrEnrichmentFailed indicates a topic or entity extraction call failed.
	ErrEnrichmentFailed = errors.New("enrichment failed")

	// ErrUnknownStrategy indicates an unsupported extraction strategy name.
	ErrUnknownStrategy = errors.New("unknown extraction strategy")
)
