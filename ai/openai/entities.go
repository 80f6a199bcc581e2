package openai

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IamLizu/news-aggregator/ai"
	"github.com/IamLizu/news-aggregator/core"
	"github.com/tmc/langchaingo/llms"
)

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	completer *completer
	logger    *slog.Logger
}

var _ ai.EntityExtractor = (*EntityExtractor)(nil)

// entityResponse is the JSON object expected from the model.
type entityResponse struct {
	People        []string `json:"people"`
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
}

func newEntityExtractor(c *completer, logger *slog.Logger) *EntityExtractor {
	return &EntityExtractor{
		completer: c,
		logger:    logger.With("component", "openai-entities"),
	}
}

// ExtractEntities asks the model for people, locations and organizations.
// Provider and parse failures are logged and produce empty entity lists;
// only context cancellation is returned as an error.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) (core.Entities, error) {
	response, err := e.completer.complete(ctx, buildEntityPrompt(), text, llms.WithJSONMode())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.EmptyEntities(), ctxErr
		}
		e.logger.Error("failed to extract named entities", "err", err)
		return core.EmptyEntities(), nil
	}

	entities, err := parseEntities(response)
	if err != nil {
		e.logger.Error("failed to parse entity response", "response", response, "err", err)
		return core.EmptyEntities(), nil
	}

	e.logger.Debug("extracted named entities",
		"people", len(entities.People),
		"locations", len(entities.Locations),
		"organizations", len(entities.Organizations))
	return entities, nil
}

// parseEntities decodes a model response into core.Entities after removing
// code fences and repairing unquoted keys.
func parseEntities(response string) (core.Entities, error) {
	cleaned := repairJSON(extractObject(stripCodeFence(response)))

	var parsed entityResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return core.EmptyEntities(), err
	}
	return core.Entities{
		People:        cleanNames(parsed.People),
		Locations:     cleanNames(parsed.Locations),
		Organizations: cleanNames(parsed.Organizations),
	}, nil
}
