package openai

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

// completer issues one chat request per call with the configured parameters.
type completer struct {
	client      llms.Model
	limiter     *rate.Limiter
	model       string
	maxTokens   int
	temperature float64
}

// complete sends a system and a human message and returns the first choice,
// trimmed. An empty string means the model returned no choices.
func (c *completer) complete(ctx context.Context, system, human string, extra ...llms.CallOption) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, human),
	}

	callOpts := []llms.CallOption{
		llms.WithModel(c.model),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	}
	callOpts = append(callOpts, extra...)

	response, err := c.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", err
	}
	if response == nil || len(response.Choices) < 1 || response.Choices[0] == nil {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
