// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the enrichment abstractions used by the ingestion pipeline.
//
// Two capabilities are defined, each behind its own interface:
//
//   - TopicExtractor: derives short topic keywords from article text
//   - EntityExtractor: recognises people, locations and organizations
//   - AIProvider: pairs one of each for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/heuristic: local rules, no I/O
//   - ai/openai: OpenAI-compatible chat models via langchaingo
//   - ai/mock: test doubles for unit testing without external dependencies
//
// The implementation of each capability is chosen independently through
// Config.TopicStrategy and Config.EntityStrategy, and the two are combined
// with Compose.
//
// # Failure Semantics
//
// Topic extraction reports failures as errors wrapping ErrEnrichmentFailed
// so the caller can decide whether to degrade or drop the article. Entity
// extraction never fails on provider or parse errors; it logs the raw
// response and returns empty entity lists.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithTopicStrategy(ai.StrategyLLM))
//	llm, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer llm.Close()
//
//	topics, err := llm.TopicExtractor().ExtractTopics(ctx, text, cfg.MaxTopics)
//	entities, _ := llm.EntityExtractor().ExtractEntities(ctx, text)
package ai
