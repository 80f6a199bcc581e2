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


// Package openai provides enrichment implementations using OpenAI-compatible APIs.
//
// This package implements ai.TopicExtractor, ai.EntityExtractor and
// ai.AIProvider using the langchaingo library to communicate with OpenAI or
// OpenAI-compatible services (such as Ollama, LocalAI, or vLLM). Every call
// issues exactly one chat request; an optional rate limit is shared by both
// extractors of a provider.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithModel("qwen2.5:3b"),
//	    ai.WithRequestsPerSecond(2),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	topics, err := provider.TopicExtractor().ExtractTopics(ctx, text, config.MaxTopics)
//	entities, _ := provider.EntityExtractor().ExtractEntities(ctx, text)
package openai
