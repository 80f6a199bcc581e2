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


// Package search provides article retrieval for the CLI and HTTP surfaces.
//
// The Searcher type wraps an ArticleRepository and adds:
//   - Date and keyword filtered retrieval, newest first
//   - Free-text queries turned into keywords with stop-word filtering
//   - Exact topic and entity lookups
//   - Optional result limits and a monitor hook for observing a retrieval
package search
