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


// Package storage provides the storage abstraction layer for the news aggregator.
//
// This package defines the repository interface that decouples article
// persistence from the ingestion pipeline and the query surfaces.
//
// # Architecture
//
//   - Repository: Common lifecycle operations
//   - ArticleRepository: Article persistence and retrieval
//   - Query / Filter: Date and keyword retrieval criteria
//
// # Duplicate Suppression
//
// An article's Link is its identity. SaveArticles inserts each article
// independently: a duplicate link or an invalid article is skipped while the
// rest of the batch is still persisted. Only a failure of the store itself
// (closed, unwritable) is returned to the caller, as ErrPersistenceFailed.
//
// # Usage
//
//	repo, err := badger.NewRepository("/path/to/db", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	articles, err := repo.GetAllArticles(ctx, storage.Query{
//	    Keywords: []string{"economy"},
//	    FromDate: "2025-01-01",
//	})
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
