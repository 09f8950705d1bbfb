// Copyright 2025 Arcova Systems
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


// Package storage provides the storage abstraction layer for docrag.
//
// This package defines repository interfaces that decouple storage
// implementation from the ingestion, backfill, and answering pipelines. It
// allows different storage backends (BadgerDB, in-memory, etc.) to be used
// interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined here
// to enforce abstraction:
//
//	repo, err := badger.NewChunkRepository(backend) // used as storage.ChunkRepository
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: operations shared by all repositories (similarity search,
//     transactions, lifecycle)
//   - ChunkRepository: operations for persisted document chunks, including
//     the pending-embedding queue used by the backfill worker
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
