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


package mock

import "github.com/arcova/docrag/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder and answerer instances.
type MockProvider struct {
	embedder *MockEmbedder
	answerer *MockAnswerer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockAnswerer() to access concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		answerer: NewMockAnswerer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, answerer *MockAnswerer) ai.Provider {
	return &MockProvider{
		embedder: embedder,
		answerer: answerer,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Answerer returns the mock answerer.
func (p *MockProvider) Answerer() ai.Answerer {
	return p.answerer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockAnswerer returns the underlying mock answerer for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockAnswerer() *MockAnswerer {
	return p.answerer
}
