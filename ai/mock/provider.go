// Copyright 2025 Evidentia Labs
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

import "github.com/evidentia/docsynth/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates two mock embedders (with distinct model salts) and a mock
// generator.
type MockProvider struct {
	primary   *MockEmbedder
	secondary *MockEmbedder
	generator *MockGenerator
}

// NewMockProvider creates a new mock provider with default mock services.
// The two embedders carry distinct salts so they behave like independent
// models.
//
// Returns ai.AIProvider interface for consistency with production
// constructors. Use GetPrimaryEmbedder()/GetSecondaryEmbedder()/
// GetMockGenerator() to access concrete types for assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		primary:   NewMockEmbedderWithSalt("primary"),
		secondary: NewMockEmbedderWithSalt("secondary"),
		generator: NewMockGenerator(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(primary, secondary *MockEmbedder, generator *MockGenerator) ai.AIProvider {
	return &MockProvider{
		primary:   primary,
		secondary: secondary,
		generator: generator,
	}
}

// PrimaryEmbedder returns the primary mock embedder.
func (p *MockProvider) PrimaryEmbedder() ai.Embedder {
	return p.primary
}

// SecondaryEmbedder returns the secondary mock embedder.
func (p *MockProvider) SecondaryEmbedder() ai.Embedder {
	return p.secondary
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetPrimaryEmbedder returns the underlying primary mock embedder for test
// assertions.
func (p *MockProvider) GetPrimaryEmbedder() *MockEmbedder {
	return p.primary
}

// GetSecondaryEmbedder returns the underlying secondary mock embedder for
// test assertions.
func (p *MockProvider) GetSecondaryEmbedder() *MockEmbedder {
	return p.secondary
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}
