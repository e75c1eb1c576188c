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


package docsynth

import (
	"context"
	"io"
	"log/slog"

	"github.com/evidentia/docsynth/ai"
	"github.com/evidentia/docsynth/ai/openai"
	"github.com/evidentia/docsynth/index"
	"github.com/evidentia/docsynth/ingestion"
	"github.com/evidentia/docsynth/reindex"
	"github.com/evidentia/docsynth/search"
	"github.com/evidentia/docsynth/storage"
	"github.com/evidentia/docsynth/storage/badger"
	"github.com/evidentia/docsynth/synthesis"
)

// Default fusion weights for the two-model retrieval ensemble.
const (
	DefaultPrimaryWeight   float32 = 0.7
	DefaultSecondaryWeight float32 = 0.3
)

// Database bundles the corpus store, the AI provider, and the published
// snapshot, and hands out the pipeline, searcher, and orchestrator built
// over them.
type Database struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.AIProvider
	holder    *index.Holder
	aiConfig  *ai.Config

	primaryWeight   float32
	secondaryWeight float32

	logger *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	inMemory        bool
	primaryWeight   float32
	secondaryWeight float32
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider injects a pre-built AI provider instead of creating one
// from the AI config. Used in tests with mock providers.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory uses an in-memory store instead of an on-disk one.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithEnsembleWeights sets the fusion weights of the two scorers.
// Defaults are 0.7 primary, 0.3 secondary.
func WithEnsembleWeights(primary, secondary float32) DatabaseOption {
	return func(o *databaseOptions) {
		if primary > 0 && secondary > 0 {
			o.primaryWeight = primary
			o.secondaryWeight = secondary
		}
	}
}

// NewDatabase opens the corpus store at filePath and restores the search
// snapshot from the persisted chunks.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:        ai.DefaultConfig(),
		primaryWeight:   DefaultPrimaryWeight,
		secondaryWeight: DefaultSecondaryWeight,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	db := &Database{
		backend:         backend,
		chunkRepo:       chunkRepo,
		provider:        provider,
		holder:          index.NewHolder(),
		aiConfig:        options.aiConfig,
		primaryWeight:   options.primaryWeight,
		secondaryWeight: options.secondaryWeight,
		logger:          slog.Default(),
	}

	if err := db.restoreSnapshot(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// restoreSnapshot rebuilds the search snapshot from persisted chunks.
// A fresh database publishes an empty snapshot.
func (db *Database) restoreSnapshot(ctx context.Context) error {
	chunks, err := db.chunkRepo.ListChunks(ctx)
	if err != nil {
		return err
	}

	snapshot, err := index.BuildSnapshot(chunks, db.modelNames())
	if err != nil {
		return err
	}

	db.holder.Swap(snapshot)
	if snapshot.Len() > 0 {
		db.logger.Info("restored corpus snapshot", "chunks", snapshot.Len())
	}
	return nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

// Holder returns the snapshot holder shared by the pipeline and searcher.
func (db *Database) Holder() *index.Holder {
	return db.holder
}

func (db *Database) modelNames() []string {
	return []string{db.aiConfig.PrimaryModel, db.aiConfig.SecondaryModel}
}

func (db *Database) models() []ingestion.Model {
	return []ingestion.Model{
		{Name: db.aiConfig.PrimaryModel, Embedder: db.provider.PrimaryEmbedder()},
		{Name: db.aiConfig.SecondaryModel, Embedder: db.provider.SecondaryEmbedder()},
	}
}

func (db *Database) scorers() []search.Scorer {
	return []search.Scorer{
		{ID: db.aiConfig.PrimaryModel, Weight: db.primaryWeight, Embedder: db.provider.PrimaryEmbedder()},
		{ID: db.aiConfig.SecondaryModel, Weight: db.secondaryWeight, Embedder: db.provider.SecondaryEmbedder()},
	}
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.holder, db.models(), opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.holder, db.scorers(), opts...)
}

// NewOrchestrator builds a synthesis orchestrator over a fresh searcher
// and the database's generation model.
func (db *Database) NewOrchestrator(opts ...synthesis.Option) (*synthesis.Orchestrator, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return synthesis.NewOrchestrator(searcher, db.provider.Generator(), opts...)
}

// NewReindexer builds a reindexer that re-embeds the stored corpus and
// republishes the snapshot. progress may be nil to discard output.
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(db.chunkRepo, db.models(), db.holder, config, progress)
}
