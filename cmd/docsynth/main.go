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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/evidentia/docsynth"
	"github.com/evidentia/docsynth/ai"
	"github.com/evidentia/docsynth/chunker"
	"github.com/evidentia/docsynth/config"
	"github.com/evidentia/docsynth/core"
	"github.com/evidentia/docsynth/ingestion"
	"github.com/evidentia/docsynth/reindex"
)

func main() {
	// Pick up API tokens from a local .env before flags are parsed.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "docsynth",
		Usage: "Evidence retrieval and policy brief synthesis over document corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (defaults to ./docsynth.yaml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Chunk, embed, and index one or more documents",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
					&cli.StringFlag{
						Name:    "theme",
						Aliases: []string{"t"},
						Usage:   "Thematic label applied to every ingested document",
						Value:   "general",
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove a document and its chunks from the corpus",
				ArgsUsage: "NAME",
				Action:    deleteCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run an ensemble search against the corpus",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   10,
					},
				},
			},
			{
				Name:      "summarize",
				Usage:     "Generate a policy brief for a topic",
				ArgsUsage: "TOPIC",
				Action:    summarizeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Number of evidence chunks to retrieve",
						Value:   30,
					},
				},
			},
			{
				Name:      "indicators",
				Usage:     "Extract candidate indicators for a topic",
				ArgsUsage: "TOPIC",
				Action:    indicatorsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Number of evidence chunks to retrieve",
						Value:   20,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of indicators to emit",
						Value: 5,
					},
				},
			},
			{
				Name:      "batch",
				Usage:     "Generate briefs and indicators for several topics",
				ArgsUsage: "TOPIC [TOPIC...]",
				Action:    batchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Number of evidence chunks to retrieve per topic",
						Value:   30,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all stored chunks with the configured models",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to corpus database directory (overrides config)",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDatabase resolves the layered configuration and opens the corpus
// database. Command-line flags override values from the config file.
func openDatabase(c *cli.Context) (*docsynth.Database, *config.AppConfig, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.Storage.Path
	}

	aiConfig := aiConfigFrom(c, cfg)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []docsynth.DatabaseOption{
		docsynth.WithAIConfig(aiConfig),
		docsynth.WithEnsembleWeights(cfg.Ensemble.PrimaryWeight, cfg.Ensemble.SecondaryWeight),
	}
	if cfg.Storage.InMemory {
		opts = append(opts, docsynth.WithInMemory())
	}

	db, err := docsynth.NewDatabase(dbPath, opts...)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func aiConfigFrom(c *cli.Context, cfg *config.AppConfig) *ai.Config {
	embeddingHost := cfg.AI.EmbeddingHost
	if host := c.String("embedding-host"); host != "" {
		embeddingHost = host
	}

	return ai.NewConfig(
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithGeneratorHost(cfg.AI.GeneratorHost),
		ai.WithPrimaryModel(cfg.AI.PrimaryModel),
		ai.WithSecondaryModel(cfg.AI.SecondaryModel),
		ai.WithGeneratorModel(cfg.AI.GeneratorModel),
		ai.WithToken(cfg.AI.Token()),
		ai.WithTemperature(cfg.AI.Temperature),
	)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one document file is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	splitter := chunker.New(
		chunker.WithMaxWords(cfg.Chunker.MaxWords),
		chunker.WithOverlapSentences(cfg.Chunker.OverlapSentences),
	)
	pipeline, err := db.NewIngestionPipeline(ingestion.WithChunker(splitter))
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	theme := c.String("theme")
	for _, path := range c.Args().Slice() {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, err := pipeline.IngestDocument(ctx, filepath.Base(path), theme, string(text))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		fmt.Printf("%s: %d chunks added", filepath.Base(path), result.ChunksAdded)
		if result.ChunksRemoved > 0 {
			fmt.Printf(" (%d replaced)", result.ChunksRemoved)
		}
		fmt.Printf(", corpus size %d\n", result.CorpusSize)
	}

	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document name is required")
	}
	name := c.Args().First()

	db, _, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	removed, err := pipeline.DeleteDocument(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	if removed == 0 {
		fmt.Printf("%s: not in corpus\n", name)
		return nil
	}
	fmt.Printf("%s: %d chunks removed\n", name, removed)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(ctx, query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%2d. [%.4f] %s (%s)\n", i+1, result.Combined,
			result.Chunk.SourceDocument, result.Chunk.Theme)
		fmt.Printf("    %s\n", snippet(result.Chunk.Text, 200))
	}

	return nil
}

func summarizeCommand(c *cli.Context) error {
	ctx := context.Background()

	topic := strings.Join(c.Args().Slice(), " ")
	if topic == "" {
		return fmt.Errorf("a topic is required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	orchestrator, err := db.NewOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	brief, err := orchestrator.Summarize(ctx, topic, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	fmt.Println(brief.Text)
	fmt.Println()
	fmt.Println("Sources:")
	for _, ref := range brief.Sources {
		fmt.Printf("  [%d] %s (%s)\n", ref.Ref, ref.SourceDocument, ref.Theme)
	}

	return nil
}

func indicatorsCommand(c *cli.Context) error {
	ctx := context.Background()

	topic := strings.Join(c.Args().Slice(), " ")
	if topic == "" {
		return fmt.Errorf("a topic is required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	orchestrator, err := db.NewOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	indicators, err := orchestrator.ExtractIndicators(ctx, topic, c.Int("limit"), c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("indicator extraction failed: %w", err)
	}

	for i, ind := range indicators {
		fmt.Printf("%d. %s\n", i+1, ind.Name)
		fmt.Printf("   Purpose:       %s\n", ind.Purpose)
		fmt.Printf("   Data sources:  %s\n", ind.DataSources)
		fmt.Printf("   Frequency:     %s\n", ind.Frequency)
		fmt.Printf("   SDG relevance: %s\n", ind.SDGRelevance)
	}

	return nil
}

func batchCommand(c *cli.Context) error {
	ctx := context.Background()

	topics := c.Args().Slice()
	if len(topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	orchestrator, err := db.NewOrchestrator()
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	results, err := orchestrator.ProcessBatch(ctx, topics, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	succeeded := 0
	for _, result := range results {
		if result.Status != core.TopicStatusSuccess {
			fmt.Printf("== %s: FAILED (%s)\n\n", result.Topic, result.Error)
			continue
		}
		succeeded++
		fmt.Printf("== %s\n\n", result.Topic)
		fmt.Println(result.Brief.Text)
		fmt.Println()
		for i, ind := range result.Indicators {
			fmt.Printf("  Indicator %d: %s\n", i+1, ind.Name)
		}
		fmt.Println()
	}

	fmt.Fprintf(os.Stderr, "%d/%d topics succeeded\n", succeeded, len(results))
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	db, _, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := db.NewReindexer(reindexConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

// snippet truncates text for one-line display.
func snippet(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
