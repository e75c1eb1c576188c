package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AIConfig holds connection details for the OpenAI-compatible AI services.
type AIConfig struct {
	EmbeddingHost  string  `yaml:"embedding_host"`
	GeneratorHost  string  `yaml:"generator_host"`
	PrimaryModel   string  `yaml:"primary_model"`
	SecondaryModel string  `yaml:"secondary_model"`
	GeneratorModel string  `yaml:"generator_model"`
	TokenEnv       string  `yaml:"token_env"`
	Temperature    float64 `yaml:"temperature"`
}

// EnsembleConfig holds the retrieval fusion weights.
type EnsembleConfig struct {
	PrimaryWeight   float32 `yaml:"primary_weight"`
	SecondaryWeight float32 `yaml:"secondary_weight"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxWords         int `yaml:"max_words"`
	OverlapSentences int `yaml:"overlap_sentences"`
}

// StorageConfig configures the chunk store.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	AI       AIConfig       `yaml:"ai"`
	Ensemble EnsembleConfig `yaml:"ensemble"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Storage  StorageConfig  `yaml:"storage"`
}

// Token resolves the AI service token from the configured environment
// variable. Returns "none" when the variable is unset, which suits
// local OpenAI-compatible hosts that ignore authentication.
func (c *AIConfig) Token() string {
	if c.TokenEnv != "" {
		if token := os.Getenv(c.TokenEnv); token != "" {
			return token
		}
	}
	return "none"
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./docsynth.yaml first, then ~/.config/docsynth/config.yaml.
// If neither exists, it writes defaults to ~/.config/docsynth/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "docsynth.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docsynth", "config.yaml"), nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docsynth-data"
	}
	return filepath.Join(home, ".local", "share", "docsynth")
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		AI: AIConfig{
			EmbeddingHost:  "http://localhost:11434/v1",
			GeneratorHost:  "http://localhost:11434/v1",
			PrimaryModel:   "all-mpnet-base-v2",
			SecondaryModel: "multi-qa-mpnet-base-dot-v1",
			GeneratorModel: "gpt-4o",
			TokenEnv:       "OPENAI_API_KEY",
			Temperature:    0.3,
		},
		Ensemble: EnsembleConfig{PrimaryWeight: 0.7, SecondaryWeight: 0.3},
		Chunker:  ChunkerConfig{MaxWords: 300, OverlapSentences: 2},
		Storage:  StorageConfig{Path: defaultStoragePath()},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	defaults := defaultConfig()
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = defaults.AI.EmbeddingHost
	}
	if cfg.AI.GeneratorHost == "" {
		cfg.AI.GeneratorHost = defaults.AI.GeneratorHost
	}
	if cfg.AI.PrimaryModel == "" {
		cfg.AI.PrimaryModel = defaults.AI.PrimaryModel
	}
	if cfg.AI.SecondaryModel == "" {
		cfg.AI.SecondaryModel = defaults.AI.SecondaryModel
	}
	if cfg.AI.GeneratorModel == "" {
		cfg.AI.GeneratorModel = defaults.AI.GeneratorModel
	}
	if cfg.AI.TokenEnv == "" {
		cfg.AI.TokenEnv = defaults.AI.TokenEnv
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = defaults.AI.Temperature
	}
	if cfg.Ensemble.PrimaryWeight == 0 {
		cfg.Ensemble.PrimaryWeight = defaults.Ensemble.PrimaryWeight
	}
	if cfg.Ensemble.SecondaryWeight == 0 {
		cfg.Ensemble.SecondaryWeight = defaults.Ensemble.SecondaryWeight
	}
	if cfg.Chunker.MaxWords == 0 {
		cfg.Chunker.MaxWords = defaults.Chunker.MaxWords
	}
	if cfg.Chunker.OverlapSentences == 0 {
		cfg.Chunker.OverlapSentences = defaults.Chunker.OverlapSentences
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaults.Storage.Path
	}
}
