package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig locates the corpus and everything derived from it.
type DataConfig struct {
	Corpus   string `yaml:"corpus"`
	IndexDir string `yaml:"index_dir"`
	DBPath   string `yaml:"db_path"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// GeminiConfig is shared by the Gemini embedder and completer.
type GeminiConfig struct {
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions,omitempty"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type              string                `yaml:"type"`
	BatchSize         int                   `yaml:"batch_size"`
	Workers           int                   `yaml:"workers"`
	RequestsPerSecond float64               `yaml:"requests_per_second"`
	OpenAI            *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Gemini            *GeminiConfig         `yaml:"gemini,omitempty"`
}

// VectorStoreConfig selects where queries are served from. The flat index
// is always built and persisted; qdrant additionally serves it remotely.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OllamaConfig points at a local Ollama server.
type OllamaConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// CompleterConfig selects the generative model, if any.
type CompleterConfig struct {
	Type   string        `yaml:"type"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
	Ollama *OllamaConfig `yaml:"ollama,omitempty"`
}

// SearchConfig sizes result lists.
type SearchConfig struct {
	ListingTopK       int `yaml:"listing_top_k"`
	ContextTopK       int `yaml:"context_top_k"`
	RecommendCount    int `yaml:"recommend_count"`
	KeywordMaxResults int `yaml:"keyword_max_results"`
}

// WatchConfig controls automatic refresh on corpus changes.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

type ResumeConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Completer   CompleterConfig   `yaml:"completer"`
	Search      SearchConfig      `yaml:"search"`
	Watch       WatchConfig       `yaml:"watch"`
	Log         LogConfig         `yaml:"log"`
	Resume      ResumeConfig      `yaml:"resume"`
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
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/careerbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/careerbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
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
// The file is replaced atomically.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Validate rejects unknown implementation names.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "tfidf", "openai", "gemini":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "flat":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return errors.New("vector_store.qdrant.url is required")
		}
	default:
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	switch c.Completer.Type {
	case "none", "gemini", "ollama":
	default:
		return fmt.Errorf("unknown completer type %q", c.Completer.Type)
	}
	if c.Data.Corpus == "" {
		return errors.New("data.corpus is required")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "careerbot", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Data:        DataConfig{Corpus: "data/job_listing_data.csv"},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "flat"},
		Completer:   CompleterConfig{Type: "none"},
		Watch:       WatchConfig{Enabled: true},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Data.Corpus == "" {
		cfg.Data.Corpus = "data/job_listing_data.csv"
	}
	if cfg.Data.IndexDir == "" {
		cfg.Data.IndexDir = "data/index"
	}
	if cfg.Data.DBPath == "" {
		cfg.Data.DBPath = "data/careerbot.db"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Embedder.Workers == 0 {
		cfg.Embedder.Workers = 4
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 3
		}
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiConfig{}
		}
		geminiDefaults(cfg.Embedder.Gemini, "text-embedding-004")
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "flat"
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "careerbot-jobs"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 10
		}
	}
	if cfg.Completer.Type == "" {
		cfg.Completer.Type = "none"
	}
	switch cfg.Completer.Type {
	case "gemini":
		if cfg.Completer.Gemini == nil {
			cfg.Completer.Gemini = &GeminiConfig{}
		}
		geminiDefaults(cfg.Completer.Gemini, "gemini-2.0-flash")
	case "ollama":
		if cfg.Completer.Ollama == nil {
			cfg.Completer.Ollama = &OllamaConfig{}
		}
		if cfg.Completer.Ollama.BaseURL == "" {
			cfg.Completer.Ollama.BaseURL = "http://localhost:11434"
		}
		if cfg.Completer.Ollama.Model == "" {
			cfg.Completer.Ollama.Model = "llama3.2"
		}
		if cfg.Completer.Ollama.TimeoutSecs == 0 {
			cfg.Completer.Ollama.TimeoutSecs = 300
		}
	}
	if cfg.Search.ListingTopK == 0 {
		cfg.Search.ListingTopK = 10
	}
	if cfg.Search.ContextTopK == 0 {
		cfg.Search.ContextTopK = 3
	}
	if cfg.Search.RecommendCount == 0 {
		cfg.Search.RecommendCount = 3
	}
	if cfg.Search.KeywordMaxResults == 0 {
		cfg.Search.KeywordMaxResults = 5
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "careerbot.log"
	}
	if cfg.Resume.OutputDir == "" {
		cfg.Resume.OutputDir = "resumes"
	}
}

func geminiDefaults(g *GeminiConfig, model string) {
	if g.APIKeyEnv == "" {
		g.APIKeyEnv = "GEMINI_API_KEY"
	}
	if g.Model == "" {
		g.Model = model
	}
}
