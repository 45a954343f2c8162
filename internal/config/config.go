package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"feedsight/internal/domain"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder used by the retrieval index.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	Cache     bool                  `yaml:"cache"`
	CacheTTL  int                   `yaml:"cache_ttl_secs"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type"`
	Path       string        `yaml:"path"`
	IDStrategy string        `yaml:"id_strategy"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ScorerConfig selects the emotion scorer.
type ScorerConfig struct {
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// TopicsConfig configures the topic extractor.
type TopicsConfig struct {
	MinDocuments      int     `yaml:"min_documents"`
	KeywordsPerTopic  int     `yaml:"keywords_per_topic"`
	OutlierSimilarity float64 `yaml:"outlier_similarity"`
	MaxIterations     int     `yaml:"max_iterations"`
	RepresentativeN   int     `yaml:"representative_docs"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
	MaxDocuments int    `yaml:"max_documents"`
	MaxLength    int    `yaml:"max_length"`
}

// ThresholdsConfig overrides the insight rule thresholds. Zero keeps the default.
type ThresholdsConfig struct {
	DominantShare     float64 `yaml:"dominant_share"`
	JoyInsight        float64 `yaml:"joy_insight"`
	SadnessInsight    float64 `yaml:"sadness_insight"`
	AngerInsight      float64 `yaml:"anger_insight"`
	FearInsight       float64 `yaml:"fear_insight"`
	HighDiversity     float64 `yaml:"high_diversity"`
	LowDiversity      float64 `yaml:"low_diversity"`
	TopThemeShare     float64 `yaml:"top_theme_share"`
	AngerRecommend    float64 `yaml:"anger_recommend"`
	SadnessRecommend  float64 `yaml:"sadness_recommend"`
	FearRecommend     float64 `yaml:"fear_recommend"`
	JoyRecommend      float64 `yaml:"joy_recommend"`
	TopThemesReported int     `yaml:"top_themes_reported"`
}

// IngestConfig configures feedback validation.
type IngestConfig struct {
	MinWords    int  `yaml:"min_words"`
	StripURLs   bool `yaml:"strip_urls"`
	StripEmails bool `yaml:"strip_emails"`
	StripHTML   bool `yaml:"strip_html"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
	JSON     bool   `yaml:"json"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               string `yaml:"port"`
	AnalysisTimeoutSec int    `yaml:"analysis_timeout_secs"`
}

// DatabaseConfig points at the sqlite file holding feedback batches.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig         `yaml:"embedder"`
	VectorStore VectorStoreConfig      `yaml:"vector_store"`
	Scorer      ScorerConfig           `yaml:"scorer"`
	Topics      TopicsConfig           `yaml:"topics"`
	Summarizer  SummarizerConfig       `yaml:"summarizer"`
	Thresholds  ThresholdsConfig       `yaml:"thresholds"`
	Analysis    domain.AnalysisOptions `yaml:"analysis"`
	Ingest      IngestConfig           `yaml:"ingest"`
	Logging     LoggingConfig          `yaml:"logging"`
	Server      ServerConfig           `yaml:"server"`
	Database    DatabaseConfig         `yaml:"database"`
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
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/feedsight/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
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
	return filepath.Join(home, ".config", "feedsight", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "hashing", Dimension: 384, Cache: true, CacheTTL: 600},
		VectorStore: VectorStoreConfig{Type: "memory", IDStrategy: "sequential"},
		Scorer:      ScorerConfig{Type: "lexicon"},
		Topics: TopicsConfig{
			MinDocuments:      10,
			KeywordsPerTopic:  10,
			OutlierSimilarity: 0.05,
			MaxIterations:     50,
			RepresentativeN:   3,
		},
		Summarizer: SummarizerConfig{Type: "textrank", MaxSentences: 5, MaxDocuments: 50, MaxLength: 500},
		Analysis:   domain.DefaultAnalysisOptions(),
		Ingest:     IngestConfig{MinWords: 3, StripURLs: true, StripEmails: true, StripHTML: true},
		Logging:    LoggingConfig{Level: "info"},
		Server:     ServerConfig{Port: "8080", AnalysisTimeoutSec: 120},
		Database:   DatabaseConfig{Path: "data/feedsight.db"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Dimension <= 0 {
		cfg.Embedder.Dimension = 384
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "sqlite" && cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = "data/index.db"
	}
	if cfg.VectorStore.IDStrategy == "" {
		cfg.VectorStore.IDStrategy = "sequential"
	}
	if cfg.Scorer.Type == "" {
		cfg.Scorer.Type = "lexicon"
	}
	if cfg.Scorer.Type == "remote" && cfg.Scorer.TimeoutSecs == 0 {
		cfg.Scorer.TimeoutSecs = 60
	}
	if cfg.Topics.MinDocuments <= 0 {
		cfg.Topics.MinDocuments = 10
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.Summarizer.MaxDocuments <= 0 {
		cfg.Summarizer.MaxDocuments = 50
	}
	if cfg.Summarizer.MaxLength <= 0 {
		cfg.Summarizer.MaxLength = 500
	}
	if cfg.Analysis.MaxTopics <= 0 {
		cfg.Analysis.MaxTopics = 10
	}
	if cfg.Analysis.MinTopicSize <= 0 {
		cfg.Analysis.MinTopicSize = 3
	}
	if cfg.Ingest.MinWords <= 0 {
		cfg.Ingest.MinWords = 3
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
}
