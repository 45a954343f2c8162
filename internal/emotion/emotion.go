package emotion

import (
	"fmt"
	"os"
	"time"

	"feedsight/internal/config"
	"feedsight/internal/domain"
)

// Scorer is the per-document emotion and polarity classifier.
type Scorer = domain.EmotionScorer

// New builds the scorer selected by cfg.
func New(cfg config.ScorerConfig) (Scorer, error) {
	switch cfg.Type {
	case "", "lexicon":
		return NewLexiconScorer(), nil
	case "remote":
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote scorer requires a url")
		}
		token := ""
		if cfg.APIKeyEnv != "" {
			token = os.Getenv(cfg.APIKeyEnv)
		}
		return NewRemoteScorer(RemoteConfig{
			URL:     cfg.URL,
			Token:   token,
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown scorer type: %s", cfg.Type)
	}
}
