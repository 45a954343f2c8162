package embedding

import (
	"fmt"
	"time"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/domain"
	"feedsight/internal/embedding/hashing"
	"feedsight/internal/embedding/openai"
)

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder = domain.Embedder

// New builds the retrieval embedder selected by cfg, wrapped in a cache when
// enabled. tfidf is rejected: its vocabulary is fitted to one batch, so vectors
// from different adds would not share a space. Topic extraction builds its own
// tfidf embedder per batch.
func New(cfg config.EmbedderConfig) (Embedder, error) {
	var e Embedder
	switch cfg.Type {
	case "", "hashing":
		e = hashing.NewEmbedder(cfg.Dimension)
	case "tfidf":
		return nil, apperr.New(apperr.KindConfiguration,
			"tfidf embedder is fitted per batch and cannot back the retrieval index; use hashing or openai")
	case "openai":
		oc := config.OpenAIEmbedderConfig{}
		if cfg.OpenAI != nil {
			oc = *cfg.OpenAI
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		e = client
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
	}
	if cfg.Cache {
		return NewCached(e, time.Duration(cfg.CacheTTL)*time.Second), nil
	}
	return e, nil
}
