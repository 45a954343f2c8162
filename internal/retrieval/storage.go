package retrieval

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/db"
	"feedsight/internal/vectorstore"
	"feedsight/internal/vectorstore/memory"
	"feedsight/internal/vectorstore/qdrant"
	"feedsight/internal/vectorstore/sqlite"
)

// NewStorage builds the vector store named by cfg. A sqlite store without its
// own path shares conn, the application database.
func NewStorage(cfg config.VectorStoreConfig, conn *sqlx.DB) (vectorstore.Storage, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.NewStorage(), nil
	case "sqlite":
		if cfg.Path == "" {
			if conn == nil {
				return nil, apperr.New(apperr.KindConfiguration, "sqlite vector store needs a path or a database")
			}
			return sqlite.NewStorage(conn), nil
		}
		own, err := db.NewSQLiteDB(cfg.Path)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindConfiguration, err, "opening vector store database failed")
		}
		return sqlite.NewOwnedStorage(own), nil
	case "qdrant":
		if cfg.Qdrant == nil || cfg.Qdrant.URL == "" {
			return nil, apperr.New(apperr.KindConfiguration, "qdrant vector store requires qdrant.url")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, apperr.New(apperr.KindConfiguration, fmt.Sprintf("unknown vector store type: %s", cfg.Type))
	}
}
