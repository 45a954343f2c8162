package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"feedsight/internal/apperr"
)

// Batch is a stored set of feedback entries analyzed together.
type Batch struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	Texts     []string         `json:"texts"`
	Metadata  []map[string]any `json:"metadata,omitempty"`
}

// Repository is the feedback_id -> texts lookup used to re-materialize a batch.
type Repository interface {
	Create(ctx context.Context, name string, texts []string, metadata []map[string]any) (*Batch, error)
	Get(ctx context.Context, id string) (*Batch, error)
	Texts(ctx context.Context, id string) ([]string, error)
	List(ctx context.Context, limit int) ([]Batch, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type batchRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type entryRow struct {
	Text     string `db:"text"`
	Metadata string `db:"metadata"`
}

func (r *repository) Create(ctx context.Context, name string, texts []string, metadata []map[string]any) (*Batch, error) {
	if len(texts) == 0 {
		return nil, apperr.Validation("feedback batch cannot be empty")
	}
	if metadata != nil && len(metadata) != len(texts) {
		return nil, apperr.Validation("metadata must have one entry per feedback text")
	}
	b := &Batch{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC(), Texts: texts, Metadata: metadata}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO feedback_batches (id, name, created_at) VALUES ($1, $2, $3)`,
		b.ID, b.Name, b.CreatedAt,
	); err != nil {
		return nil, err
	}
	query := `INSERT INTO feedback_entries (batch_id, position, text, metadata) VALUES ($1, $2, $3, $4)`
	for i, text := range texts {
		meta := "{}"
		if metadata != nil && metadata[i] != nil {
			raw, err := json.Marshal(metadata[i])
			if err != nil {
				return nil, err
			}
			meta = string(raw)
		}
		if _, err := tx.ExecContext(ctx, query, b.ID, i, text, meta); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Batch, error) {
	var row batchRow
	err := r.db.GetContext(ctx, &row, `SELECT id, name, created_at FROM feedback_batches WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("feedback", id)
	}
	if err != nil {
		return nil, err
	}

	var entries []entryRow
	if err := r.db.SelectContext(ctx, &entries,
		`SELECT text, metadata FROM feedback_entries WHERE batch_id = $1 ORDER BY position`, id,
	); err != nil {
		return nil, err
	}
	b := &Batch{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
	for _, e := range entries {
		b.Texts = append(b.Texts, e.Text)
		var meta map[string]any
		if e.Metadata != "" && e.Metadata != "{}" {
			if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
				return nil, err
			}
		}
		b.Metadata = append(b.Metadata, meta)
	}
	return b, nil
}

func (r *repository) Texts(ctx context.Context, id string) ([]string, error) {
	b, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Texts, nil
}

// List returns batches newest first, without their entries.
func (r *repository) List(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []batchRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, created_at FROM feedback_batches ORDER BY created_at DESC, id LIMIT $1`, limit,
	); err != nil {
		return nil, err
	}
	out := make([]Batch, len(rows))
	for i, row := range rows {
		out[i] = Batch{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
	}
	return out, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback_batches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("feedback", id)
	}
	return nil
}
