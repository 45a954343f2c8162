package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jmoiron/sqlx"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/vectorstore"
)

// Storage persists records in SQLite and searches them by brute-force cosine
// distance. The schema comes from the db package migrations.
type Storage struct {
	db        *sqlx.DB
	dimension int
	ownsDB    bool
}

type recordRow struct {
	ID        string `db:"id"`
	Seq       int64  `db:"seq"`
	Text      string `db:"text"`
	Metadata  string `db:"metadata"`
	Embedding []byte `db:"embedding"`
}

// NewStorage wraps an already migrated database. Close leaves db open.
func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// NewOwnedStorage is NewStorage for a database the store should close.
func NewOwnedStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db, ownsDB: true}
}

// Init records the dimension. Reopening a store with a different dimension
// fails, since stored vectors would no longer be comparable.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	var stored string
	err := s.db.GetContext(ctx, &stored, `SELECT value FROM index_settings WHERE key = 'dimension'`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO index_settings (key, value) VALUES ('dimension', $1)`, strconv.Itoa(dimension)); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if stored != strconv.Itoa(dimension) {
			return fmt.Errorf("index was created with dimension %s, embedder produces %d", stored, dimension)
		}
	}
	s.dimension = dimension
	return nil
}

// StoredDimension reads the dimension recorded by an earlier Init.
func (s *Storage) StoredDimension(ctx context.Context) (int, error) {
	var stored string
	err := s.db.GetContext(ctx, &stored, `SELECT value FROM index_settings WHERE key = 'dimension'`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(stored)
}

func (s *Storage) Upsert(ctx context.Context, records []domain.Record) error {
	for _, r := range records {
		if len(r.Embedding) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.GetContext(ctx, &seq, `SELECT COALESCE(MAX(seq), -1) + 1 FROM index_records`); err != nil {
		return err
	}
	const query = `
		INSERT INTO index_records (id, seq, text, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET text = excluded.text, metadata = excluded.metadata, embedding = excluded.embedding
	`
	for _, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, r.ID, seq, r.Text, string(meta), encode(r.Embedding)); err != nil {
			return err
		}
		seq++
	}
	return tx.Commit()
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int, filter domain.Filter) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.QueryxContext(ctx, `SELECT id, seq, text, metadata, embedding FROM index_records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var row recordRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		meta, err := decodeMetadata(row.Metadata)
		if err != nil {
			return nil, err
		}
		if !filter.Matches(meta) {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:       row.ID,
			Text:     row.Text,
			Distance: vectorstore.CosineDistance(decode(row.Embedding), vector),
			Metadata: meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vectorstore.Rank(results, topK), nil
}

func (s *Storage) Get(ctx context.Context, id string) (*domain.Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, `SELECT id, seq, text, metadata, embedding FROM index_records WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("document", id)
	}
	if err != nil {
		return nil, err
	}
	meta, err := decodeMetadata(row.Metadata)
	if err != nil {
		return nil, err
	}
	return &domain.Record{ID: row.ID, Text: row.Text, Metadata: meta, Embedding: decode(row.Embedding)}, nil
}

func (s *Storage) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM index_records WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return err
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM index_records`)
	return n, err
}

func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM index_records`)
	return err
}

func (s *Storage) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func decodeMetadata(raw string) (map[string]any, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

// encode packs a vector as little-endian float64s.
func encode(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decode(buf []byte) []float64 {
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v
}
