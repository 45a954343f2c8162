package memory

import (
	"context"
	"errors"
	"sync"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Records keep insertion order; upserting an existing id replaces it in place.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	records   []domain.Record
	pos       map[string]int
}

func NewStorage() *Storage { return &Storage{pos: make(map[string]int)} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

// StoredDimension is the dimension given to Init; memory keeps nothing
// across processes.
func (s *Storage) StoredDimension(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension, nil
}

func (s *Storage) Upsert(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if len(r.Embedding) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, r := range records {
		r.Metadata = vectorstore.CopyMetadata(r.Metadata)
		r.Embedding = append([]float64(nil), r.Embedding...)
		if i, ok := s.pos[r.ID]; ok {
			s.records[i] = r
			continue
		}
		s.pos[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int, filter domain.Filter) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	results := make([]domain.SearchResult, 0, len(s.records))
	for _, r := range s.records {
		if !filter.Matches(r.Metadata) {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:       r.ID,
			Text:     r.Text,
			Distance: vectorstore.CosineDistance(r.Embedding, vector),
			Metadata: vectorstore.CopyMetadata(r.Metadata),
		})
	}
	return vectorstore.Rank(results, topK), nil
}

func (s *Storage) Get(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.pos[id]
	if !ok {
		return nil, apperr.NotFound("document", id)
	}
	r := s.records[i]
	r.Metadata = vectorstore.CopyMetadata(r.Metadata)
	r.Embedding = append([]float64(nil), r.Embedding...)
	return &r, nil
}

// Delete removes the given ids; unknown ids are ignored.
func (s *Storage) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.pos = make(map[string]int, len(kept))
	for i, r := range kept {
		s.pos[r.ID] = i
	}
	return nil
}

func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.pos = make(map[string]int)
	return nil
}

func (s *Storage) Close() error { return nil }
