package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/logger"
	"feedsight/internal/vectorstore"
)

const module = "retrieval"

// ID strategies for documents added without explicit ids.
const (
	IDSequential = "sequential"
	IDUUID       = "uuid"
)

// Index is a nearest-neighbor index over embedded documents. It is safe for
// concurrent use. Adds are serialized so generated sequential ids never
// collide within one process; searches run concurrently with each other and
// may or may not observe an add that has not returned yet.
type Index struct {
	embedder   domain.Embedder
	store      vectorstore.Storage
	idStrategy string
	log        logger.Logger

	writeMu sync.Mutex

	initMu    sync.Mutex
	dimension int
}

// Stats describes the current state of an index.
type Stats struct {
	Documents  int    `json:"documents"`
	Dimension  int    `json:"dimension"`
	Embedder   string `json:"embedder"`
	IDStrategy string `json:"id_strategy"`
}

// NewIndex builds an index. The store is initialized once the embedding
// dimension is known, which for remote embedders is after the first call.
func NewIndex(embedder domain.Embedder, store vectorstore.Storage, idStrategy string, log logger.Logger) *Index {
	if idStrategy == "" {
		idStrategy = IDSequential
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Index{embedder: embedder, store: store, idStrategy: idStrategy, log: log}
}

func (ix *Index) ensureInit(ctx context.Context, dim int) error {
	ix.initMu.Lock()
	defer ix.initMu.Unlock()
	if ix.dimension != 0 {
		if dim != ix.dimension {
			return fmt.Errorf("embedding dimension %d does not match index dimension %d", dim, ix.dimension)
		}
		return nil
	}
	if err := ix.store.Init(ctx, dim); err != nil {
		return err
	}
	ix.dimension = dim
	return nil
}

func (ix *Index) initialized() bool {
	ix.initMu.Lock()
	defer ix.initMu.Unlock()
	return ix.dimension != 0
}

// Open initializes the store eagerly so an existing persisted index can be
// queried before any add. The dimension comes from the embedder, or from the
// store when the embedder only learns it on its first call.
func (ix *Index) Open(ctx context.Context) error {
	dim := ix.embedder.Dimension()
	if dim <= 0 {
		stored, err := ix.store.StoredDimension(ctx)
		if err != nil {
			return apperr.Retrieval(err, "reading index dimension failed")
		}
		dim = stored
	}
	if dim <= 0 {
		return nil
	}
	if err := ix.ensureInit(ctx, dim); err != nil {
		return apperr.Retrieval(err, "opening index failed")
	}
	return nil
}

// Add embeds and stores documents and returns their ids. metadata and ids are
// optional; when given they must match docs in length. Missing metadata
// defaults to {"text": doc}. Missing ids are generated per the id strategy.
func (ix *Index) Add(ctx context.Context, docs []string, metadata []map[string]any, ids []string) ([]string, error) {
	if metadata != nil && len(metadata) != len(docs) {
		return nil, apperr.Validation(fmt.Sprintf("got %d metadata entries for %d documents", len(metadata), len(docs)))
	}
	if ids != nil && len(ids) != len(docs) {
		return nil, apperr.Validation(fmt.Sprintf("got %d ids for %d documents", len(ids), len(docs)))
	}
	if len(docs) == 0 {
		return []string{}, nil
	}

	vectors := make([][]float64, len(docs))
	for i, doc := range docs {
		v, err := ix.embedder.Embed(ctx, doc)
		if err != nil {
			return nil, apperr.Retrieval(err, "embedding document failed")
		}
		vectors[i] = v
	}
	if err := ix.ensureInit(ctx, len(vectors[0])); err != nil {
		return nil, apperr.Retrieval(err, "initializing index failed")
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	if ids == nil {
		generated, err := ix.generateIDs(ctx, len(docs))
		if err != nil {
			return nil, apperr.Retrieval(err, "generating ids failed")
		}
		ids = generated
	}
	records := make([]domain.Record, len(docs))
	for i, doc := range docs {
		var meta map[string]any
		if metadata != nil && metadata[i] != nil {
			meta = vectorstore.CopyMetadata(metadata[i])
		} else {
			meta = map[string]any{"text": doc}
		}
		records[i] = domain.Record{ID: ids[i], Text: doc, Metadata: meta, Embedding: vectors[i]}
	}
	if err := ix.store.Upsert(ctx, records); err != nil {
		return nil, apperr.Retrieval(err, "storing documents failed")
	}
	ix.log.Debug(module, "documents added", map[string]interface{}{"count": len(records)})
	return append([]string(nil), ids...), nil
}

// generateIDs must run under writeMu. Sequential ids start at the current
// count and skip ids still present after deletes.
func (ix *Index) generateIDs(ctx context.Context, n int) ([]string, error) {
	ids := make([]string, n)
	if ix.idStrategy == IDUUID {
		for i := range ids {
			ids[i] = uuid.NewString()
		}
		return ids, nil
	}
	next, err := ix.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ids {
		for {
			candidate := fmt.Sprintf("doc_%d", next)
			next++
			_, err := ix.store.Get(ctx, candidate)
			if apperr.KindOf(err) == apperr.KindNotFound {
				ids[i] = candidate
				break
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}

// Search returns up to k documents closest to query, nearest first. An empty
// query returns no results without calling the embedder.
func (ix *Index) Search(ctx context.Context, query string, k int, filter domain.Filter) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.SearchResult{}, nil
	}
	v, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperr.Retrieval(err, "embedding query failed")
	}
	return ix.SearchByEmbedding(ctx, v, k, filter)
}

// SearchByEmbedding is Search for a caller that already holds a vector.
func (ix *Index) SearchByEmbedding(ctx context.Context, vector []float64, k int, filter domain.Filter) ([]domain.SearchResult, error) {
	if !ix.initialized() {
		return []domain.SearchResult{}, nil
	}
	if len(vector) != ix.dimension {
		return nil, apperr.Validation(fmt.Sprintf("query vector has dimension %d, index has %d", len(vector), ix.dimension))
	}
	res, err := ix.store.Search(ctx, vector, k, filter)
	if err != nil {
		return nil, apperr.Retrieval(err, "search failed")
	}
	if res == nil {
		res = []domain.SearchResult{}
	}
	return res, nil
}

// SearchBatch searches only the entries of one stored feedback batch.
func (ix *Index) SearchBatch(ctx context.Context, feedbackID, query string, k int) ([]domain.SearchResult, error) {
	return ix.Search(ctx, query, k, domain.Filter{"feedback_id": feedbackID})
}

// Get returns a stored record or a not-found error.
func (ix *Index) Get(ctx context.Context, id string) (*domain.Record, error) {
	if !ix.initialized() {
		return nil, apperr.NotFound("document", id)
	}
	r, err := ix.store.Get(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, err
		}
		return nil, apperr.Retrieval(err, "get failed")
	}
	return r, nil
}

// Delete removes ids; unknown ids are ignored.
func (ix *Index) Delete(ctx context.Context, ids []string) error {
	if !ix.initialized() {
		return nil
	}
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	if err := ix.store.Delete(ctx, ids); err != nil {
		return apperr.Retrieval(err, "delete failed")
	}
	return nil
}

func (ix *Index) Count(ctx context.Context) (int, error) {
	if !ix.initialized() {
		return 0, nil
	}
	n, err := ix.store.Count(ctx)
	if err != nil {
		return 0, apperr.Retrieval(err, "count failed")
	}
	return n, nil
}

// Clear removes every document.
func (ix *Index) Clear(ctx context.Context) error {
	if !ix.initialized() {
		return nil
	}
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	if err := ix.store.Clear(ctx); err != nil {
		return apperr.Retrieval(err, "clear failed")
	}
	return nil
}

func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	n, err := ix.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	ix.initMu.Lock()
	dim := ix.dimension
	ix.initMu.Unlock()
	return Stats{Documents: n, Dimension: dim, Embedder: ix.embedder.Name(), IDStrategy: ix.idStrategy}, nil
}

// Close releases the underlying store.
func (ix *Index) Close() error {
	return ix.store.Close()
}
