package service

import (
	"context"
	"fmt"
	"strings"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/feedback"
	"feedsight/internal/retrieval"
	"feedsight/internal/textproc"
)

const (
	chunkSentences = 5
	chunkOverlap   = 1
)

// Submit validates texts and stores the surviving entries as a new batch.
func (s *AnalysisService) Submit(ctx context.Context, name string, texts []string, metadata []map[string]any) (*feedback.Batch, error) {
	if s.repo == nil {
		return nil, apperr.New(apperr.KindConfiguration, "feedback repository not configured")
	}
	res, err := s.validator.Validate(texts, metadata)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		return nil, stageError(StageValidating, err)
	}
	var meta []map[string]any
	if metadata != nil {
		meta = make([]map[string]any, len(res.Valid))
		for i, d := range res.Valid {
			meta[i] = d.Metadata
		}
	}
	b, err := s.repo.Create(ctx, name, res.Texts(), meta)
	if err != nil {
		return nil, stageError(StageLoading, err)
	}
	s.log.Info(module, "feedback batch stored", map[string]interface{}{
		"feedback_id": b.ID,
		"entries":     len(b.Texts),
		"rejected":    len(res.Errors),
	})
	return b, nil
}

// IndexFeedback adds every entry of a stored batch to the retrieval index,
// tagged with feedback_id. Entries longer than a few sentences are split into
// overlapping windows. Ids are derived from the batch, so re-indexing a batch
// replaces its earlier records.
func (s *AnalysisService) IndexFeedback(ctx context.Context, feedbackID string) ([]string, error) {
	if s.repo == nil || s.index == nil {
		return nil, apperr.New(apperr.KindConfiguration, "indexing needs a feedback repository and a retrieval index")
	}
	b, err := s.repo.Get(ctx, feedbackID)
	if err != nil {
		return nil, stageError(StageLoading, err)
	}
	var (
		docs []string
		meta []map[string]any
		ids  []string
	)
	for i, text := range b.Texts {
		var entryMeta map[string]any
		if i < len(b.Metadata) {
			entryMeta = b.Metadata[i]
		}
		for j, chunk := range chunkEntry(text) {
			m := map[string]any{"text": chunk, "feedback_id": feedbackID, "entry": i, "chunk": j}
			for k, v := range entryMeta {
				if _, reserved := m[k]; !reserved {
					m[k] = v
				}
			}
			docs = append(docs, chunk)
			meta = append(meta, m)
			ids = append(ids, fmt.Sprintf("%s_%d_%d", feedbackID, i, j))
		}
	}
	out, err := s.index.Add(ctx, docs, meta, ids)
	if err != nil {
		return nil, stageError(StageIndexing, err)
	}
	return out, nil
}

// IndexTexts adds loose texts to the index with generated ids.
func (s *AnalysisService) IndexTexts(ctx context.Context, texts []string, metadata []map[string]any) ([]string, error) {
	if s.index == nil {
		return nil, apperr.New(apperr.KindConfiguration, "retrieval index not configured")
	}
	ids, err := s.index.Add(ctx, texts, metadata, nil)
	if err != nil {
		return nil, stageError(StageIndexing, err)
	}
	return ids, nil
}

// Search queries the retrieval index.
func (s *AnalysisService) Search(ctx context.Context, query string, k int, filter domain.Filter) ([]domain.SearchResult, error) {
	if s.index == nil {
		return nil, apperr.New(apperr.KindConfiguration, "retrieval index not configured")
	}
	return s.index.Search(ctx, query, k, filter)
}

// Index exposes the retrieval index for direct document operations.
func (s *AnalysisService) Index() *retrieval.Index { return s.index }

func chunkEntry(text string) []string {
	sentences := textproc.Sentences(text)
	if len(sentences) <= chunkSentences {
		return []string{text}
	}
	spans := textproc.Window(sentences, chunkSentences, chunkOverlap)
	out := make([]string, len(spans))
	for i, span := range spans {
		out[i] = strings.Join(span, " ")
	}
	return out
}
