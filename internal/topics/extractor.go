package topics

import (
	"context"
	"fmt"
	"sort"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/domain"
	"feedsight/internal/embedding/tfidf"
	"feedsight/internal/logger"
)

const module = "topics"

// EmbedderFactory returns a fresh embedder for one extraction. Extractions
// fit the embedder to their own batch, so instances are never shared.
type EmbedderFactory func() domain.Embedder

// Extractor clusters a document collection into topics with keyword signatures.
type Extractor struct {
	newEmbedder EmbedderFactory
	cfg         config.TopicsConfig
	log         logger.Logger
}

// NewExtractor builds an extractor. A nil factory uses a TF-IDF embedder.
func NewExtractor(newEmbedder EmbedderFactory, cfg config.TopicsConfig, log logger.Logger) *Extractor {
	if newEmbedder == nil {
		newEmbedder = func() domain.Embedder { return tfidf.NewEmbedder() }
	}
	if cfg.MinDocuments <= 0 {
		cfg.MinDocuments = 10
	}
	if cfg.KeywordsPerTopic <= 0 {
		cfg.KeywordsPerTopic = 10
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 50
	}
	if cfg.RepresentativeN <= 0 {
		cfg.RepresentativeN = 3
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Extractor{newEmbedder: newEmbedder, cfg: cfg, log: log}
}

// MinDocuments is the corpus size below which extraction is skipped.
func (e *Extractor) MinDocuments() int { return e.cfg.MinDocuments }

// Extract clusters texts. Below the minimum corpus size it returns an empty
// model without touching the embedder. Once extraction is attempted, any
// embedding failure is returned as an analysis error.
func (e *Extractor) Extract(ctx context.Context, texts []string, opts domain.AnalysisOptions) (*Model, error) {
	if len(texts) < e.cfg.MinDocuments {
		reason := fmt.Sprintf("topics skipped: %d < minimum %d", len(texts), e.cfg.MinDocuments)
		e.log.Warn(module, "skipping topic extraction", map[string]interface{}{
			"error": apperr.InsufficientData(e.cfg.MinDocuments, len(texts)).Error(),
		})
		return &Model{Result: domain.EmptyTopics(reason)}, nil
	}
	defer logger.Timed(e.log, module, "topic extraction")()

	maxTopics := opts.MaxTopics
	if maxTopics <= 0 {
		maxTopics = 10
	}
	minSize := opts.MinTopicSize
	if minSize <= 0 {
		minSize = 3
	}

	embedder := e.newEmbedder()
	if err := embedder.Prepare(texts); err != nil {
		return nil, apperr.Analysis(err, "fitting topic embedder failed").WithStage("topic_extraction")
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := embedder.Embed(ctx, t)
		if err != nil {
			return nil, apperr.Analysis(err, "embedding documents failed").WithStage("topic_extraction")
		}
		vectors[i] = v
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.Analysis(err, "topic extraction interrupted").WithStage("topic_extraction")
	}

	k := len(texts) / minSize
	if k < 1 {
		k = 1
	}
	if k > maxTopics {
		k = maxTopics
	}
	assign, centroids := kmeans(vectors, k, e.cfg.MaxIterations)

	members := make(map[int][]int)
	for i, c := range assign {
		if c < 0 || cosine(vectors[i], centroids[c]) < e.cfg.OutlierSimilarity {
			continue
		}
		members[c] = append(members[c], i)
	}

	var clusters [][]int
	for _, m := range members {
		if len(m) >= minSize {
			clusters = append(clusters, m)
		}
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})

	model := &Model{texts: texts, vectors: vectors, members: make(map[int][]int)}
	assignments := make([]int, len(texts))
	for i := range assignments {
		assignments[i] = domain.OutlierTopicID
	}
	docs := make([][]string, len(clusters))
	for id, m := range clusters {
		model.members[id] = m
		for _, i := range m {
			assignments[i] = id
			docs[id] = append(docs[id], texts[i])
		}
	}
	keywords, scores := classTFIDF(docs, e.cfg.KeywordsPerTopic)

	topics := make([]domain.Topic, len(clusters))
	assigned := 0
	for id, m := range clusters {
		topics[id] = domain.Topic{ID: id, Keywords: keywords[id], Scores: scores[id], Count: len(m)}
		assigned += len(m)
	}
	model.Result = domain.TopicModelingResult{
		Topics:      topics,
		NumTopics:   len(topics),
		Outliers:    len(texts) - assigned,
		Assignments: assignments,
	}
	if len(topics) == 0 {
		model.Result.Reason = "no cluster reached the minimum topic size"
	}

	e.log.Info(module, "topic extraction complete", map[string]interface{}{
		"documents": len(texts),
		"topics":    model.Result.NumTopics,
		"outliers":  model.Result.Outliers,
	})
	return model, nil
}

// Model is a fitted topic model over one batch. Representative documents are
// computed per topic on request.
type Model struct {
	Result domain.TopicModelingResult

	texts   []string
	vectors [][]float64
	members map[int][]int
}

// RepresentativeDocs returns up to n member texts of topic id closest to its
// centroid, nearest first. Unknown ids and the outlier id yield nil.
func (m *Model) RepresentativeDocs(id, n int) []string {
	idx := m.members[id]
	if len(idx) == 0 || n <= 0 {
		return nil
	}
	centroid := centroidOf(m.vectors, idx)
	ranked := append([]int(nil), idx...)
	sim := make(map[int]float64, len(ranked))
	for _, i := range ranked {
		sim[i] = cosine(m.vectors[i], centroid)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return sim[ranked[a]] > sim[ranked[b]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for j, i := range ranked {
		out[j] = m.texts[i]
	}
	return out
}

// WithRepresentatives returns a copy of the result whose first limit topics
// carry n representative documents each. limit <= 0 means every topic.
func (m *Model) WithRepresentatives(limit, n int) domain.TopicModelingResult {
	res := m.Result
	res.Topics = append([]domain.Topic(nil), m.Result.Topics...)
	for i := range res.Topics {
		if limit > 0 && i >= limit {
			break
		}
		res.Topics[i].RepresentativeDocs = m.RepresentativeDocs(res.Topics[i].ID, n)
	}
	return res
}

// RepresentativeN is the configured number of representative docs per topic.
func (e *Extractor) RepresentativeN() int { return e.cfg.RepresentativeN }
