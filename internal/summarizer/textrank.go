package summarizer

import (
	"math"
	"strings"

	"feedsight/internal/textproc"
)

const (
	damping       = 0.85
	maxIterations = 100
	tolerance     = 1e-6
)

// TextRankSummarizer extracts the most central sentences of a sentence
// similarity graph, scored with PageRank.
type TextRankSummarizer struct{}

func NewTextRankSummarizer() *TextRankSummarizer {
	return &TextRankSummarizer{}
}

// Summarize returns up to maxSentences sentences in their original order.
func (s *TextRankSummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := textproc.Sentences(text)
	if len(sentences) == 0 {
		return "", nil
	}
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " "), nil
	}
	tokens := make([]map[string]struct{}, len(sentences))
	for i, sent := range sentences {
		tokens[i] = make(map[string]struct{})
		for _, tok := range textproc.Tokenize(sent) {
			tokens[i][tok] = struct{}{}
		}
	}
	return strings.Join(pick(sentences, rank(tokens), maxSentences), " "), nil
}

// rank runs weighted PageRank over the sentence graph. Edge weight is the
// word overlap normalized by log sentence lengths.
func rank(tokens []map[string]struct{}) []float64 {
	n := len(tokens)
	weights := make([][]float64, n)
	outSum := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := similarity(tokens[i], tokens[j])
			weights[i][j], weights[j][i] = w, w
			outSum[i] += w
			outSum[j] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)
	for iter := 0; iter < maxIterations; iter++ {
		delta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if weights[j][i] > 0 {
					sum += weights[j][i] / outSum[j] * scores[j]
				}
			}
			next[i] = (1-damping)/float64(n) + damping*sum
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		if delta < tolerance {
			break
		}
	}
	return scores
}

func similarity(a, b map[string]struct{}) float64 {
	if len(a) < 2 || len(b) < 2 {
		// log(1) is zero; fall back to plain overlap for very short sentences
		return float64(overlap(a, b)) / float64(len(a)+len(b)+1)
	}
	return float64(overlap(a, b)) / (math.Log(float64(len(a))) + math.Log(float64(len(b))))
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
