package emotion

import (
	"math"

	"feedsight/internal/domain"
)

// Aggregate reduces per-document scores into corpus-level statistics. The
// result depends only on the multiset of scores, never on their order.
// Empty input yields zero averages, an empty distribution and a neutral
// dominant label.
func Aggregate(scores []domain.EmotionScore) domain.AggregatedEmotion {
	agg := domain.AggregatedEmotion{
		AverageScores: make(map[domain.Label]float64, len(domain.Labels)),
		Distribution:  make(map[domain.Label]int),
		Dominant:      domain.Neutral,
		Total:         len(scores),
	}
	for _, l := range domain.Labels {
		agg.AverageScores[l] = 0
	}
	if len(scores) == 0 {
		return agg
	}

	sums := make(map[domain.Label]float64, len(domain.Labels))
	for _, s := range scores {
		for l, v := range s.Scores {
			sums[l] += v
		}
		agg.Distribution[s.Dominant]++
	}
	n := float64(len(scores))
	for l, sum := range sums {
		agg.AverageScores[l] = sum / n
	}
	agg.Dominant = dominantOf(agg.Distribution)
	agg.Diversity = Diversity(agg.Distribution)
	return agg
}

// dominantOf picks the most frequent label; ties go to canonical order and
// labels outside the canonical set lose every tie.
func dominantOf(dist map[domain.Label]int) domain.Label {
	best := domain.Neutral
	bestCount := 0
	for _, l := range domain.Labels {
		if c := dist[l]; c > bestCount {
			best, bestCount = l, c
		}
	}
	return best
}

// Diversity is the Shannon entropy of the label distribution divided by the
// entropy of a uniform spread over all canonical labels. It is 0 for empty
// input or a single label and 1 for a perfectly uniform spread.
func Diversity(dist map[domain.Label]int) float64 {
	total := 0
	for _, c := range dist {
		total += c
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range dist {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	d := h / math.Log(float64(len(domain.Labels)))
	return math.Max(0, math.Min(1, d))
}

// AggregateSentiment averages compound polarity and counts sentiment labels.
func AggregateSentiment(scores []domain.EmotionScore) domain.AggregatedSentiment {
	agg := domain.AggregatedSentiment{
		Distribution: map[string]int{
			domain.SentimentPositive: 0,
			domain.SentimentNegative: 0,
			domain.SentimentNeutral:  0,
		},
		Total: len(scores),
	}
	if len(scores) == 0 {
		return agg
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.Compound
		label := s.Sentiment
		if label == "" {
			label = domain.SentimentLabel(s.Compound)
		}
		agg.Distribution[label]++
	}
	agg.AverageCompound = sum / float64(len(scores))
	return agg
}
