package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"feedsight/internal/domain"
)

const fallbackRecommendation = "Monitor feedback trends over time for emerging patterns"

// Synthesize turns aggregated emotions and topics into insights and
// recommendations. Recommendations are never empty. Emotion callouts require
// the label's average score to reach emotionThreshold.
func (s *Synthesizer) Synthesize(emotion domain.AggregatedEmotion, topics domain.TopicModelingResult, emotionThreshold float64) (insights, recommendations []string) {
	insights = append(s.EmotionInsights(emotion, emotionThreshold), s.TopicInsights(topics)...)
	recommendations = s.Recommendations(emotion, topics, emotionThreshold)
	return insights, recommendations
}

// EmotionInsights applies the emotion rule table. Share-based rules are
// skipped entirely when no document carries a dominant label.
func (s *Synthesizer) EmotionInsights(emotion domain.AggregatedEmotion, emotionThreshold float64) []string {
	var insights []string
	total := distributionTotal(emotion.Distribution)
	if total == 0 {
		return insights
	}
	th := s.thresholds

	if share := emotion.Share(emotion.Dominant); share > th.DominantShare {
		insights = append(insights, fmt.Sprintf("Dominant emotion: %s (%s of feedback)", title(emotion.Dominant), pct(share)))
	} else {
		parts := make([]string, 0, 3)
		for _, l := range rankedLabels(emotion.Distribution) {
			if len(parts) == 3 {
				break
			}
			parts = append(parts, fmt.Sprintf("%s (%s)", title(l), pct(emotion.Share(l))))
		}
		insights = append(insights, "Mixed emotions detected: "+strings.Join(parts, ", "))
	}

	present := func(l domain.Label) bool {
		return emotion.AverageScores[l] >= emotionThreshold
	}
	if share := emotion.Share(domain.Joy); share > th.JoyInsight && present(domain.Joy) {
		insights = append(insights, fmt.Sprintf("High levels of joy and satisfaction (%s)", pct(share)))
	}
	if share := emotion.Share(domain.Sadness); share > th.SadnessInsight && present(domain.Sadness) {
		insights = append(insights, fmt.Sprintf("Notable sadness detected (%s) - investigate causes", pct(share)))
	}
	if share := emotion.Share(domain.Anger); share > th.AngerInsight && present(domain.Anger) {
		insights = append(insights, fmt.Sprintf("Significant anger present (%s) - requires immediate attention", pct(share)))
	}
	if share := emotion.Share(domain.Fear); share > th.FearInsight && present(domain.Fear) {
		insights = append(insights, fmt.Sprintf("Fear/anxiety detected (%s) - address concerns", pct(share)))
	}

	switch {
	case emotion.Diversity > th.HighDiversity:
		insights = append(insights, "High emotional diversity - wide range of customer experiences")
	case emotion.Diversity < th.LowDiversity:
		insights = append(insights, "Low emotional diversity - consistent customer experience")
	}
	return insights
}

// TopicInsights describes the extracted themes. A skipped extraction yields a
// single informational line carrying the reason.
func (s *Synthesizer) TopicInsights(topics domain.TopicModelingResult) []string {
	if topics.NumTopics == 0 || len(topics.Topics) == 0 {
		msg := "No distinct topics identified in feedback"
		if topics.Reason != "" {
			msg += " (" + topics.Reason + ")"
		}
		return []string{msg}
	}

	insights := []string{fmt.Sprintf("Identified %d distinct discussion themes", topics.NumTopics)}
	sorted := bySize(topics.Topics)
	for i, t := range sorted {
		if i == s.thresholds.TopThemes {
			break
		}
		insights = append(insights, fmt.Sprintf("Theme #%d: %s (%d mentions)", i+1, topKeywords(t, 3), t.Count))
	}

	total := topics.Outliers
	for _, t := range topics.Topics {
		total += t.Count
	}
	if total > 0 {
		if share := float64(sorted[0].Count) / float64(total); share > s.thresholds.TopThemeShare {
			insights = append(insights, fmt.Sprintf("Dominant theme accounts for %s of feedback", pct(share)))
		}
	}
	if topics.Outliers > 0 {
		insights = append(insights, fmt.Sprintf("%d feedback entries don't fit main themes (unique concerns)", topics.Outliers))
	}
	return insights
}

// Recommendations mirrors the insight rules with action-oriented wording and
// falls back to a generic monitoring recommendation.
func (s *Synthesizer) Recommendations(emotion domain.AggregatedEmotion, topics domain.TopicModelingResult, emotionThreshold float64) []string {
	var recs []string
	th := s.thresholds
	if distributionTotal(emotion.Distribution) > 0 {
		present := func(l domain.Label) bool {
			return emotion.AverageScores[l] >= emotionThreshold
		}
		if emotion.Share(domain.Anger) > th.AngerRecommend && present(domain.Anger) {
			recs = append(recs, "Priority: Address anger-inducing issues to improve satisfaction")
		}
		if emotion.Share(domain.Sadness) > th.SadnessRecommend && present(domain.Sadness) {
			recs = append(recs, "Investigate causes of sadness in customer feedback")
		}
		if emotion.Share(domain.Fear) > th.FearRecommend && present(domain.Fear) {
			recs = append(recs, "Address customer concerns and anxieties to build trust")
		}
		if emotion.Share(domain.Joy) > th.JoyRecommend && present(domain.Joy) {
			recs = append(recs, "Leverage positive experiences in marketing and testimonials")
		}
	}
	if len(topics.Topics) > 0 {
		top := bySize(topics.Topics)[0]
		if kw := topKeywords(top, 3); kw != "" {
			recs = append(recs, "Focus on most discussed theme: "+kw)
		}
	}
	if len(recs) == 0 {
		recs = append(recs, fallbackRecommendation)
	}
	return recs
}

// SentimentInsights reports overall polarity.
func (s *Synthesizer) SentimentInsights(sent domain.AggregatedSentiment) []string {
	if sent.Total == 0 {
		return nil
	}
	overall := domain.SentimentLabel(sent.AverageCompound)
	pos := float64(sent.Distribution[domain.SentimentPositive]) / float64(sent.Total)
	neg := float64(sent.Distribution[domain.SentimentNegative]) / float64(sent.Total)
	return []string{fmt.Sprintf("Overall sentiment is %s (average compound %.2f; %s positive, %s negative)",
		overall, sent.AverageCompound, pct(pos), pct(neg))}
}

func distributionTotal(dist map[domain.Label]int) int {
	total := 0
	for _, c := range dist {
		total += c
	}
	return total
}

// rankedLabels orders labels by count, ties in canonical order.
func rankedLabels(dist map[domain.Label]int) []domain.Label {
	var labels []domain.Label
	for _, l := range domain.Labels {
		if dist[l] > 0 {
			labels = append(labels, l)
		}
	}
	sort.SliceStable(labels, func(i, j int) bool { return dist[labels[i]] > dist[labels[j]] })
	return labels
}

func bySize(topics []domain.Topic) []domain.Topic {
	sorted := append([]domain.Topic(nil), topics...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	return sorted
}

func topKeywords(t domain.Topic, n int) string {
	kw := t.Keywords
	if len(kw) > n {
		kw = kw[:n]
	}
	return strings.Join(kw, ", ")
}

func pct(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

func title(l domain.Label) string {
	if l == "" {
		return "Neutral"
	}
	s := string(l)
	return strings.ToUpper(s[:1]) + s[1:]
}
