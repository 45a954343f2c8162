package domain

// Label is one of the canonical emotion categories.
type Label string

const (
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Fear     Label = "fear"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
)

// Labels is the canonical label order. Every tie between labels is broken by it.
var Labels = []Label{Joy, Sadness, Anger, Fear, Surprise, Neutral}

// Sentiment polarity labels derived from the compound score.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// EmotionScore is the per-document scorer output.
type EmotionScore struct {
	Scores    map[Label]float64 `json:"scores"`
	Dominant  Label             `json:"dominant_emotion"`
	Compound  float64           `json:"compound"`
	Pos       float64           `json:"pos"`
	Neg       float64           `json:"neg"`
	Neu       float64           `json:"neu"`
	Sentiment string            `json:"sentiment"`
}

// NeutralScore is the degenerate score used for empty input.
func NeutralScore() EmotionScore {
	scores := make(map[Label]float64, len(Labels))
	for _, l := range Labels {
		scores[l] = 0
	}
	scores[Neutral] = 1
	return EmotionScore{
		Scores:    scores,
		Dominant:  Neutral,
		Neu:       1,
		Sentiment: SentimentNeutral,
	}
}

// ArgmaxLabel returns the label with the highest score, ties going to the
// earlier label in canonical order.
func ArgmaxLabel(scores map[Label]float64) Label {
	best := Neutral
	bestScore := -1.0
	for _, l := range Labels {
		if s, ok := scores[l]; ok && s > bestScore {
			best = l
			bestScore = s
		}
	}
	return best
}

// SentimentLabel maps a compound polarity score onto positive/negative/neutral.
func SentimentLabel(compound float64) string {
	switch {
	case compound >= 0.05:
		return SentimentPositive
	case compound <= -0.05:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// AggregatedEmotion is the corpus-level reduction of a batch of EmotionScores.
type AggregatedEmotion struct {
	AverageScores map[Label]float64 `json:"average_scores"`
	Distribution  map[Label]int     `json:"emotion_distribution"`
	Dominant      Label             `json:"dominant_emotion"`
	Diversity     float64           `json:"emotion_diversity"`
	Total         int               `json:"total"`
}

// Share returns the fraction of documents whose dominant label is l.
// It returns 0 when the distribution is empty.
func (a AggregatedEmotion) Share(l Label) float64 {
	total := 0
	for _, c := range a.Distribution {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(a.Distribution[l]) / float64(total)
}

// AggregatedSentiment summarizes polarity across a batch.
type AggregatedSentiment struct {
	AverageCompound float64        `json:"average_compound"`
	Distribution    map[string]int `json:"sentiment_distribution"`
	Total           int            `json:"total"`
}
