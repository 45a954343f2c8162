package emotion

import (
	"context"
	"math"
	"strings"

	"feedsight/internal/domain"
	"feedsight/internal/textproc"
)

const (
	// normalization constant of the compound score
	alpha = 15.0
	// negated valence is flipped and damped by this factor
	negationScalar = -0.74
	negationWindow = 3
	exclaimBoost   = 0.292
	maxExclaims    = 4
	// weight of the implicit neutral label, so text without emotion words stays neutral
	neutralPrior = 1.0
)

// LexiconScorer scores emotions and polarity from a word lexicon with
// negation and intensity handling. It is deterministic and needs no model.
type LexiconScorer struct{}

func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

// Score returns one EmotionScore per text, in input order.
func (s *LexiconScorer) Score(ctx context.Context, texts []string) ([]domain.EmotionScore, error) {
	out := make([]domain.EmotionScore, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.ScoreOne(text)
	}
	return out, nil
}

// ScoreOne scores a single text. Empty or whitespace-only text yields the
// neutral score.
func (s *LexiconScorer) ScoreOne(text string) domain.EmotionScore {
	if strings.TrimSpace(text) == "" {
		return domain.NeutralScore()
	}
	words := textproc.Words(text)
	if len(words) == 0 {
		return domain.NeutralScore()
	}

	weights := make(map[domain.Label]float64, len(domain.Labels))
	var valences []float64
	neutralWords := 0
	for i, w := range words {
		e, ok := lexicon[w]
		if !ok {
			neutralWords++
			continue
		}
		v := e.valence
		weight := 1.0
		if i > 0 {
			if b, ok := boosters[words[i-1]]; ok {
				if v != 0 {
					v += math.Copysign(1, v) * b
				}
				weight += b
			}
		}
		negated := isNegated(words, i)
		if negated {
			v *= negationScalar
		}
		valences = append(valences, v)
		if e.label != "" && !negated {
			weights[e.label] += weight
		}
	}

	score := polarity(valences, neutralWords, strings.Count(text, "!"))
	score.Scores = normalize(weights)
	score.Dominant = domain.ArgmaxLabel(score.Scores)
	return score
}

func isNegated(words []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}
	for _, w := range words[start:i] {
		if _, ok := negations[w]; ok {
			return true
		}
	}
	return false
}

func polarity(valences []float64, neutralWords, exclaims int) domain.EmotionScore {
	sum := 0.0
	posSum, negSum := 0.0, 0.0
	neu := float64(neutralWords)
	for _, v := range valences {
		sum += v
		switch {
		case v > 0:
			posSum += v + 1
		case v < 0:
			negSum += v - 1
		default:
			neu++
		}
	}
	if sum != 0 {
		if exclaims > maxExclaims {
			exclaims = maxExclaims
		}
		sum += math.Copysign(float64(exclaims)*exclaimBoost, sum)
	}

	res := domain.EmotionScore{}
	res.Compound = sum / math.Sqrt(sum*sum+alpha)
	total := posSum + math.Abs(negSum) + neu
	if total > 0 {
		res.Pos = round3(posSum / total)
		res.Neg = round3(math.Abs(negSum) / total)
		res.Neu = round3(neu / total)
	} else {
		res.Neu = 1
	}
	res.Compound = round4(res.Compound)
	res.Sentiment = domain.SentimentLabel(res.Compound)
	return res
}

func normalize(weights map[domain.Label]float64) map[domain.Label]float64 {
	total := neutralPrior
	for _, w := range weights {
		total += w
	}
	scores := make(map[domain.Label]float64, len(domain.Labels))
	for _, l := range domain.Labels {
		scores[l] = weights[l] / total
	}
	scores[domain.Neutral] = (weights[domain.Neutral] + neutralPrior) / total
	return scores
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
