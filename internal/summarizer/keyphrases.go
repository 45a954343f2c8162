package summarizer

import (
	"sort"
	"strings"

	"feedsight/internal/textproc"
)

// KeyPhrase is a candidate phrase with its RAKE score.
type KeyPhrase struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

const maxPhraseWords = 3

// KeyPhrases extracts the top n phrases across texts with RAKE: candidates are
// runs of content words split at stopwords and punctuation, scored by the sum
// of word degree over word frequency.
func KeyPhrases(texts []string, n int) []KeyPhrase {
	if n <= 0 {
		return nil
	}
	var candidates [][]string
	for _, text := range texts {
		for _, sent := range textproc.Sentences(text) {
			for _, clause := range strings.FieldsFunc(sent, isClauseBreak) {
				candidates = append(candidates, runs(textproc.Words(clause))...)
			}
		}
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, c := range candidates {
		for _, w := range c {
			freq[w]++
			degree[w] += float64(len(c))
		}
	}

	best := make(map[string]float64)
	seen := make(map[string]int)
	for _, c := range candidates {
		phrase := strings.Join(c, " ")
		score := 0.0
		for _, w := range c {
			score += degree[w] / freq[w]
		}
		best[phrase] = score
		seen[phrase]++
	}

	out := make([]KeyPhrase, 0, len(best))
	for p, s := range best {
		// repeated phrases across feedback are what matters in aggregate
		out = append(out, KeyPhrase{Phrase: p, Score: s * float64(seen[p])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Phrase < out[j].Phrase
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func runs(words []string) [][]string {
	var out [][]string
	var cur []string
	flush := func() {
		if len(cur) > 0 && len(cur) <= maxPhraseWords {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, w := range words {
		if textproc.IsStopword(w) || len([]rune(w)) < 3 {
			flush()
			continue
		}
		cur = append(cur, w)
	}
	flush()
	return out
}

func isClauseBreak(r rune) bool {
	switch r {
	case ',', ';', ':', '(', ')', '"', '-':
		return true
	}
	return false
}
