package topics

import (
	"math"
	"sort"

	"feedsight/internal/textproc"
)

// classTFIDF ranks terms per cluster by class-based TF-IDF: term frequency
// within the cluster, weighted by log(1 + A/f) where A is the average number
// of words per cluster and f the term's frequency over all clusters.
func classTFIDF(clusters [][]string, topN int) (keywords [][]string, scores [][]float64) {
	tf := make([]map[string]int, len(clusters))
	words := make([]int, len(clusters))
	global := make(map[string]int)
	for c, docs := range clusters {
		tf[c] = make(map[string]int)
		for _, doc := range docs {
			for _, tok := range textproc.Tokenize(doc) {
				tf[c][tok]++
				global[tok]++
				words[c]++
			}
		}
	}
	totalWords := 0
	for _, w := range words {
		totalWords += w
	}
	avg := 0.0
	if len(clusters) > 0 {
		avg = float64(totalWords) / float64(len(clusters))
	}

	keywords = make([][]string, len(clusters))
	scores = make([][]float64, len(clusters))
	for c := range clusters {
		type termScore struct {
			term  string
			score float64
		}
		ranked := make([]termScore, 0, len(tf[c]))
		for term, count := range tf[c] {
			w := float64(count) / float64(words[c])
			ranked = append(ranked, termScore{term, w * math.Log(1+avg/float64(global[term]))})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].score != ranked[j].score {
				return ranked[i].score > ranked[j].score
			}
			return ranked[i].term < ranked[j].term
		})
		if len(ranked) > topN {
			ranked = ranked[:topN]
		}
		keywords[c] = make([]string, len(ranked))
		scores[c] = make([]float64, len(ranked))
		for i, r := range ranked {
			keywords[c][i] = r.term
			scores[c][i] = r.score
		}
	}
	return keywords, scores
}
