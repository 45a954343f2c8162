// Package textproc holds the tokenizer and sentence splitter shared by the
// embedders, the topic extractor and the summarizers.
package textproc

import (
	"regexp"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"i", "me", "my", "we", "our", "you", "your", "he", "she", "they", "them", "their", "its", "his", "her",
		"am", "do", "does", "did", "have", "has", "had", "would", "could", "there", "here", "what", "which", "who",
		"all", "any", "some", "more", "most", "other", "also", "only", "get", "got", "really", "much",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether the lowercased token carries no topical content.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

// Words lowercases text and returns every letter run, stopwords included.
func Words(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Tokenize returns the content words of text: lowercased, stopwords removed.
func Tokenize(text string) []string {
	raw := Words(text)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sentences splits text on terminal punctuation. Trailing text without
// punctuation becomes its own sentence.
func Sentences(text string) []string {
	locs := sentencePattern.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs)+1)
	last := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Window groups sentences into overlapping spans of size sentences, stepping
// by size-overlap. The last span is shorter when sentences run out.
func Window(sentences []string, size, overlap int) [][]string {
	if size <= 0 {
		size = 5
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	var spans [][]string
	for i := 0; i < len(sentences); {
		end := i + size
		if end > len(sentences) {
			end = len(sentences)
		}
		spans = append(spans, sentences[i:end])
		if end == len(sentences) {
			break
		}
		i = end - overlap
	}
	return spans
}
