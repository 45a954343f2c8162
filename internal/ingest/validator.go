package ingest

import (
	"fmt"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/domain"
)

const previewRunes = 50

// ItemError explains why one input entry was rejected.
type ItemError struct {
	Index   int    `json:"index"`
	Preview string `json:"preview"`
	Reason  string `json:"reason"`
}

// Result is the outcome of validating a batch. Valid keeps input order.
type Result struct {
	Valid      []domain.Document `json:"-"`
	Total      int               `json:"total"`
	Errors     []ItemError       `json:"errors,omitempty"`
	Duplicates int               `json:"duplicates"`
}

// Texts returns the cleaned texts of the valid documents.
func (r Result) Texts() []string {
	out := make([]string, len(r.Valid))
	for i, d := range r.Valid {
		out[i] = d.Text
	}
	return out
}

// Err is nil when at least one entry survived validation.
func (r Result) Err() error {
	if len(r.Valid) > 0 {
		return nil
	}
	if r.Total == 0 {
		return apperr.Validation("no feedback provided")
	}
	e := apperr.Validation(fmt.Sprintf("none of the %d feedback entries passed validation", r.Total))
	e.Details = r.Errors[0].Reason
	return e
}

type Validator struct {
	policy Policy
}

func NewValidator(p Policy) *Validator {
	if p.MinWords <= 0 {
		p.MinWords = 3
	}
	return &Validator{policy: p}
}

// PolicyFrom converts the ingest config section.
func PolicyFrom(cfg config.IngestConfig) Policy {
	return Policy{MinWords: cfg.MinWords, StripHTML: cfg.StripHTML, StripURLs: cfg.StripURLs, StripEmails: cfg.StripEmails}
}

// Validate cleans each entry and keeps those with at least MinWords words.
// metadata is optional and parallel to texts. Duplicates are counted, not dropped.
func (v *Validator) Validate(texts []string, metadata []map[string]any) (Result, error) {
	if metadata != nil && len(metadata) != len(texts) {
		return Result{}, apperr.Validation(fmt.Sprintf("got %d metadata entries for %d texts", len(metadata), len(texts)))
	}
	res := Result{Total: len(texts)}
	seen := make(map[string]struct{}, len(texts))
	for i, raw := range texts {
		text := v.policy.Clean(raw)
		if text == "" {
			res.Errors = append(res.Errors, ItemError{Index: i, Preview: preview(raw), Reason: "empty text"})
			continue
		}
		if n := countWords(text); n < v.policy.MinWords {
			res.Errors = append(res.Errors, ItemError{
				Index:   i,
				Preview: preview(text),
				Reason:  fmt.Sprintf("too short (minimum %d words)", v.policy.MinWords),
			})
			continue
		}
		if _, dup := seen[text]; dup {
			res.Duplicates++
		} else {
			seen[text] = struct{}{}
		}
		doc := domain.Document{ID: fmt.Sprintf("%d", i), Text: text}
		if metadata != nil {
			doc.Metadata = metadata[i]
		}
		res.Valid = append(res.Valid, doc)
	}
	return res, nil
}

func countWords(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		return string(r[:previewRunes])
	}
	return s
}
