package summarizer

import (
	"fmt"

	"feedsight/internal/domain"
)

// New returns the summarizer registered under name.
func New(name string) (domain.Summarizer, error) {
	switch name {
	case "", "textrank":
		return NewTextRankSummarizer(), nil
	case "frequency":
		return NewFrequencySummarizer(), nil
	default:
		return nil, fmt.Errorf("unknown summarizer type: %s", name)
	}
}
