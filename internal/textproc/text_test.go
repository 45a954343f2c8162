package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeDropsStopwords(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"checkout", "flow", "broken"}, Tokenize("The checkout flow is BROKEN!"))
	assert.Empty(t, Tokenize("   "))
}

func TestSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"punctuated", "Great app. Crashes often! Why?", []string{"Great app.", "Crashes often!", "Why?"}},
		{"trailing fragment", "Love it. would buy again", []string{"Love it.", "would buy again"}},
		{"no punctuation", "  slow delivery  ", []string{"slow delivery"}},
		{"repeated terminators", "Great!!! Not again?! Wait... fine", []string{"Great!!!", "Not again?!", "Wait...", "fine"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.in))
		})
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	s := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, Window(s, 2, 0))
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"c", "d", "e"}}, Window(s, 3, 1))
	assert.Nil(t, Window(nil, 3, 1))
}
