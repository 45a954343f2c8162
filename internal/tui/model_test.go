package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsight/internal/domain"
)

type fakeSearch struct {
	queries []string
	results []domain.SearchResult
	err     error
}

func (f *fakeSearch) Search(_ context.Context, query string, k int, _ domain.Filter) ([]domain.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	for _, r := range q {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestEnterRunsSearchAndArrowsCycle(t *testing.T) {
	fake := &fakeSearch{results: []domain.SearchResult{
		{ID: "doc_0", Text: "Late again.", Distance: 0.1},
		{ID: "doc_1", Text: "Box damaged.", Distance: 0.4},
	}}
	m := New(fake, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	m = typeQuery(t, m, "late")
	require.Equal(t, []string{"late"}, fake.queries)
	assert.Equal(t, `2 results for "late"`, m.status)
	assert.Contains(t, m.renderCurrentResult(), "doc_0")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestSearchErrorShownInStatus(t *testing.T) {
	m := New(&fakeSearch{err: errors.New("index offline")}, nil)
	m = typeQuery(t, m, "x")
	assert.Equal(t, "Error: index offline", m.status)
	assert.Equal(t, "No results yet.", m.renderCurrentResult())
}

func TestReportPane(t *testing.T) {
	report := &domain.Report{
		Summary:         "Customers want faster shipping.",
		KeyInsights:     []string{"Dominant emotion: Anger (60.0% of feedback)"},
		Recommendations: []string{"Monitor feedback trends over time for emerging patterns"},
		Topics: domain.TopicModelingResult{Topics: []domain.Topic{
			{ID: 0, Keywords: []string{"shipping", "late"}, Count: 7},
		}},
		Statistics: domain.Statistics{TotalFeedback: 12, DominantEmotion: domain.Anger, TopicsIdentified: 1},
	}
	out := renderReport(report)
	assert.Contains(t, out, "Customers want faster shipping.")
	assert.Contains(t, out, "• Dominant emotion: Anger (60.0% of feedback)")
	assert.Contains(t, out, "#0 shipping, late (7)")
	assert.Contains(t, headlineOf(report), "12 entries | dominant anger")
	assert.Equal(t, "No report.", renderReport(nil))

	m := New(&fakeSearch{}, report)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneReport, next.(Model).pane)
}

func TestFormatMetadataSkipsText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "entry=2 feedback_id=b1", formatMetadata(map[string]any{"text": "x", "feedback_id": "b1", "entry": 2}))
}
