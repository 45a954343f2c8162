package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"feedsight/internal/domain"
	"feedsight/internal/textproc"
)

const resultsPerQuery = 10

// SearchPort is the TUI-facing subset of the analysis service.
type SearchPort interface {
	Search(ctx context.Context, query string, k int, filter domain.Filter) ([]domain.SearchResult, error)
}

type pane int

const (
	paneResults pane = iota
	paneReport
)

// Model is the Bubble Tea model for browsing indexed feedback next to its report.
type Model struct {
	service   SearchPort
	report    *domain.Report
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.SearchResult
	status    string
	cursor    int
	ready     bool
	lastQuery string
	pane      pane
}

// New creates a new TUI model instance. report may be nil.
func New(service SearchPort, report *domain.Report) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search feedback and press Enter (Tab: report)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, report: report, input: ti, viewport: vp, status: "Loaded. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + headline, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.pane == paneResults {
				m.pane = paneReport
			} else {
				m.pane = paneResults
			}
			m.refresh()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.service.Search(context.Background(), q, resultsPerQuery, nil)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.results = nil
				} else {
					m.status = fmt.Sprintf("%d results for %q", len(res), q)
					m.results = res
					m.cursor = 0
					m.lastQuery = q
				}
				m.pane = paneResults
				m.refresh()
				return m, nil
			}
		case "down":
			if m.pane == paneResults && len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.refresh()
				return m, nil
			}
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			if m.pane == paneResults && len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.refresh()
				return m, nil
			}
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if m.pane == paneReport {
		m.viewport.SetContent(renderReport(m.report))
		return
	}
	m.viewport.SetContent(m.renderCurrentResult())
}

// View renders the TUI layout and current pane.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("feedsight")
	headline := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(headlineOf(m.report))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + headline + "\n" + body + "\n" + input + "\n" + status
}

func headlineOf(r *domain.Report) string {
	if r == nil {
		return "No report."
	}
	s := r.Statistics
	return fmt.Sprintf("%d entries | dominant %s | diversity %.2f | %d topics | compound %+.2f",
		s.TotalFeedback, s.DominantEmotion, s.EmotionDiversity, s.TopicsIdentified, s.AverageCompound)
}

func renderReport(r *domain.Report) string {
	if r == nil {
		return "No report."
	}
	var b strings.Builder
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString(sectionStyle.Render(title) + "\n")
		for _, l := range lines {
			b.WriteString("• " + l + "\n")
		}
		b.WriteString("\n")
	}
	if r.Summary != "" {
		b.WriteString(sectionStyle.Render("Summary") + "\n" + r.Summary + "\n\n")
	}
	section("Key insights", r.KeyInsights)
	section("Recommendations", r.Recommendations)
	section("Key phrases", r.KeyPhrases)
	var themes []string
	for _, t := range r.Topics.Topics {
		kw := t.Keywords
		if len(kw) > 5 {
			kw = kw[:5]
		}
		themes = append(themes, fmt.Sprintf("#%d %s (%d)", t.ID, strings.Join(kw, ", "), t.Count))
	}
	section("Themes", themes)
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s  distance=%.3f", m.cursor+1, len(m.results), r.ID, r.Distance)
	if meta := formatMetadata(r.Metadata); meta != "" {
		title += "\n" + metaStyle.Render(meta)
	}
	body := highlightBestSentence(r.Text, m.lastQuery)
	return title + "\n\n" + body
}

func formatMetadata(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if k != "text" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, meta[k])
	}
	return strings.Join(parts, " ")
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sectionStyle   = lipgloss.NewStyle().Underline(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// highlightBestSentence emphasizes the sentence sharing the most words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := textproc.Sentences(text)
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 || len(sentences) < 2 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		if i == bestIdx && bestScore > 0 {
			out[i] = highlightStyle.Render(s)
		} else {
			out[i] = s
		}
	}
	return strings.Join(out, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := textproc.Words(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range textproc.Words(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
