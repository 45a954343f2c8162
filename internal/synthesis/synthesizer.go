package synthesis

import (
	"fmt"
	"strings"

	"feedsight/internal/apperr"
	"feedsight/internal/config"
	"feedsight/internal/domain"
	"feedsight/internal/logger"
	"feedsight/internal/summarizer"
)

const (
	module         = "synthesis"
	noFeedbackText = "No feedback available for summarization."
	keyPhraseCount = 5
)

// Synthesizer builds the natural-language parts of a report.
type Synthesizer struct {
	summarizer domain.Summarizer
	thresholds Thresholds
	cfg        config.SummarizerConfig
	log        logger.Logger
}

func NewSynthesizer(sum domain.Summarizer, thresholds Thresholds, cfg config.SummarizerConfig, log logger.Logger) *Synthesizer {
	if sum == nil {
		sum = summarizer.NewTextRankSummarizer()
	}
	if cfg.MaxSentences <= 0 {
		cfg.MaxSentences = 5
	}
	if cfg.MaxDocuments <= 0 {
		cfg.MaxDocuments = 50
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 500
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Synthesizer{summarizer: sum, thresholds: thresholds, cfg: cfg, log: log}
}

// TopThemes is how many of the largest topics the report names.
func (s *Synthesizer) TopThemes() int { return s.thresholds.TopThemes }

// Summarize condenses the first MaxDocuments texts into at most MaxSentences
// sentences, truncated to maxLength characters plus "..." when longer.
// maxLength <= 0 uses the configured default.
func (s *Synthesizer) Summarize(texts []string, maxLength int) (string, error) {
	if len(texts) == 0 {
		return noFeedbackText, nil
	}
	if maxLength <= 0 {
		maxLength = s.cfg.MaxLength
	}
	if len(texts) > s.cfg.MaxDocuments {
		texts = texts[:s.cfg.MaxDocuments]
	}
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		// keep one feedback entry from running into the next sentence
		if !strings.ContainsAny(t[len(t)-1:], ".!?") {
			t += "."
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return noFeedbackText, nil
	}

	summary, err := s.summarizer.Summarize(strings.Join(parts, " "), s.cfg.MaxSentences)
	if err != nil {
		return "", apperr.Wrap(apperr.KindSynthesis, err, "summarization failed").WithStage("synthesizing")
	}
	if r := []rune(summary); len(r) > maxLength {
		summary = string(r[:maxLength]) + "..."
	}
	s.log.Debug(module, "summary generated", map[string]interface{}{"length": len(summary)})
	return summary, nil
}

// ExecutiveSummary renders the fixed executive summary template. Missing
// values render as defaults instead of failing.
func ExecutiveSummary(r *domain.Report) string {
	total := "0"
	dominant := "Neutral"
	diversity := 0.0
	topicCount := "N/A"
	var findings []string
	if r != nil {
		total = fmt.Sprintf("%d", r.Statistics.TotalFeedback)
		dominant = title(r.Statistics.DominantEmotion)
		diversity = r.Statistics.EmotionDiversity
		if r.Topics.NumTopics > 0 || r.Topics.Reason == "" {
			topicCount = fmt.Sprintf("%d", r.Statistics.TopicsIdentified)
		}
		findings = r.KeyInsights
	}
	if len(findings) > 3 {
		findings = findings[:3]
	}
	if len(findings) == 0 {
		findings = []string{"N/A"}
	}

	var b strings.Builder
	b.WriteString("EXECUTIVE SUMMARY\n=================\n\n")
	fmt.Fprintf(&b, "Feedback Analysis: %s responses analyzed\n\n", total)
	b.WriteString("Key Findings:\n")
	for _, f := range findings {
		b.WriteString("• " + f + "\n")
	}
	fmt.Fprintf(&b, "\nDominant Emotion: %s\n\n", dominant)
	fmt.Fprintf(&b, "Emotional Diversity: %.2f\n\n", diversity)
	fmt.Fprintf(&b, "Topics Identified: %s major themes\n\n", topicCount)
	b.WriteString("For detailed analysis, see full report.")
	return b.String()
}

// Input is everything BuildReport needs from the analysis stages.
type Input struct {
	FeedbackID string
	Texts      []string
	Emotion    domain.AggregatedEmotion
	Sentiment  domain.AggregatedSentiment
	Topics     domain.TopicModelingResult
	Options    domain.AnalysisOptions
}

// BuildReport assembles the complete report. It either returns a full report
// or an error, never a partial one.
func (s *Synthesizer) BuildReport(in Input) (*domain.Report, error) {
	defer logger.Timed(s.log, module, "report synthesis")()

	// emotion lines first, then polarity, then themes
	var insights []string
	insights = append(insights, s.EmotionInsights(in.Emotion, in.Options.EmotionThreshold)...)
	insights = append(insights, s.SentimentInsights(in.Sentiment)...)
	insights = append(insights, s.TopicInsights(in.Topics)...)
	recs := s.Recommendations(in.Emotion, in.Topics, in.Options.EmotionThreshold)

	report := &domain.Report{
		FeedbackID:      in.FeedbackID,
		KeyInsights:     insights,
		Recommendations: recs,
		Emotion:         in.Emotion,
		Sentiment:       in.Sentiment,
		Topics:          in.Topics,
		Statistics: domain.Statistics{
			TotalFeedback:    len(in.Texts),
			TopicsIdentified: in.Topics.NumTopics,
			DominantEmotion:  in.Emotion.Dominant,
			EmotionDiversity: in.Emotion.Diversity,
			AverageCompound:  in.Sentiment.AverageCompound,
			Outliers:         in.Topics.Outliers,
		},
	}
	if in.Options.IncludeSummary {
		summary, err := s.Summarize(in.Texts, 0)
		if err != nil {
			return nil, err
		}
		report.Summary = summary
	}
	for _, kp := range summarizer.KeyPhrases(in.Texts, keyPhraseCount) {
		report.KeyPhrases = append(report.KeyPhrases, kp.Phrase)
	}
	report.ExecutiveSummary = ExecutiveSummary(report)
	return report, nil
}
