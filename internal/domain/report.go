package domain

// OutlierTopicID is the reserved id for documents not assigned to any topic.
const OutlierTopicID = -1

// Topic is one cluster of the document collection.
type Topic struct {
	ID                 int       `json:"topic_id"`
	Keywords           []string  `json:"keywords"`
	Scores             []float64 `json:"scores"`
	Count              int       `json:"count"`
	RepresentativeDocs []string  `json:"representative_docs,omitempty"`
}

// TopicModelingResult is the output of topic extraction. A result with a
// non-empty Reason is the "skipped" variant: valid, but without topics.
type TopicModelingResult struct {
	Topics      []Topic `json:"topics"`
	NumTopics   int     `json:"num_topics"`
	Outliers    int     `json:"outliers"`
	Assignments []int   `json:"topic_assignments,omitempty"`
	Reason      string  `json:"message,omitempty"`
}

// EmptyTopics builds the skipped variant with an explanatory reason.
func EmptyTopics(reason string) TopicModelingResult {
	return TopicModelingResult{Topics: []Topic{}, Reason: reason}
}

// Empty reports whether extraction produced no topics.
func (r TopicModelingResult) Empty() bool {
	return r.NumTopics == 0
}

// Statistics is the snapshot of headline numbers shown alongside a report.
type Statistics struct {
	TotalFeedback    int     `json:"total_feedback"`
	TopicsIdentified int     `json:"topics_identified"`
	DominantEmotion  Label   `json:"dominant_emotion"`
	EmotionDiversity float64 `json:"emotion_diversity"`
	AverageCompound  float64 `json:"average_compound"`
	Outliers         int     `json:"outliers"`
}

// Report is the final synthesized artifact of one analysis request.
type Report struct {
	FeedbackID       string              `json:"feedback_id,omitempty"`
	Summary          string              `json:"summary"`
	ExecutiveSummary string              `json:"executive_summary"`
	KeyInsights      []string            `json:"key_insights"`
	Recommendations  []string            `json:"recommendations"`
	KeyPhrases       []string            `json:"key_phrases,omitempty"`
	Statistics       Statistics          `json:"statistics"`
	Emotion          AggregatedEmotion   `json:"emotions"`
	Sentiment        AggregatedSentiment `json:"sentiment"`
	Topics           TopicModelingResult `json:"topics"`
}

// AnalysisOptions are the caller-recognized knobs for one analysis request.
type AnalysisOptions struct {
	IncludeSummary   bool    `json:"include_summary" yaml:"include_summary"`
	IncludeTopics    bool    `json:"include_topics" yaml:"include_topics"`
	MaxTopics        int     `json:"max_topics" yaml:"max_topics"`
	MinTopicSize     int     `json:"min_topic_size" yaml:"min_topic_size"`
	EmotionThreshold float64 `json:"emotion_threshold" yaml:"emotion_threshold"`
}

// DefaultAnalysisOptions mirrors the defaults of the presentation layer.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeSummary:   true,
		IncludeTopics:    true,
		MaxTopics:        10,
		MinTopicSize:     3,
		EmotionThreshold: 0,
	}
}
