package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"feedsight/internal/apperr"
	"feedsight/internal/domain"
	"feedsight/internal/emotion"
	"feedsight/internal/feedback"
	"feedsight/internal/ingest"
	"feedsight/internal/logger"
	"feedsight/internal/retrieval"
	"feedsight/internal/synthesis"
	"feedsight/internal/topics"
)

const module = "orchestrator"

// Stage names attached to errors.
const (
	StageValidating      = "validating"
	StageAnalyzing       = "analyzing"
	StageScoring         = "scoring"
	StageTopicExtraction = "topic_extraction"
	StageSynthesizing    = "synthesizing"
	StageLoading         = "loading"
	StageIndexing        = "indexing"
)

// AnalysisService sequences validation, scoring, topic extraction and
// synthesis for one batch at a time. Runs share no mutable state except the
// retrieval index and the feedback repository.
type AnalysisService struct {
	validator   *ingest.Validator
	scorer      emotion.Scorer
	extractor   *topics.Extractor
	synthesizer *synthesis.Synthesizer
	index       *retrieval.Index
	repo        feedback.Repository
	timeout     time.Duration
	log         logger.Logger
}

// Deps are the components an AnalysisService drives. Index and Repo are
// optional; operations that need them fail with a configuration error.
type Deps struct {
	Validator   *ingest.Validator
	Scorer      emotion.Scorer
	Extractor   *topics.Extractor
	Synthesizer *synthesis.Synthesizer
	Index       *retrieval.Index
	Repo        feedback.Repository

	// Timeout bounds a whole run; zero disables it.
	Timeout time.Duration
	Log     logger.Logger
}

func NewAnalysisService(d Deps) *AnalysisService {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Validator == nil {
		d.Validator = ingest.NewValidator(ingest.DefaultPolicy())
	}
	return &AnalysisService{
		validator:   d.Validator,
		scorer:      d.Scorer,
		extractor:   d.Extractor,
		synthesizer: d.Synthesizer,
		index:       d.Index,
		repo:        d.Repo,
		timeout:     d.Timeout,
		log:         d.Log,
	}
}

// Request is one analysis invocation.
type Request struct {
	FeedbackID string
	Texts      []string
	Metadata   []map[string]any
	Options    domain.AnalysisOptions
}

// Analyze runs a fresh analysis and returns its report.
func (s *AnalysisService) Analyze(ctx context.Context, texts []string, opts domain.AnalysisOptions) (*domain.Report, error) {
	return s.Execute(ctx, NewRun(), Request{Texts: texts, Options: opts})
}

// AnalyzeFeedback re-materializes a stored batch and analyzes it.
func (s *AnalysisService) AnalyzeFeedback(ctx context.Context, feedbackID string, opts domain.AnalysisOptions) (*domain.Report, error) {
	if s.repo == nil {
		return nil, apperr.New(apperr.KindConfiguration, "feedback repository not configured")
	}
	b, err := s.repo.Get(ctx, feedbackID)
	if err != nil {
		return nil, stageError(StageLoading, err)
	}
	return s.Execute(ctx, NewRun(), Request{FeedbackID: feedbackID, Texts: b.Texts, Metadata: b.Metadata, Options: opts})
}

// Execute drives run through the pipeline. It returns either a complete
// report with the run in StateComplete, or an error with the run in
// StateFailed.
func (s *AnalysisService) Execute(ctx context.Context, run *Run, req Request) (*domain.Report, error) {
	if run.State() != StateIdle {
		return nil, apperr.New(apperr.KindInternal, "analysis run already used")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	defer logger.Timed(s.log, module, "feedback analysis")()

	s.enter(run, StateValidating)
	validation, err := s.validator.Validate(req.Texts, req.Metadata)
	if err == nil {
		err = validation.Err()
	}
	run.mu.Lock()
	run.validation = validation
	run.mu.Unlock()
	if err != nil {
		return nil, s.fail(ctx, run, StageValidating, err)
	}
	if validation.Duplicates > 0 || len(validation.Errors) > 0 {
		s.log.Info(module, "validation dropped or flagged entries", map[string]interface{}{
			"total":      validation.Total,
			"invalid":    len(validation.Errors),
			"duplicates": validation.Duplicates,
		})
	}
	texts := validation.Texts()

	s.enter(run, StateAnalyzing)
	scores, model, err := s.analyze(ctx, texts, req.Options)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, s.fail(ctx, run, StageAnalyzing, err)
	}

	s.enter(run, StateSynthesizing)
	report, err := s.synthesizer.BuildReport(synthesis.Input{
		FeedbackID: req.FeedbackID,
		Texts:      texts,
		Emotion:    emotion.Aggregate(scores),
		Sentiment:  emotion.AggregateSentiment(scores),
		Topics:     model,
		Options:    req.Options,
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, s.fail(ctx, run, StageSynthesizing, err)
	}

	run.mu.Lock()
	run.report = report
	run.mu.Unlock()
	s.enter(run, StateComplete)
	return report, nil
}

// analyze scores and clusters texts concurrently; both must finish.
func (s *AnalysisService) analyze(ctx context.Context, texts []string, opts domain.AnalysisOptions) ([]domain.EmotionScore, domain.TopicModelingResult, error) {
	var (
		scores []domain.EmotionScore
		model  = domain.EmptyTopics("topics disabled by request")
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.scorer.Score(gctx, texts)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				err = apperr.Scoring(err, "emotion scoring failed")
			}
			return stageError(StageScoring, err)
		}
		if len(res) != len(texts) {
			return apperr.Scoring(
				fmt.Errorf("got %d scores for %d texts", len(res), len(texts)), "emotion scoring failed",
			).WithStage(StageScoring)
		}
		scores = res
		return nil
	})
	if opts.IncludeTopics && s.extractor != nil {
		g.Go(func() error {
			m, err := s.extractor.Extract(gctx, texts, opts)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					err = apperr.Analysis(err, "topic extraction failed")
				}
				return stageError(StageTopicExtraction, err)
			}
			// only the themes the report names get representative docs; the
			// rest stay on the model until asked for
			model = m.WithRepresentatives(s.synthesizer.TopThemes(), s.extractor.RepresentativeN())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.TopicModelingResult{}, err
	}
	return scores, model, nil
}

func (s *AnalysisService) enter(run *Run, to State) {
	if err := run.advance(to); err != nil {
		// transitions are driven only from Execute in a fixed order
		panic(err)
	}
	s.log.Debug(module, "state changed", map[string]interface{}{"state": to.String()})
}

// fail moves run to StateFailed and returns a structured error naming the
// stage. An expired deadline is reported as a timeout.
func (s *AnalysisService) fail(ctx context.Context, run *Run, stage string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if st := apperr.StageOf(err); st != "" {
			stage = st
		}
		err = apperr.Wrap(apperr.KindTimeout, ctx.Err(), "analysis timed out").WithStage(stage)
	} else {
		err = stageError(stage, err)
	}
	run.mu.Lock()
	run.err = err
	run.mu.Unlock()
	_ = run.advance(StateFailed)
	s.log.Error(module, "analysis failed", map[string]interface{}{
		"stage": apperr.StageOf(err),
		"kind":  string(apperr.KindOf(err)),
		"error": err,
	})
	return err
}

// stageError attributes err to stage unless it already names one.
func stageError(stage string, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		if e.Stage != "" {
			return err
		}
		return e.WithStage(stage)
	}
	return apperr.Wrap(apperr.KindInternal, err, "unexpected failure").WithStage(stage)
}
