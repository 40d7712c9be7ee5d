// Package matching scores every known candidate against one job description.
package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/metrics"
)

// Matcher scores a single candidate.
type Matcher interface {
	MatchJD(ctx context.Context, id backend.CandidateID, jobDescription string) (*backend.JDMatchResult, error)
}

// Source labels where an item's result came from.
type Source string

const (
	SourceMatched  Source = "matched"
	SourceFallback Source = "fallback"
)

// Stage is one step of the batch pipeline.
type Stage interface {
	Name() string
	Apply(ctx context.Context, b *Batch) (Step, error)
}

// Step describes the result of executing a stage.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// StageReport pairs a stage name with its step counters.
type StageReport struct {
	Name string
	Step Step
}

// Item is one candidate travelling through the pipeline.
type Item struct {
	Candidate backend.Candidate
	Result    *backend.JDMatchResult
	Source    Source
	Err       error
}

// Score returns the match score, 0 when there is no result.
func (i *Item) Score() float64 {
	if i.Result == nil {
		return 0
	}
	return i.Result.MatchScore
}

// Batch is the shared state of one run.
type Batch struct {
	JobDescription string
	Candidates     []backend.Candidate
	Items          []*Item
}

// Ranked is a candidate with the result it was ranked by.
type Ranked struct {
	Candidate backend.Candidate
	Result    backend.JDMatchResult
	Source    Source
}

// Result is the outcome of a batch run.
type Result struct {
	Ranked []Ranked
	Steps  []StageReport
}

// Options configures the orchestrator.
type Options struct {
	// RequestsPerSecond paces match requests. Zero disables pacing.
	RequestsPerSecond float64
}

type Orchestrator struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	stages  []Stage
}

func New(matcher Matcher, opts Options, logger *zap.Logger, m *metrics.Metrics) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		logger:  logger,
		metrics: m,
		stages: []Stage{
			newValidateStage(),
			newMatchStage(matcher, opts.RequestsPerSecond, logger),
			newFallbackStage(logger),
			newOmitStage(logger, m),
			newSortStage(),
		},
	}
}

// Run matches candidates in order and returns them ranked by match score.
// Only an invalid job description fails the batch. When ctx is cancelled the
// items processed so far are returned together with the context error.
func (o *Orchestrator) Run(ctx context.Context, candidates []backend.Candidate, jobDescription string) (*Result, error) {
	b := &Batch{JobDescription: jobDescription, Candidates: candidates}
	result := &Result{}

	var interrupted error
	for _, stage := range o.stages {
		step, err := stage.Apply(ctx, b)

		o.logger.Info("match stage",
			zap.String("name", stage.Name()),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)
		result.Steps = append(result.Steps, StageReport{Name: stage.Name(), Step: step})

		if err != nil {
			if isContextError(err) {
				interrupted = err
				continue
			}
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}

	for _, item := range b.Items {
		if item.Source == SourceMatched {
			o.metrics.MatchItem(metrics.OutcomeMatched)
		} else {
			o.metrics.MatchItem(metrics.OutcomeFallback)
		}
		result.Ranked = append(result.Ranked, Ranked{
			Candidate: item.Candidate,
			Result:    *item.Result,
			Source:    item.Source,
		})
	}

	return result, interrupted
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
