package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/metrics"
)

var errEmptyResult = errors.New("empty match result")

type validateStage struct{}

func newValidateStage() Stage { return validateStage{} }

func (validateStage) Name() string { return "validate" }

func (validateStage) Apply(_ context.Context, b *Batch) (Step, error) {
	n := len(b.Candidates)
	if strings.TrimSpace(b.JobDescription) == "" {
		return Step{Initial: n, Dropped: n}, &backend.ValidationError{Field: "job description", Reason: "please enter a job description"}
	}

	return Step{Initial: n, Left: n}, nil
}

type matchStage struct {
	matcher Matcher
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newMatchStage(matcher Matcher, rps float64, logger *zap.Logger) Stage {
	s := &matchStage{matcher: matcher, logger: logger}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s
}

func (s *matchStage) Name() string { return "match" }

// Apply calls the matcher once per candidate, strictly in order. Failures stay
// on the item for the fallback stage.
func (s *matchStage) Apply(ctx context.Context, b *Batch) (Step, error) {
	initial := len(b.Candidates)
	b.Items = make([]*Item, 0, initial)

	failed := 0
	for _, candidate := range b.Candidates {
		if err := ctx.Err(); err != nil {
			return s.step(initial, b, failed), err
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return s.step(initial, b, failed), ctxErr
				}
				return s.step(initial, b, failed), fmt.Errorf("pacing: %w", context.DeadlineExceeded)
			}
		}

		item := &Item{Candidate: candidate}
		result, err := s.matcher.MatchJD(ctx, candidate.ID, b.JobDescription)
		switch {
		case err != nil:
			s.logger.Warn("matching candidate failed",
				zap.String("candidate_id", string(candidate.ID)),
				zap.Error(err),
			)
			item.Err = err
			failed++
		case result == nil:
			item.Err = errEmptyResult
			failed++
		default:
			item.Result = result
			item.Source = SourceMatched
		}

		b.Items = append(b.Items, item)
	}

	return s.step(initial, b, failed), nil
}

func (s *matchStage) step(initial int, b *Batch, failed int) Step {
	return Step{Initial: initial, Dropped: initial - (len(b.Items) - failed), Left: len(b.Items) - failed}
}

type fallbackStage struct {
	logger *zap.Logger
}

func newFallbackStage(logger *zap.Logger) Stage { return &fallbackStage{logger: logger} }

func (s *fallbackStage) Name() string { return "fallback" }

// Apply gives failed items the candidate's previously stored match result.
func (s *fallbackStage) Apply(_ context.Context, b *Batch) (Step, error) {
	failed, recovered := 0, 0
	for _, item := range b.Items {
		if item.Result != nil {
			continue
		}
		failed++

		prior := item.Candidate.JDMatchResult
		if prior == nil {
			continue
		}

		cp := *prior
		item.Result = &cp
		item.Source = SourceFallback
		recovered++

		s.logger.Debug("using stored match result",
			zap.String("candidate_id", string(item.Candidate.ID)),
			zap.Float64("match_score", cp.MatchScore),
		)
	}

	return Step{Initial: failed, Dropped: failed - recovered, Left: recovered}, nil
}

type omitStage struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func newOmitStage(logger *zap.Logger, m *metrics.Metrics) Stage {
	return &omitStage{logger: logger, metrics: m}
}

func (s *omitStage) Name() string { return "omit" }

// Apply drops items that have neither a fresh nor a stored result.
func (s *omitStage) Apply(_ context.Context, b *Batch) (Step, error) {
	initial := len(b.Items)
	kept := b.Items[:0]
	for _, item := range b.Items {
		if item.Result == nil {
			s.logger.Warn("candidate omitted from match results",
				zap.String("candidate_id", string(item.Candidate.ID)),
				zap.Error(item.Err),
			)
			s.metrics.MatchItem(metrics.OutcomeOmitted)
			continue
		}
		kept = append(kept, item)
	}
	b.Items = kept

	return Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

type sortStage struct{}

func newSortStage() Stage { return sortStage{} }

func (sortStage) Name() string { return "sort" }

// Apply orders items by match score, highest first. Ties keep accumulation order.
func (sortStage) Apply(_ context.Context, b *Batch) (Step, error) {
	sort.SliceStable(b.Items, func(i, j int) bool {
		return b.Items[i].Score() > b.Items[j].Score()
	})

	n := len(b.Items)
	return Step{Initial: n, Left: n}, nil
}
