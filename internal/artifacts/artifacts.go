// Package artifacts loads per-candidate analyses into independent panels and
// merges the persistent ones into the candidate store.
package artifacts

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/logger"
	"github.com/spigell/hr-screener/internal/metrics"
	"github.com/spigell/hr-screener/internal/store"
)

// ErrClosed is returned when a result arrives after its panel was closed.
var ErrClosed = errors.New("panel closed")

// Client is the backend surface used by the panels.
type Client interface {
	GetCandidate(ctx context.Context, id backend.CandidateID) (*backend.Candidate, error)
	BiasAnalysis(ctx context.Context, id backend.CandidateID) (*backend.BiasReport, error)
	BlindResume(ctx context.Context, id backend.CandidateID) (string, error)
	InterviewPreparation(ctx context.Context, id backend.CandidateID) (*backend.InterviewBundle, error)
	EnrichProfile(ctx context.Context, id backend.CandidateID) (*backend.ProfileEnrichment, error)
}

// Store is where persistent artifacts are merged.
type Store interface {
	Merge(id backend.CandidateID, artifact store.Artifact) error
	Refresh(ctx context.Context, id backend.CandidateID, kinds ...store.ArtifactKind) error
	Get(id backend.CandidateID) (backend.Candidate, error)
}

// Aggregator creates panels that share one client, one store and one
// in-flight enrichment registry.
type Aggregator struct {
	client  Client
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	enrich  singleflight.Group
}

func New(client Client, st Store, log *zap.Logger, m *metrics.Metrics) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}

	return &Aggregator{
		client:  client,
		store:   st,
		logger:  log,
		metrics: m,
	}
}

func (a *Aggregator) panelLogger(kind string, id backend.CandidateID) *zap.Logger {
	return logger.WithFields(a.logger, append(logger.CandidateFields(string(id)), zap.String("panel", kind))...)
}

// State is the loading state of a panel.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
