package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
)

// Source is the part of the backend client the store reads from.
type Source interface {
	ListCandidates(ctx context.Context) ([]backend.Candidate, error)
	GetCandidate(ctx context.Context, id backend.CandidateID) (*backend.Candidate, error)
}

// Store keeps the client side copy of every known candidate.
// Reads return copies; writes are serialized.
type Store struct {
	mu         sync.RWMutex
	source     Source
	logger     *zap.Logger
	candidates []backend.Candidate
	index      map[backend.CandidateID]int
}

func New(source Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		source: source,
		logger: logger,
		index:  make(map[backend.CandidateID]int),
	}
}

// Load replaces the whole snapshot with the backend list.
// On failure the previous contents are kept and the error is returned.
func (s *Store) Load(ctx context.Context) ([]backend.Candidate, error) {
	candidates, err := s.source.ListCandidates(ctx)
	if err != nil {
		s.logger.Warn("loading candidates failed, keeping previous snapshot",
			zap.Int("kept", s.Len()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	index := make(map[backend.CandidateID]int, len(candidates))
	kept := make([]backend.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := index[c.ID]; dup {
			s.logger.Warn("duplicate candidate id in list, keeping the first", zap.String("candidate_id", string(c.ID)))
			continue
		}
		index[c.ID] = len(kept)
		kept = append(kept, c.Clone())
	}

	s.mu.Lock()
	s.candidates = kept
	s.index = index
	s.mu.Unlock()

	s.logger.Debug("candidates loaded", zap.Int("count", len(kept)))

	return s.Snapshot(), nil
}

// Get returns a copy of one candidate.
func (s *Store) Get(id backend.CandidateID) (backend.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return backend.Candidate{}, &backend.NotFoundError{Resource: "candidate", ID: string(id)}
	}

	return s.candidates[i].Clone(), nil
}

// Snapshot returns copies of all candidates in store order.
func (s *Store) Snapshot() []backend.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]backend.Candidate, len(s.candidates))
	for i := range s.candidates {
		out[i] = s.candidates[i].Clone()
	}

	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.candidates)
}

// Merge writes one artifact onto the candidate. Only the field owned by the
// artifact kind changes.
func (s *Store) Merge(id backend.CandidateID, artifact Artifact) error {
	if artifact == nil {
		return &backend.ValidationError{Field: "artifact", Reason: "must not be nil"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return &backend.NotFoundError{Resource: "candidate", ID: string(id)}
	}

	artifact.apply(&s.candidates[i])

	s.logger.Debug("artifact merged",
		zap.String("candidate_id", string(id)),
		zap.String("kind", string(artifact.Kind())),
	)

	return nil
}

// Refresh fetches one candidate and merges only the named artifact fields from it.
// A field the response leaves out keeps its stored value.
func (s *Store) Refresh(ctx context.Context, id backend.CandidateID, kinds ...ArtifactKind) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	fresh, err := s.source.GetCandidate(ctx, id)
	if err != nil {
		return fmt.Errorf("refresh candidate %s: %w", id, err)
	}

	for _, kind := range kinds {
		artifact, err := ArtifactOf(kind, fresh)
		if err != nil {
			return err
		}
		if !present(kind, fresh) {
			s.logger.Debug("refresh left field unchanged",
				zap.String("candidate_id", string(id)),
				zap.String("kind", string(kind)),
			)
			continue
		}
		if err := s.Merge(id, artifact); err != nil {
			return err
		}
	}

	return nil
}
