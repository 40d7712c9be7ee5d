package artifacts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/store"
)

const kindEnrichment = "enrichment"

// EnrichmentPanel shows public profiles found for a candidate.
type EnrichmentPanel struct {
	agg    *Aggregator
	id     backend.CandidateID
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	err        error
	candidate  *backend.Candidate
	enrichment *backend.ProfileEnrichment
}

func (a *Aggregator) NewEnrichmentPanel(id backend.CandidateID) *EnrichmentPanel {
	return &EnrichmentPanel{agg: a, id: id, logger: a.panelLogger(kindEnrichment, id)}
}

// Open loads the candidate and shows the enrichment it already has, if any.
func (p *EnrichmentPanel) Open(ctx context.Context) (*backend.ProfileEnrichment, error) {
	if !p.begin() {
		return nil, ErrClosed
	}

	candidate, err := p.agg.client.GetCandidate(ctx, p.id)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		return nil, ErrClosed
	}
	if err != nil {
		p.state, p.err = StateFailed, err
		p.logger.Warn("loading candidate failed", zap.Error(err))
		return nil, err
	}

	p.state, p.candidate, p.enrichment = StateReady, candidate, candidate.ProfileEnrichment

	return p.enrichment, nil
}

// Enrich asks the backend for fresh profiles, shows them, stores them and
// then reloads the enrichment field from the backend. Concurrent calls for
// the same candidate share one request.
func (p *EnrichmentPanel) Enrich(ctx context.Context) (*backend.ProfileEnrichment, error) {
	if !p.begin() {
		return nil, ErrClosed
	}

	ch := p.agg.enrich.DoChan(string(p.id), func() (any, error) {
		return p.agg.enrichAndStore(ctx, p.id, p.logger)
	})

	var (
		enrichment *backend.ProfileEnrichment
		err        error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		err = res.Err
		if err == nil {
			enrichment = res.Val.(*backend.ProfileEnrichment)
		}
		if res.Shared {
			p.logger.Debug("joined in-flight enrichment")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		p.logger.Debug("discarding late enrichment")
		return nil, ErrClosed
	}
	if err != nil {
		p.state, p.err = StateFailed, err
		return nil, err
	}

	p.state, p.err, p.enrichment = StateReady, nil, enrichment

	return enrichment, nil
}

// enrichAndStore runs the POST, merges its result and refreshes the field.
// The returned enrichment is the refreshed one when the refresh succeeds.
func (a *Aggregator) enrichAndStore(ctx context.Context, id backend.CandidateID, log *zap.Logger) (*backend.ProfileEnrichment, error) {
	enrichment, err := a.client.EnrichProfile(ctx, id)
	a.metrics.ArtifactFetch(kindEnrichment, err)
	if err != nil {
		log.Warn("profile enrichment failed", zap.Error(err))
		return nil, err
	}

	if err := a.store.Merge(id, store.Enrichment(enrichment)); err != nil {
		log.Warn("storing enrichment failed", zap.Error(err))
		return enrichment, nil
	}

	if err := a.store.Refresh(ctx, id, store.KindEnrichment); err != nil {
		log.Warn("refreshing enrichment failed, showing the enrichment response", zap.Error(err))
		return enrichment, nil
	}

	refreshed, err := a.store.Get(id)
	if err != nil || refreshed.ProfileEnrichment == nil {
		return enrichment, nil
	}

	return refreshed.ProfileEnrichment, nil
}

// Candidate returns the candidate loaded by Open.
func (p *EnrichmentPanel) Candidate() *backend.Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.candidate
}

// Enrichment returns the enrichment currently shown.
func (p *EnrichmentPanel) Enrichment() *backend.ProfileEnrichment {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.enrichment
}

func (p *EnrichmentPanel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *EnrichmentPanel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateClosed
}

func (p *EnrichmentPanel) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		return false
	}
	p.state, p.err = StateLoading, nil

	return true
}
