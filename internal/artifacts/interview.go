package artifacts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
)

const kindInterview = "interview"

// InterviewPanel shows generated interview preparation. The bundle is loaded
// once and kept on the panel only. A failure is final for the panel.
type InterviewPanel struct {
	agg    *Aggregator
	id     backend.CandidateID
	logger *zap.Logger

	mu     sync.Mutex
	state  State
	err    error
	bundle *backend.InterviewBundle
}

func (a *Aggregator) NewInterviewPanel(id backend.CandidateID) *InterviewPanel {
	return &InterviewPanel{agg: a, id: id, logger: a.panelLogger(kindInterview, id)}
}

func (p *InterviewPanel) Open(ctx context.Context) (*backend.InterviewBundle, error) {
	p.mu.Lock()
	switch p.state {
	case StateClosed:
		p.mu.Unlock()
		return nil, ErrClosed
	case StateReady:
		bundle := p.bundle
		p.mu.Unlock()
		return bundle, nil
	case StateFailed:
		err := p.err
		p.mu.Unlock()
		return nil, err
	}
	p.state = StateLoading
	p.mu.Unlock()

	bundle, err := p.agg.client.InterviewPreparation(ctx, p.id)
	p.agg.metrics.ArtifactFetch(kindInterview, err)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		p.logger.Debug("discarding late interview bundle")
		return nil, ErrClosed
	}

	if err != nil {
		p.state, p.err = StateFailed, err
		p.logger.Warn("interview preparation failed", zap.Error(err))
		return nil, err
	}

	p.state, p.bundle = StateReady, bundle

	return bundle, nil
}

func (p *InterviewPanel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *InterviewPanel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateClosed
}
