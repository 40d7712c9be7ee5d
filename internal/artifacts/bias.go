package artifacts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/store"
)

const (
	kindBias  = "bias"
	kindBlind = "blind_resume"
)

// BiasPanel shows the bias analysis of one candidate and, on demand, its blind resume.
type BiasPanel struct {
	agg    *Aggregator
	id     backend.CandidateID
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	err       error
	report    *backend.BiasReport
	blind     *string
	showBlind bool
}

func (a *Aggregator) NewBiasPanel(id backend.CandidateID) *BiasPanel {
	return &BiasPanel{agg: a, id: id, logger: a.panelLogger(kindBias, id)}
}

// Open fetches the bias report and merges the analysis into the store.
// A failed panel can be opened again.
func (p *BiasPanel) Open(ctx context.Context) (*backend.BiasReport, error) {
	if !p.begin() {
		return nil, ErrClosed
	}

	report, err := p.agg.client.BiasAnalysis(ctx, p.id)
	p.agg.metrics.ArtifactFetch(kindBias, err)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		p.logger.Debug("discarding late bias report")
		return nil, ErrClosed
	}

	if err != nil {
		p.state, p.err = StateFailed, err
		p.logger.Warn("bias analysis failed", zap.Error(err))
		return nil, err
	}

	p.state, p.err, p.report = StateReady, nil, report

	if report.BiasAnalysis != nil {
		if err := p.agg.store.Merge(p.id, store.Bias(report.BiasAnalysis)); err != nil {
			p.logger.Warn("storing bias analysis failed", zap.Error(err))
		}
	}

	return report, nil
}

// ShowBlind switches to the blind resume view. The blind text is fetched once
// per panel.
func (p *BiasPanel) ShowBlind(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return "", ErrClosed
	}
	p.showBlind = true
	if p.blind != nil {
		text := *p.blind
		p.mu.Unlock()
		return text, nil
	}
	p.mu.Unlock()

	text, err := p.agg.client.BlindResume(ctx, p.id)
	p.agg.metrics.ArtifactFetch(kindBlind, err)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		return "", ErrClosed
	}
	if err != nil {
		p.logger.Warn("blind resume failed", zap.Error(err))
		return "", err
	}

	p.blind = &text

	return text, nil
}

// ShowAnalysis switches back from the blind resume view.
func (p *BiasPanel) ShowAnalysis() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.showBlind = false
}

func (p *BiasPanel) ShowingBlind() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.showBlind
}

func (p *BiasPanel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *BiasPanel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Close discards any result still in flight.
func (p *BiasPanel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateClosed
}

func (p *BiasPanel) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateClosed {
		return false
	}
	p.state, p.err = StateLoading, nil

	return true
}
