package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeMatched  = "matched"
	OutcomeFallback = "fallback"
	OutcomeOmitted  = "omitted"

	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds the client counters. A nil *Metrics records nothing.
type Metrics struct {
	MatchItems      *prometheus.CounterVec
	ArtifactFetches *prometheus.CounterVec
	ChatMessages    *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MatchItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_match_items_total",
				Help: "Candidates processed by batch matching, by outcome",
			},
			[]string{"outcome"},
		),
		ArtifactFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_artifact_fetches_total",
				Help: "Artifact fetches issued by candidate panels",
			},
			[]string{"kind", "result"},
		),
		ChatMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_chat_messages_total",
				Help: "Chat messages sent, by session kind and result",
			},
			[]string{"session", "result"},
		),
	}
}

func (m *Metrics) MatchItem(outcome string) {
	if m == nil {
		return
	}
	m.MatchItems.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ArtifactFetch(kind string, err error) {
	if m == nil {
		return
	}
	m.ArtifactFetches.WithLabelValues(kind, result(err)).Inc()
}

func (m *Metrics) ChatMessage(session string, err error) {
	if m == nil {
		return
	}
	m.ChatMessages.WithLabelValues(session, result(err)).Inc()
}

// Handler exposes the gathered metrics over HTTP.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
