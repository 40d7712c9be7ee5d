package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MatchItem(OutcomeMatched)
	m.MatchItem(OutcomeMatched)
	m.MatchItem(OutcomeOmitted)
	m.ArtifactFetch("bias", nil)
	m.ArtifactFetch("bias", errors.New("boom"))
	m.ChatMessage("hr", nil)

	if got := testutil.ToFloat64(m.MatchItems.WithLabelValues(OutcomeMatched)); got != 2 {
		t.Fatalf("expected 2 matched items, got %v", got)
	}
	if got := testutil.ToFloat64(m.MatchItems.WithLabelValues(OutcomeOmitted)); got != 1 {
		t.Fatalf("expected 1 omitted item, got %v", got)
	}
	if got := testutil.ToFloat64(m.ArtifactFetches.WithLabelValues("bias", "error")); got != 1 {
		t.Fatalf("expected 1 failed bias fetch, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChatMessages.WithLabelValues("hr", "ok")); got != 1 {
		t.Fatalf("expected 1 hr chat message, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.MatchItem(OutcomeFallback)
	m.ArtifactFetch("interview", nil)
	m.ChatMessage("candidate", errors.New("boom"))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.MatchItem(OutcomeFallback)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `screener_match_items_total{outcome="fallback"} 1`) {
		t.Fatalf("expected fallback counter in output, got:\n%s", body)
	}
}
