package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/metrics"
)

type fakeBackend struct {
	reply   string
	err     error
	gate    chan struct{}
	entered chan struct{}

	candidateIDs []backend.CandidateID
	messages     []string
}

func (f *fakeBackend) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeBackend) Chat(_ context.Context, id backend.CandidateID, message string) (string, error) {
	f.candidateIDs = append(f.candidateIDs, id)
	f.messages = append(f.messages, message)
	f.wait()
	return f.reply, f.err
}

func (f *fakeBackend) HRChat(_ context.Context, message string) (string, error) {
	f.messages = append(f.messages, message)
	f.wait()
	return f.reply, f.err
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestCandidateSessionAppendsInOrder(t *testing.T) {
	fb := &fakeBackend{reply: "They know Go."}
	s := NewCandidateSession(fb, "7", WithClock(fixedClock()))

	reply, ok := s.Send(context.Background(), "What are the skills?")
	require.True(t, ok)
	assert.Equal(t, "They know Go.", reply.Text)
	assert.Equal(t, RoleBot, reply.Sender)

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, CandidateGreeting, history[0].Text)
	assert.Equal(t, RoleUser, history[1].Sender)
	assert.Equal(t, "What are the skills?", history[1].Text)
	assert.Equal(t, reply, history[2])
	assert.True(t, history[1].Timestamp.Before(history[2].Timestamp))
	assert.NotEqual(t, history[1].ID, history[2].ID)

	assert.Equal(t, []backend.CandidateID{"7"}, fb.candidateIDs)
	assert.False(t, s.Sending())
}

func TestSendFailureAppendsApology(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	fb := &fakeBackend{err: errors.New("502 bad gateway")}
	s := NewHRSession(fb, WithGreeting(""), WithMetrics(m))

	reply, ok := s.Send(context.Background(), "top 5 for data scientist?")
	require.True(t, ok)
	assert.Equal(t, Apology, reply.Text)
	assert.True(t, s.LastFailed())

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Sender)
	assert.Equal(t, Apology, history[1].Text)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatMessages.WithLabelValues("hr", "error")))

	fb.err = nil
	fb.reply = "Alice and Bob"
	_, ok = s.Send(context.Background(), "again")
	require.True(t, ok)
	assert.False(t, s.LastFailed())
}

func TestBlankSendIsNoop(t *testing.T) {
	fb := &fakeBackend{}
	s := NewHRSession(fb)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, ok := s.Send(context.Background(), text)
		assert.False(t, ok)
	}

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, HRGreeting, history[0].Text)
	assert.Empty(t, fb.messages)
}

func TestSendWhileInFlightIsNoop(t *testing.T) {
	fb := &fakeBackend{
		reply:   "done",
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := NewCandidateSession(fb, "1", WithGreeting(""))

	done := make(chan bool, 1)
	go func() {
		_, ok := s.Send(context.Background(), "first")
		done <- ok
	}()

	<-fb.entered
	assert.True(t, s.Sending())

	_, ok := s.Send(context.Background(), "second")
	assert.False(t, ok)

	close(fb.gate)
	require.True(t, <-done)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Text)
	assert.Equal(t, "done", history[1].Text)
}

func TestCloseDiscardsLateReply(t *testing.T) {
	fb := &fakeBackend{
		reply:   "late",
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := NewCandidateSession(fb, "1", WithGreeting(""))

	done := make(chan Message, 1)
	go func() {
		reply, _ := s.Send(context.Background(), "question")
		done <- reply
	}()

	<-fb.entered
	s.Close()
	close(fb.gate)

	assert.Equal(t, Message{}, <-done)
	require.Len(t, s.History(), 1)

	_, ok := s.Send(context.Background(), "after close")
	assert.False(t, ok)
}

func TestHistoryIsACopy(t *testing.T) {
	s := NewHRSession(&fakeBackend{})

	history := s.History()
	history[0].Text = "changed"

	assert.Equal(t, HRGreeting, s.History()[0].Text)
	assert.Equal(t, KindHR, s.Kind())
	assert.Empty(t, s.CandidateID())
}
