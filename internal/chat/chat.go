// Package chat keeps conversational sessions with the backend assistants.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/logger"
	"github.com/spigell/hr-screener/internal/metrics"
	"github.com/spigell/hr-screener/internal/utils"
)

// Apology replaces the bot reply when a send fails.
const Apology = "Sorry, I encountered an error. Please try again."

const (
	CandidateGreeting = "Hello! I'm your AI assistant. Ask me anything about this candidate!"
	HRGreeting        = "Hello! I'm your HR Assistant. I can help you with questions about your candidates. " +
		"Try asking me things like:\n\n" +
		"• Who are the top 5 matches for Data Scientist role?\n" +
		"• Does this candidate have leadership experience?\n" +
		"• What's the salary expectation trend among shortlisted candidates?\n" +
		"• Show me candidates with Python skills"
)

const maxLoggedText = 80

// Kind tells the two session flavours apart.
type Kind string

const (
	KindCandidate Kind = "candidate"
	KindHR        Kind = "hr"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type Message struct {
	ID        string
	Text      string
	Sender    Role
	Timestamp time.Time
}

// CandidateChatter answers questions about one candidate.
type CandidateChatter interface {
	Chat(ctx context.Context, id backend.CandidateID, message string) (string, error)
}

// HRChatter answers questions about the whole candidate pool.
type HRChatter interface {
	HRChat(ctx context.Context, message string) (string, error)
}

type sendFunc func(ctx context.Context, text string) (string, error)

// Session is an append-only conversation that allows one message in flight.
type Session struct {
	kind        Kind
	candidateID backend.CandidateID
	send        sendFunc
	logger      *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	mu         sync.Mutex
	history    []Message
	sending    bool
	lastFailed bool
	closed     bool
}

type config struct {
	greeting *string
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*config)

// WithGreeting replaces the default greeting. An empty text disables it.
func WithGreeting(text string) Option {
	return func(c *config) { c.greeting = &text }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewCandidateSession starts a conversation about one candidate.
func NewCandidateSession(client CandidateChatter, id backend.CandidateID, opts ...Option) *Session {
	send := func(ctx context.Context, text string) (string, error) {
		return client.Chat(ctx, id, text)
	}
	return newSession(KindCandidate, id, send, CandidateGreeting, opts)
}

// NewHRSession starts a conversation about all candidates.
func NewHRSession(client HRChatter, opts ...Option) *Session {
	return newSession(KindHR, "", client.HRChat, HRGreeting, opts)
}

func newSession(kind Kind, id backend.CandidateID, send sendFunc, greeting string, opts []Option) *Session {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.greeting != nil {
		greeting = *cfg.greeting
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	s := &Session{
		kind:        kind,
		candidateID: id,
		send:        send,
		logger:      logger.WithFields(cfg.logger, logger.SessionFields(string(kind), string(id))...),
		metrics:     cfg.metrics,
		now:         cfg.now,
	}

	if strings.TrimSpace(greeting) != "" {
		s.history = append(s.history, s.message(RoleBot, greeting))
	}

	return s
}

// Send posts text and waits for the reply. It returns false without doing
// anything when text is blank, a message is already in flight or the session
// is closed. The reply is the zero Message when the session was closed while
// waiting.
func (s *Session) Send(ctx context.Context, text string) (Message, bool) {
	if !s.begin(text) {
		return Message{}, false
	}

	s.logger.Debug("sending message", zap.String("text", utils.TruncateForLog(text, maxLoggedText)))

	reply, err := s.send(ctx, text)
	s.metrics.ChatMessage(string(s.kind), err)

	return s.complete(reply, err), true
}

// begin appends the user message and marks the session busy.
func (s *Session) begin(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.sending {
		return false
	}

	s.history = append(s.history, s.message(RoleUser, text))
	s.sending = true

	return true
}

// complete appends the bot reply, or the apology on failure, and frees the session.
func (s *Session) complete(reply string, err error) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sending = false

	if s.closed {
		s.logger.Debug("discarding reply for closed session")
		return Message{}
	}

	s.lastFailed = err != nil
	if err != nil {
		s.logger.Warn("chat request failed", zap.Error(err))
		reply = Apology
	}

	msg := s.message(RoleBot, reply)
	s.history = append(s.history, msg)

	return msg
}

func (s *Session) message(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    role,
		Timestamp: s.now(),
	}
}

// History returns a copy of the conversation in order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.history))
	copy(out, s.history)

	return out
}

// Sending reports whether a message is in flight.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sending
}

// LastFailed reports whether the latest send ended with the apology.
func (s *Session) LastFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastFailed
}

func (s *Session) Kind() Kind { return s.kind }

func (s *Session) CandidateID() backend.CandidateID { return s.candidateID }

// Close makes the session ignore replies still in flight and reject new sends.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}
