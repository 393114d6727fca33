package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"photogrid/internal/domain"
	"photogrid/internal/eventbus"
	"photogrid/internal/metrics"
)

// SessionOptions configures a Session
type SessionOptions struct {
	Options
	// RecordMetrics feeds the Prometheus collectors from pipeline events
	RecordMetrics bool
}

// Session owns a pipeline together with its event subscriptions and releases
// them all at once.
type Session struct {
	id        string
	pipeline  *Pipeline
	bus       eventbus.EventBus
	ownsBus   bool
	unsubs    []func()
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    *zap.Logger
}

// NewSession builds a pipeline and subscribes the log tap (and metrics, when enabled).
// A bus is created when opts.Bus is nil and closed with the session.
func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	id := uuid.NewString()

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", id))

	s := &Session{id: id, logger: logger}

	if opts.Bus == nil {
		opts.Bus = eventbus.New(logger)
		s.ownsBus = true
	}
	s.bus = opts.Bus
	opts.Logger = logger

	sctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	p, err := New(sctx, opts.Options)
	if err != nil {
		cancel()
		if s.ownsBus {
			s.bus.Close()
		}
		return nil, err
	}
	s.pipeline = p

	if opts.RecordMetrics {
		s.unsubs = append(s.unsubs, metrics.Subscribe(s.bus)...)
	}
	s.unsubs = append(s.unsubs, s.subscribeLogTap()...)

	logger.Info("session started", zap.Duration("debounce", p.debounce))
	return s, nil
}

// ID returns the session identifier used in log lines
func (s *Session) ID() string { return s.id }

// OnInput forwards a keystroke to the pipeline. A no-op after Close.
func (s *Session) OnInput(text string) { s.pipeline.OnInput(text) }

// Refresh re-dispatches the current text
func (s *Session) Refresh() { s.pipeline.Refresh() }

// Snapshot returns the current state
func (s *Session) Snapshot() domain.Snapshot { return s.pipeline.Snapshot() }

// Close aborts in-flight requests, stops the pipeline and releases every
// subscription. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.pipeline.Close()
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.unsubs = nil
		if s.ownsBus {
			s.bus.Close()
		}
		s.logger.Info("session closed")
	})
}

func (s *Session) subscribeLogTap() []func() {
	return []func(){
		s.bus.Subscribe(eventbus.EventSearchCompleted, func(e eventbus.DomainEvent) {
			if ev, ok := e.(eventbus.SearchCompletedEvent); ok {
				s.logger.Info("results applied",
					zap.Uint64("id", uint64(ev.ID)),
					zap.String("query", ev.Query),
					zap.Int("count", ev.Count),
					zap.Duration("duration", ev.Duration))
			}
		}),
		s.bus.Subscribe(eventbus.EventSearchFailed, func(e eventbus.DomainEvent) {
			if ev, ok := e.(eventbus.SearchFailedEvent); ok {
				s.logger.Info("search failed",
					zap.Uint64("id", uint64(ev.ID)),
					zap.String("query", ev.Query),
					zap.String("kind", ev.Kind.String()))
			}
		}),
		s.bus.Subscribe(eventbus.EventResultsCleared, func(eventbus.DomainEvent) {
			s.logger.Info("results cleared")
		}),
	}
}
