package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"photogrid/internal/domain"
	"photogrid/internal/eventbus"
)

// DefaultDebounce is the quiet window used when Options.Debounce is zero
const DefaultDebounce = time.Second

// Gateway executes one search. Implementations must be safe for concurrent use.
type Gateway interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.Photo, error)
}

// Encoder turns settled text into a request
type Encoder interface {
	Encode(raw string) (domain.SearchRequest, error)
}

// Options configures a Pipeline
type Options struct {
	Gateway          Gateway
	Encoder          Encoder
	Debounce         time.Duration
	CancelSuperseded bool // cancel the transport call of a superseded request
	Clock            Clock
	Bus              eventbus.EventBus // optional
	Logger           *zap.Logger
	// OnChange receives every state change in order. It runs on a dedicated
	// goroutine and may call back into the pipeline.
	OnChange func(domain.Snapshot)
}

// Pipeline turns a stream of keystrokes into debounced, deduplicated searches and
// keeps only the response of the most recently dispatched request.
type Pipeline struct {
	gateway          Gateway
	encoder          Encoder
	debounce         time.Duration
	cancelSuperseded bool
	clock            Clock
	bus              eventbus.EventBus
	logger           *zap.Logger
	notifier         *notifier

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	// debounce
	pending string
	gen     uint64
	timer   Timer
	// dedupe key: trimmed text of the most recent dispatch, forgotten on clear and failure
	lastText string
	hasLast  bool
	// reconciliation
	awaited        domain.RequestID // 0 when no response is awaited
	cancelInFlight context.CancelFunc
	state          domain.Snapshot
	closed         bool
}

// New creates a pipeline. Requests inherit ctx; cancelling it aborts them.
func New(ctx context.Context, opts Options) (*Pipeline, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("pipeline: gateway is required")
	}
	if opts.Encoder == nil {
		return nil, fmt.Errorf("pipeline: encoder is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("pipeline")

	pctx, cancel := context.WithCancel(ctx)
	return &Pipeline{
		gateway:          opts.Gateway,
		encoder:          opts.Encoder,
		debounce:         opts.Debounce,
		cancelSuperseded: opts.CancelSuperseded,
		clock:            opts.Clock,
		bus:              opts.Bus,
		logger:           logger,
		notifier:         newNotifier(opts.OnChange, logger),
		ctx:              pctx,
		cancel:           cancel,
	}, nil
}

// OnInput records the latest text and restarts the quiet window. It never blocks on I/O.
func (p *Pipeline) OnInput(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.pending = text
	p.gen++
	gen := p.gen
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.clock.AfterFunc(p.debounce, func() { p.settle(gen) })
}

// Refresh dispatches the current text immediately, ignoring the debounce window and
// the duplicate check.
func (p *Pipeline) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.stopTimerLocked()
	text := strings.TrimSpace(p.pending)
	if text == "" {
		p.clearLocked()
		return
	}
	p.dispatchLocked(text)
}

// Snapshot returns a copy of the current state
func (p *Pipeline) Snapshot() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Close stops the timer, aborts in-flight requests and stops notifications.
// Responses arriving afterwards are ignored. Must not be called from OnChange.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopTimerLocked()
	p.cancelInFlight = nil
	p.cancel()
	p.mu.Unlock()

	p.notifier.stop()
	p.logger.Debug("pipeline closed")
}

func (p *Pipeline) stopTimerLocked() {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// settle runs when the quiet window of generation gen elapses
func (p *Pipeline) settle(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || gen != p.gen {
		return
	}
	p.timer = nil

	text := strings.TrimSpace(p.pending)
	if text == "" {
		p.clearLocked()
		return
	}

	if p.hasLast && text == p.lastText {
		p.logger.Debug("skipping duplicate query", zap.String("query", text))
		p.publish(domain.SearchSkippedEvent{Query: text, Reason: domain.SkipDuplicate})
		return
	}

	p.dispatchLocked(text)
}

func (p *Pipeline) clearLocked() {
	changed := len(p.state.Results) > 0 ||
		p.state.LastError != domain.ErrorNone ||
		p.state.Searching ||
		p.state.Query != ""

	// any outstanding response is now stale
	p.awaited = 0
	if p.cancelInFlight != nil {
		if p.cancelSuperseded {
			p.cancelInFlight()
		}
		p.cancelInFlight = nil
	}
	p.hasLast = false
	p.lastText = ""

	if !changed {
		return
	}

	p.state.Results = nil
	p.state.Query = ""
	p.state.LastError = domain.ErrorNone
	p.state.Err = ""
	p.state.Searching = false

	p.logger.Debug("results cleared")
	p.publish(domain.ResultsClearedEvent{})
	p.notifier.push(p.state.Clone())
}

func (p *Pipeline) dispatchLocked(text string) {
	req, err := p.encoder.Encode(text)
	if err != nil {
		p.logger.Warn("query could not be encoded", zap.String("query", text), zap.Error(err))
		p.publish(domain.SearchSkippedEvent{Query: text, Reason: domain.SkipEncode})
		return
	}

	if p.cancelInFlight != nil {
		if p.cancelSuperseded {
			p.cancelInFlight()
		}
		p.cancelInFlight = nil
	}

	p.state.LatestDispatchedID++
	id := p.state.LatestDispatchedID
	p.awaited = id
	p.lastText = text
	p.hasLast = true
	p.state.Searching = true

	ctx, cancel := context.WithCancel(p.ctx)
	p.cancelInFlight = cancel

	p.logger.Debug("dispatching search",
		zap.Uint64("id", uint64(id)),
		zap.String("query", req.Query),
		zap.Bool("fallback", req.Fallback))
	p.publish(domain.SearchDispatchedEvent{ID: id, Query: req.Query, Fallback: req.Fallback})
	p.notifier.push(p.state.Clone())

	go p.run(ctx, cancel, id, req)
}

func (p *Pipeline) run(ctx context.Context, cancel context.CancelFunc, id domain.RequestID, req domain.SearchRequest) {
	defer cancel()

	start := time.Now()
	photos, err := p.search(ctx, req)
	p.reconcile(id, req, photos, err, time.Since(start))
}

// search calls the gateway, turning a panic into a network error
func (p *Pipeline) search(ctx context.Context, req domain.SearchRequest) (photos []domain.Photo, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("gateway panic", zap.Any("panic", r))
			photos = nil
			err = fmt.Errorf("gateway panic: %v: %w", r, domain.ErrNetwork)
		}
	}()
	return p.gateway.Search(ctx, req)
}

func (p *Pipeline) reconcile(id domain.RequestID, req domain.SearchRequest, photos []domain.Photo, err error, took time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	if id != p.awaited {
		p.logger.Debug("discarding superseded response",
			zap.Uint64("id", uint64(id)),
			zap.Uint64("awaited", uint64(p.awaited)))
		p.publish(domain.SearchDiscardedEvent{ID: id, Awaited: p.awaited})
		return
	}

	p.awaited = 0
	p.cancelInFlight = nil
	p.state.Searching = false

	if err != nil {
		kind := domain.KindOf(err)
		p.state.LastError = kind
		p.state.Err = err.Error()
		// a repeated keystroke for the same text must be able to retry
		p.hasLast = false
		p.lastText = ""

		p.logger.Warn("search failed",
			zap.Uint64("id", uint64(id)),
			zap.String("query", req.Query),
			zap.String("kind", kind.String()),
			zap.Duration("duration", took),
			zap.Error(err))
		p.publish(domain.SearchFailedEvent{ID: id, Query: req.Query, Kind: kind, Err: err, Duration: took})
		p.notifier.push(p.state.Clone())
		return
	}

	results := make([]domain.Photo, len(photos))
	copy(results, photos)
	p.state.Results = results
	p.state.Query = req.Query
	p.state.LastError = domain.ErrorNone
	p.state.Err = ""
	p.state.LatestCompletedID = id

	p.logger.Debug("search completed",
		zap.Uint64("id", uint64(id)),
		zap.String("query", req.Query),
		zap.Int("results", len(results)),
		zap.Duration("duration", took))
	p.publish(domain.SearchCompletedEvent{ID: id, Query: req.Query, Count: len(results), Duration: took})
	p.notifier.push(p.state.Clone())
}

func (p *Pipeline) publish(event domain.DomainEvent) {
	if p.bus != nil {
		p.bus.Publish(event)
	}
}
