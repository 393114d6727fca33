package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photogrid/internal/domain"
)

// manualClock fires timers only when Advance moves time past their deadline
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, running due callbacks synchronously in deadline order
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var next *manualTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
}

// active counts timers that have neither fired nor been stopped
func (c *manualClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

type result struct {
	photos []domain.Photo
	err    error
}

// call is one gateway invocation held open until the test resolves it
type call struct {
	ctx  context.Context
	req  domain.SearchRequest
	resp chan result
}

func (c *call) succeed(photos ...domain.Photo) { c.resp <- result{photos: photos} }

func (c *call) fail(err error) { c.resp <- result{err: err} }

type fakeGateway struct {
	calls chan *call
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(chan *call, 32)}
}

func (g *fakeGateway) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Photo, error) {
	c := &call{ctx: ctx, req: req, resp: make(chan result, 1)}
	g.calls <- c
	select {
	case r := <-c.resp:
		return r.photos, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%v: %w", ctx.Err(), domain.ErrNetwork)
	}
}

func (g *fakeGateway) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a gateway call")
		return nil
	}
}

func (g *fakeGateway) requireNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-g.calls:
		t.Fatalf("unexpected gateway call for %q", c.req.Query)
	case <-time.After(50 * time.Millisecond):
	}
}

// mockGateway is a testify mock for tests that only need canned responses
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Photo, error) {
	args := m.Called(ctx, req)
	photos, _ := args.Get(0).([]domain.Photo)
	return photos, args.Error(1)
}

type panicGateway struct{}

func (panicGateway) Search(context.Context, domain.SearchRequest) ([]domain.Photo, error) {
	panic("boom")
}

// recorder collects notifications
type recorder struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
}

func (r *recorder) record(s domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recorder) all() []domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Snapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func photo(id int, url string) domain.Photo {
	return domain.Photo{ID: id, ImageURL: url}
}

func requireState(t *testing.T, p interface{ Snapshot() domain.Snapshot }, cond func(domain.Snapshot) bool) domain.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return cond(p.Snapshot()) }, 2*time.Second, 5*time.Millisecond)
	return p.Snapshot()
}
