package pipeline

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"photogrid/internal/domain"
)

// notifier delivers snapshots to a callback in the order they were queued, on its
// own goroutine so the callback never runs under the pipeline lock.
type notifier struct {
	mu       sync.Mutex
	queue    []domain.Snapshot
	signal   chan struct{}
	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
	fn       func(domain.Snapshot)
	logger   *zap.Logger
}

func newNotifier(fn func(domain.Snapshot), logger *zap.Logger) *notifier {
	n := &notifier{
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		fn:       fn,
		logger:   logger,
	}
	go n.run()
	return n
}

func (n *notifier) push(s domain.Snapshot) {
	if n.fn == nil {
		return
	}
	n.mu.Lock()
	n.queue = append(n.queue, s)
	n.mu.Unlock()

	select {
	case n.signal <- struct{}{}:
	default:
	}
}

func (n *notifier) run() {
	defer close(n.finished)
	for {
		select {
		case <-n.signal:
			n.drain()
		case <-n.done:
			return
		}
	}
}

func (n *notifier) drain() {
	for {
		n.mu.Lock()
		batch := n.queue
		n.queue = nil
		n.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, s := range batch {
			select {
			case <-n.done:
				return
			default:
			}
			n.deliver(s)
		}
	}
}

func (n *notifier) deliver(s domain.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("state change callback panic",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	n.fn(s)
}

// stop ends delivery. Queued snapshots are dropped. Must not be called from the callback.
func (n *notifier) stop() {
	n.stopOnce.Do(func() {
		close(n.done)
		<-n.finished
	})
}
