package flowstate

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the delay used by the frame ticker when no
// interval is configured. It approximates one display frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Ticker requests a single deferred call of fn on the host's next frame.
// Each Request must eventually call fn exactly once.
type Ticker interface {
	Request(fn func())
}

// frameTicker fires after a fixed delay on its own goroutine.
type frameTicker struct {
	interval time.Duration
}

// NewFrameTicker returns a Ticker that calls back after interval.
// A non-positive interval selects DefaultFrameInterval.
func NewFrameTicker(interval time.Duration) Ticker {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return frameTicker{interval: interval}
}

// Request implements Ticker.
func (t frameTicker) Request(fn func()) {
	time.AfterFunc(t.interval, fn)
}

type immediateTicker struct{}

// ImmediateTicker runs every request synchronously. Each update then flushes
// on its own, which suits servers and tests that have no frame loop.
var ImmediateTicker Ticker = immediateTicker{}

// Request implements Ticker.
func (immediateTicker) Request(fn func()) {
	fn()
}

// ManualTicker queues requests until Tick is called. It lets a host loop or
// a test decide exactly when a frame ends.
type ManualTicker struct {
	mu      sync.Mutex
	pending []func()
}

// NewManualTicker creates an empty manual ticker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{}
}

// Request implements Ticker.
func (t *ManualTicker) Request(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, fn)
}

// Tick runs the requests queued so far and returns how many ran.
// Requests made while ticking wait for the next Tick.
func (t *ManualTicker) Tick() int {
	t.mu.Lock()
	fns := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Pending returns the number of requests waiting for Tick.
func (t *ManualTicker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// scheduler coalesces next-frame listeners into one flush per frame.
// At most one ticker request is outstanding at a time; listeners scheduled
// while it is pending join the same batch.
type scheduler struct {
	mu      sync.Mutex
	ticker  Ticker
	queue   []*listener
	pending bool
	gen     uint64
	closed  bool

	onFlush func(batch []*listener)
}

func newScheduler(ticker Ticker, onFlush func(batch []*listener)) *scheduler {
	if ticker == nil {
		ticker = NewFrameTicker(DefaultFrameInterval)
	}
	return &scheduler{ticker: ticker, onFlush: onFlush}
}

// schedule queues listeners for the next flush, requesting a frame if none
// is pending. An empty list still requests a frame so history gets trimmed.
func (s *scheduler) schedule(ls []*listener) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ls...)
	if s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.ticker.Request(func() { s.run(gen) })
}

// run is the ticker callback. Stale callbacks, superseded by flushNow or
// Close, do nothing.
func (s *scheduler) run(gen uint64) {
	s.mu.Lock()
	if s.closed || !s.pending || gen != s.gen {
		s.mu.Unlock()
		return
	}
	batch := s.take()
	s.mu.Unlock()

	s.onFlush(batch)
}

// flushNow ends the current frame immediately, whether or not one is pending.
func (s *scheduler) flushNow() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	batch := s.take()
	s.gen++
	s.mu.Unlock()

	s.onFlush(batch)
}

// take empties the queue. Callers hold s.mu.
func (s *scheduler) take() []*listener {
	batch := uniqueListeners(s.queue)
	s.queue = nil
	s.pending = false
	return batch
}

// isPending reports whether a flush has been requested and not yet run.
func (s *scheduler) isPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *scheduler) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.queue = nil
	s.pending = false
}
