// internal/campaign/clock.go
package campaign

import (
	"sync"
	"time"
)

// Ticker delivers recurring ticks for one campaign's dispatch loop.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Clock creates tickers. The dispatcher takes a Clock rather than calling
// time.NewTicker directly so tests can drive every tick by hand instead of
// sleeping through real intervals.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// NewClock returns the wall-clock implementation.
func NewClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) Chan() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()                  { r.t.Stop() }

// ManualClock hands out tickers driven by an explicit Tick call.
// Test double; exported so command-level smoke tests can use it too.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

// NewManualClock creates a ManualClock.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// NewTicker implements Clock.
func (c *ManualClock) NewTicker(time.Duration) Ticker {
	t := &manualTicker{ch: make(chan time.Time), dead: make(chan struct{})}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// TickerCount reports how many tickers have been handed out. Tests poll
// it to know a dispatch loop has reached its ticker before driving ticks.
func (c *ManualClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// Tick delivers one tick to every live ticker and blocks until each
// consumer has received it (or stopped), which keeps test ticks strictly
// sequential.
func (c *ManualClock) Tick() {
	c.mu.Lock()
	tickers := append([]*manualTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		select {
		case t.ch <- time.Now():
		case <-t.dead:
		}
	}
}

type manualTicker struct {
	ch   chan time.Time
	dead chan struct{}
	once sync.Once
}

func (t *manualTicker) Chan() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.dead) })
}
