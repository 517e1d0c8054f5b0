package scan

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"scandesk/internal/platform/clock"
	"scandesk/internal/platform/logger"
)

// Classifier turns key-down events into scan tokens
//
// state lives for the whole session and is recycled after every terminator, submit or
// staleness reset. At most one auto-submit timer is live at a time. Hooks are invoked
// after the internal lock is released, in the order the classifier produced them.
//
// Key events may carry their own timestamp. Once an event arrives without one the
// classifier switches to its own clock for good, and a burst started on client
// timestamps is dropped at the switch, since the two clocks cannot be compared.
type Classifier struct {
	opts  Options
	clock clock.Clock
	hooks Hooks
	log   *logger.Logger

	mu      sync.Mutex
	buf     []rune
	timings []time.Duration
	lastKey time.Time
	target  Target
	timer   *clock.Timer
	gen     uint64
	closed  bool

	ownClock    bool
	lastStamped bool
}

// Snapshot is a copy of the classifier's buffer state
type Snapshot struct {
	Buffer  string
	Timings []time.Duration
	Armed   bool
}

// New builds a Classifier; a nil clock means the real clock
func New(opts Options, hooks Hooks, clk clock.Clock) *Classifier {
	if clk == nil {
		clk = clock.Real()
	}
	return &Classifier{
		opts:  opts.Normalize(),
		clock: clk,
		hooks: hooks,
		log:   logger.Named("scan"),
	}
}

// Options returns the effective tunables
func (c *Classifier) Options() Options { return c.opts }

// Handle processes one key-down and returns what should happen to the original event
func (c *Classifier) Handle(ev KeyEvent) Verdict {
	var (
		v  Verdict
		fx []func()
	)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return v
	}

	now, stamped := ev.At, true
	if c.ownClock || now.IsZero() {
		now, stamped = c.clock.Now(), false
		c.ownClock = true
	}

	if len(c.buf) > 0 && stamped != c.lastStamped {
		fx = append(fx, c.debugLocked(DebugReset, "", nil, now, false))
		c.clearLocked()
	}
	if len(c.buf) > 0 && now.Sub(c.lastKey) > c.opts.StaleTimeout {
		fx = append(fx, c.debugLocked(DebugReset, "", nil, now, c.speedLocked()))
		c.clearLocked()
	}

	switch {
	case ev.Key == KeyEnter || ev.Key == KeyTab:
		if c.detectedLocked() {
			v.PreventDefault = true
			v.StopPropagation = true
			var cleared bool
			fx, cleared = c.submitLocked(fx, ev.Target, now)
			v.ClearTarget = cleared
		} else if len(c.buf) > 0 {
			fx = append(fx, c.debugLocked(DebugReset, ev.Key, nil, now, false))
		}
		c.clearLocked()

	case isPrintable(ev):
		var delay *int64
		if len(c.buf) > 0 {
			d := now.Sub(c.lastKey)
			if d < 0 {
				d = 0
			}
			c.timings = append(c.timings, d)
			ms := d.Milliseconds()
			delay = &ms
		}
		c.buf = append(c.buf, []rune(ev.Key)...)
		c.lastKey = now
		c.lastStamped = stamped
		c.target = ev.Target
		c.armLocked()

		fast := c.speedLocked()
		if ev.Target.Foreign() && fast {
			v.PreventDefault = true
			v.StopPropagation = true
		}
		fx = append(fx, c.debugLocked(DebugKeystroke, ev.Key, delay, now, fast))
	}
	c.mu.Unlock()

	run(fx)
	return v
}

// Submit evaluates and flushes the current buffer as if the auto-submit timer fired
// returns true when a scan was emitted
func (c *Classifier) Submit() bool {
	c.mu.Lock()
	if c.closed || len(c.buf) == 0 {
		c.mu.Unlock()
		return false
	}
	detected := c.detectedLocked()
	fx, _ := c.submitLocked(nil, c.target, c.clock.Now())
	c.mu.Unlock()

	run(fx)
	return detected
}

// Reset discards the buffer and cancels the auto-submit timer
func (c *Classifier) Reset() {
	c.mu.Lock()
	var fx []func()
	if len(c.buf) > 0 {
		fx = append(fx, c.debugLocked(DebugReset, "", nil, c.clock.Now(), c.speedLocked()))
	}
	c.clearLocked()
	c.mu.Unlock()

	run(fx)
}

// Close resets the classifier and ignores every later event
func (c *Classifier) Close() {
	c.Reset()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Snapshot returns a copy of the current buffer and timings
func (c *Classifier) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Buffer:  string(c.buf),
		Timings: append([]time.Duration(nil), c.timings...),
		Armed:   c.timer != nil,
	}
}

// fire runs when the auto-submit timer for generation gen expires
func (c *Classifier) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	fx, _ := c.submitLocked(nil, c.target, c.clock.Now())
	c.mu.Unlock()

	run(fx)
}

// submitLocked re-checks detection, queues the scan and debug effects, then clears the buffer
// the returned bool reports whether the target should be wiped of leaked characters
func (c *Classifier) submitLocked(fx []func(), target Target, now time.Time) ([]func(), bool) {
	token := strings.TrimSpace(string(c.buf))
	detected := c.detectedLocked() && token != ""
	cleared := false

	if detected {
		if target.Foreign() {
			cleared = true
			if h := c.hooks.ClearTarget; h != nil {
				fx = append(fx, func() { h(target) })
			}
		}
		c.log.Debug().Int("len", len(token)).Int("intervals", len(c.timings)).Msg("scan classified")
		if h := c.hooks.OnScan; h != nil {
			fx = append(fx, func() { h(token) })
		}
		fx = append(fx, c.debugLocked(DebugSubmit, "", nil, now, true))
	} else {
		fx = append(fx, c.debugLocked(DebugReset, "", nil, now, false))
	}

	c.clearLocked()
	return fx, cleared
}

func (c *Classifier) detectedLocked() bool {
	if len(c.buf) < c.opts.MinScanLength {
		return false
	}
	return c.speedLocked()
}

func (c *Classifier) speedLocked() bool {
	if c.opts.DebugMode {
		return true
	}
	return c.opts.IsScannerSpeed(c.timings)
}

func (c *Classifier) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.opts.AutoSubmitDelay, func() { c.fire(gen) })
}

func (c *Classifier) clearLocked() {
	c.buf = c.buf[:0]
	c.timings = c.timings[:0]
	c.target = Target{}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Classifier) debugLocked(typ DebugType, key string, delay *int64, now time.Time, detected bool) func() {
	h := c.hooks.OnDebug
	if h == nil {
		return func() {}
	}
	ev := DebugEvent{
		Type:            typ,
		Key:             key,
		Buffer:          string(c.buf),
		Timings:         millis(c.timings),
		Delay:           delay,
		ScannerDetected: detected,
		Timestamp:       now.UnixMilli(),
	}
	return func() { h(ev) }
}

func isPrintable(ev KeyEvent) bool {
	if ev.Ctrl || ev.Alt || ev.Meta {
		return false
	}
	return utf8.RuneCountInString(ev.Key) == 1
}

func run(fx []func()) {
	for _, f := range fx {
		f()
	}
}
