package scan

import (
	"testing"
	"time"

	"scandesk/internal/platform/clock"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recorder struct {
	scans   []string
	debug   []DebugEvent
	cleared []Target
}

func harness(t *testing.T, opts Options) (*Classifier, *clock.Fake, *recorder) {
	t.Helper()
	clk := clock.NewFake(t0)
	rec := &recorder{}
	c := New(opts, Hooks{
		OnScan:      func(tok string) { rec.scans = append(rec.scans, tok) },
		OnDebug:     func(ev DebugEvent) { rec.debug = append(rec.debug, ev) },
		ClearTarget: func(tg Target) { rec.cleared = append(rec.cleared, tg) },
	}, clk)
	return c, clk, rec
}

// burst types s advancing the fake clock by gap between keys
func burst(c *Classifier, clk *clock.Fake, s string, gap time.Duration, tg Target) []Verdict {
	var out []Verdict
	for i, r := range s {
		if i > 0 {
			clk.Advance(gap)
		}
		out = append(out, c.Handle(KeyEvent{Key: string(r), Target: tg, At: clk.Now()}))
	}
	return out
}

// at builds an event stamped ms after t0 without touching the clock
func at(key string, ms int) KeyEvent {
	return KeyEvent{Key: key, At: t0.Add(time.Duration(ms) * time.Millisecond)}
}

func TestClassifier_ScannerBurstWithEnter(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	burst(c, clk, "TAC2026000123", 15*time.Millisecond, Target{})
	clk.Advance(15 * time.Millisecond)
	v := c.Handle(KeyEvent{Key: KeyEnter, At: clk.Now()})

	if !v.PreventDefault || !v.StopPropagation {
		t.Fatalf("scanner terminator must be suppressed: %+v", v)
	}
	if v.ClearTarget {
		t.Fatalf("no foreign target, ClearTarget should be false")
	}
	if len(rec.scans) != 1 || rec.scans[0] != "TAC2026000123" {
		t.Fatalf("scans = %v", rec.scans)
	}
	last := rec.debug[len(rec.debug)-1]
	if last.Type != DebugSubmit || !last.ScannerDetected || last.Buffer != "TAC2026000123" {
		t.Fatalf("last debug = %+v", last)
	}
	if snap := c.Snapshot(); snap.Buffer != "" || len(snap.Timings) != 0 || snap.Armed {
		t.Fatalf("buffer not recycled: %+v", snap)
	}

	// the timer was cancelled with the terminator; advancing must not emit again
	clk.Advance(time.Second)
	if len(rec.scans) != 1 {
		t.Fatalf("duplicate scan after terminator: %v", rec.scans)
	}
}

func TestClassifier_SlowTypistIsHuman(t *testing.T) {
	c, _, rec := harness(t, DefaultOptions())

	c.Handle(at("A", 0))
	c.Handle(at("B", 20))
	c.Handle(at("C", 520))
	v := c.Handle(at(KeyEnter, 1020))

	if v.PreventDefault || v.StopPropagation {
		t.Fatalf("human terminator must pass through: %+v", v)
	}
	if len(rec.scans) != 0 {
		t.Fatalf("false positive: %v", rec.scans)
	}
	if c.Snapshot().Buffer != "" {
		t.Fatalf("terminator must clear the buffer")
	}
	if last := rec.debug[len(rec.debug)-1]; last.Type != DebugReset {
		t.Fatalf("expected reset debug, got %+v", last)
	}
}

func TestClassifier_StaleBufferIsDiscarded(t *testing.T) {
	c, _, rec := harness(t, DefaultOptions())

	c.Handle(at("A", 0))
	c.Handle(at("B", 1100))
	c.Handle(at("C", 1120))

	if got := c.Snapshot().Buffer; got != "BC" {
		t.Fatalf("buffer = %q, want %q", got, "BC")
	}
	var resets int
	for _, ev := range rec.debug {
		if ev.Type == DebugReset {
			resets++
			if ev.Buffer != "A" {
				t.Fatalf("reset should snapshot the discarded buffer, got %q", ev.Buffer)
			}
		}
	}
	if resets != 1 {
		t.Fatalf("resets = %d, want 1", resets)
	}
	if got := c.Snapshot().Timings; len(got) != 1 || got[0] != 20*time.Millisecond {
		t.Fatalf("timings = %v, want [20ms]", got)
	}
}

func TestClassifier_AutoSubmitWithoutTerminator(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	burst(c, clk, "MNF-2026-001", 10*time.Millisecond, Target{})
	if clk.Pending() != 1 {
		t.Fatalf("expected exactly one live timer, got %d", clk.Pending())
	}
	clk.Advance(99 * time.Millisecond)
	if len(rec.scans) != 0 {
		t.Fatalf("submitted before the idle delay")
	}
	clk.Advance(time.Millisecond)
	if len(rec.scans) != 1 || rec.scans[0] != "MNF-2026-001" {
		t.Fatalf("scans = %v", rec.scans)
	}
	if snap := c.Snapshot(); snap.Buffer != "" || snap.Armed {
		t.Fatalf("state after auto submit: %+v", snap)
	}
}

func TestClassifier_AutoSubmitDropsHumanInput(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	c.Handle(KeyEvent{Key: "h", At: clk.Now()})
	clk.Advance(200 * time.Millisecond)
	c.Handle(KeyEvent{Key: "i", At: clk.Now()})
	clk.Advance(200 * time.Millisecond)

	if len(rec.scans) != 0 {
		t.Fatalf("human keys must not classify: %v", rec.scans)
	}
	if c.Snapshot().Buffer != "" {
		t.Fatalf("failed submit must still clear the buffer")
	}
}

func TestClassifier_SuppressesLeakIntoForeignField(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())
	field := Target{Kind: TargetTextField, ID: "notes"}

	vs := burst(c, clk, "TAC1", 10*time.Millisecond, field)
	if vs[0].PreventDefault {
		t.Fatalf("first key has no timing evidence and must not be suppressed")
	}
	for i, v := range vs[1:] {
		if !v.PreventDefault || !v.StopPropagation {
			t.Fatalf("key %d should be suppressed: %+v", i+1, v)
		}
	}

	clk.Advance(10 * time.Millisecond)
	v := c.Handle(KeyEvent{Key: KeyEnter, Target: field, At: clk.Now()})
	if !v.ClearTarget {
		t.Fatalf("terminator in a foreign field must ask for clearing")
	}
	if len(rec.cleared) != 1 || rec.cleared[0].ID != "notes" {
		t.Fatalf("cleared = %v", rec.cleared)
	}
}

func TestClassifier_AutoSubmitClearsForeignField(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())
	field := Target{Kind: TargetTextField, ID: "notes"}

	vs := burst(c, clk, "TAC1", 10*time.Millisecond, field)
	if vs[0].PreventDefault {
		t.Fatalf("first key has no timing evidence and must not be suppressed")
	}
	clk.Advance(150 * time.Millisecond)

	if len(rec.scans) != 1 || rec.scans[0] != "TAC1" {
		t.Fatalf("scans = %v", rec.scans)
	}
	if len(rec.cleared) != 1 || rec.cleared[0] != field {
		t.Fatalf("leaked first character never cleared: cleared = %v", rec.cleared)
	}
}

func TestClassifier_AutoSubmitLeavesOtherTargetsAlone(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	burst(c, clk, "TAC1", 10*time.Millisecond, Target{Kind: TargetManualInput})
	clk.Advance(150 * time.Millisecond)
	burst(c, clk, "TAC2", 10*time.Millisecond, Target{})
	clk.Advance(150 * time.Millisecond)

	if len(rec.scans) != 2 || len(rec.cleared) != 0 {
		t.Fatalf("scans = %v cleared = %v", rec.scans, rec.cleared)
	}
}

func TestClassifier_SwitchesToOwnClockForGood(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())
	skewed := t0.Add(-time.Hour)

	c.Handle(KeyEvent{Key: "T", At: skewed})
	c.Handle(KeyEvent{Key: "A", At: skewed.Add(10 * time.Millisecond)})

	clk.Advance(10 * time.Millisecond)
	c.Handle(KeyEvent{Key: "C"})
	if snap := c.Snapshot(); snap.Buffer != "C" || len(snap.Timings) != 0 {
		t.Fatalf("client stamped burst should be dropped at the switch: %+v", snap)
	}
	var dropped bool
	for _, ev := range rec.debug {
		dropped = dropped || (ev.Type == DebugReset && ev.Buffer == "TA")
	}
	if !dropped {
		t.Fatalf("no reset debug event for the dropped burst: %+v", rec.debug)
	}

	// later client stamps are ignored
	clk.Advance(10 * time.Millisecond)
	c.Handle(KeyEvent{Key: "7", At: skewed.Add(20 * time.Millisecond)})
	snap := c.Snapshot()
	if snap.Buffer != "C7" || len(snap.Timings) != 1 || snap.Timings[0] != 10*time.Millisecond {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestClassifier_ManualInputIsNotForeign(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())
	box := Target{Kind: TargetManualInput}

	for i, v := range burst(c, clk, "TAC77", 10*time.Millisecond, box) {
		if v.PreventDefault {
			t.Fatalf("key %d typed into the manual box must not be suppressed", i)
		}
	}
	clk.Advance(10 * time.Millisecond)
	v := c.Handle(KeyEvent{Key: KeyTab, Target: box, At: clk.Now()})
	if !v.PreventDefault || v.ClearTarget {
		t.Fatalf("verdict = %+v", v)
	}
	if len(rec.cleared) != 0 {
		t.Fatalf("manual box must never be cleared")
	}
	if len(rec.scans) != 1 {
		t.Fatalf("scans = %v", rec.scans)
	}
}

func TestClassifier_IgnoresModifiedAndNamedKeys(t *testing.T) {
	c, clk, _ := harness(t, DefaultOptions())

	c.Handle(KeyEvent{Key: "Shift", At: clk.Now()})
	c.Handle(KeyEvent{Key: "c", Ctrl: true, At: clk.Now()})
	c.Handle(KeyEvent{Key: "v", Meta: true, At: clk.Now()})
	c.Handle(KeyEvent{Key: "x", Alt: true, At: clk.Now()})
	c.Handle(KeyEvent{Key: "ArrowLeft", At: clk.Now()})

	if snap := c.Snapshot(); snap.Buffer != "" || snap.Armed {
		t.Fatalf("non printable keys touched the buffer: %+v", snap)
	}
}

func TestClassifier_DebugModeBypassesTiming(t *testing.T) {
	opts := DefaultOptions()
	opts.DebugMode = true
	c, _, rec := harness(t, opts)

	c.Handle(at("X", 0))
	c.Handle(at("Y", 400))
	c.Handle(at("Z", 800))
	v := c.Handle(at(KeyEnter, 900))

	if !v.PreventDefault || len(rec.scans) != 1 || rec.scans[0] != "XYZ" {
		t.Fatalf("debug mode should accept slow input: verdict=%+v scans=%v", v, rec.scans)
	}
}

func TestClassifier_BlankTokenIsNotAScan(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	burst(c, clk, "   ", 5*time.Millisecond, Target{})
	clk.Advance(5 * time.Millisecond)
	c.Handle(KeyEvent{Key: KeyEnter, At: clk.Now()})

	if len(rec.scans) != 0 {
		t.Fatalf("blank buffer produced a scan: %q", rec.scans)
	}
}

func TestClassifier_TokenIsTrimmed(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	burst(c, clk, " MAN42 ", 5*time.Millisecond, Target{})
	clk.Advance(5 * time.Millisecond)
	c.Handle(KeyEvent{Key: KeyEnter, At: clk.Now()})

	if len(rec.scans) != 1 || rec.scans[0] != "MAN42" {
		t.Fatalf("scans = %q", rec.scans)
	}
}

func TestClassifier_HooksMayReenter(t *testing.T) {
	clk := clock.NewFake(t0)
	var c *Classifier
	var seen string
	c = New(DefaultOptions(), Hooks{OnScan: func(tok string) {
		seen = tok
		_ = c.Snapshot()
		c.Reset()
	}}, clk)

	burst(c, clk, "TAC9", 5*time.Millisecond, Target{})
	clk.Advance(time.Second)
	if seen != "TAC9" {
		t.Fatalf("seen = %q", seen)
	}
}

func TestClassifier_SubmitAndClose(t *testing.T) {
	c, clk, rec := harness(t, DefaultOptions())

	if c.Submit() {
		t.Fatalf("empty submit should report false")
	}
	burst(c, clk, "TAC5", 5*time.Millisecond, Target{})
	if !c.Submit() {
		t.Fatalf("manual flush of a scanner burst should report true")
	}
	if len(rec.scans) != 1 {
		t.Fatalf("scans = %v", rec.scans)
	}

	c.Close()
	burst(c, clk, "TAC6", 5*time.Millisecond, Target{})
	clk.Advance(time.Second)
	if len(rec.scans) != 1 {
		t.Fatalf("closed classifier emitted: %v", rec.scans)
	}
	if clk.Pending() != 0 {
		t.Fatalf("closed classifier left %d timers", clk.Pending())
	}
}

func TestClassifier_KeystrokeDebugCarriesDelay(t *testing.T) {
	c, _, rec := harness(t, DefaultOptions())

	c.Handle(at("A", 0))
	c.Handle(at("B", 30))

	if len(rec.debug) != 2 {
		t.Fatalf("debug events = %d, want 2", len(rec.debug))
	}
	if rec.debug[0].Delay != nil {
		t.Fatalf("first key has no delay")
	}
	if d := rec.debug[1].Delay; d == nil || *d != 30 {
		t.Fatalf("second key delay = %v", d)
	}
	if !rec.debug[1].ScannerDetected || rec.debug[1].Buffer != "AB" {
		t.Fatalf("second event = %+v", rec.debug[1])
	}
	if rec.debug[1].Timestamp != t0.Add(30*time.Millisecond).UnixMilli() {
		t.Fatalf("timestamp = %d", rec.debug[1].Timestamp)
	}
}
