package explore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out timers that fire only when the test advances them.
type fakeClock struct {
	timers []*fakeTimer
}

type fakeTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// advance fires every armed, unstopped timer once.
func (c *fakeClock) advance() {
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.f()
		}
	}
}

func TestDebouncerSingleCommitForRapidChanges(t *testing.T) {
	clock := &fakeClock{}
	var commits []float64
	d := NewDebouncer(10.0, DefaultQuietInterval, func(v float64) { commits = append(commits, v) }, clock)

	d.Schedule(11)
	d.Schedule(12)
	d.Schedule(13)
	assert.Equal(t, 13.0, d.Pending())
	assert.Empty(t, commits)

	clock.advance()
	require.Equal(t, []float64{13}, commits)
}

func TestDebouncerEqualValueIsNoOp(t *testing.T) {
	clock := &fakeClock{}
	var commits []float64
	d := NewDebouncer(10.0, DefaultQuietInterval, func(v float64) { commits = append(commits, v) }, clock)

	d.Schedule(10) // equal to initial pending: no timer armed
	assert.Empty(t, clock.timers)

	d.Schedule(11)
	armed := len(clock.timers)
	d.Schedule(11) // equal to pending: no timer reset
	assert.Equal(t, armed, len(clock.timers))

	clock.advance()
	assert.Equal(t, []float64{11}, commits)
}

func TestDebouncerSyncSnapsAndCancels(t *testing.T) {
	clock := &fakeClock{}
	var commits []float64
	d := NewDebouncer(10.0, DefaultQuietInterval, func(v float64) { commits = append(commits, v) }, clock)

	d.Schedule(25)
	d.Sync(5) // upstream clamp wins
	assert.Equal(t, 5.0, d.Pending())

	clock.advance()
	assert.Empty(t, commits, "cancelled commit must not fire")
}

func TestDebouncerClose(t *testing.T) {
	clock := &fakeClock{}
	var commits []float64
	d := NewDebouncer(10.0, DefaultQuietInterval, func(v float64) { commits = append(commits, v) }, clock)

	d.Schedule(20)
	d.Close()
	clock.advance()
	assert.Empty(t, commits, "commit must not fire after disposal")

	// Post-close scheduling is ignored.
	d.Schedule(30)
	assert.Equal(t, 20.0, d.Pending())
}

func TestDebouncerRealClock(t *testing.T) {
	done := make(chan float64, 1)
	d := NewDebouncer(0.0, 5*time.Millisecond, func(v float64) { done <- v }, nil)
	defer d.Close()

	d.Schedule(7)
	select {
	case v := <-done:
		assert.Equal(t, 7.0, v)
	case <-time.After(2 * time.Second):
		t.Fatal("commit did not fire")
	}
}
