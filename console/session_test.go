package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesAndReuses(t *testing.T) {
	r := NewSessions(time.Minute)

	a := r.Resolve("")
	require.NotEmpty(t, a.ID)
	assert.Same(t, a, r.Resolve(a.ID))
	assert.Equal(t, 1, r.Len())

	b := r.Resolve("unknown-id")
	assert.NotEqual(t, "unknown-id", b.ID)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, r.Len())
}

func TestLookupNeverCreates(t *testing.T) {
	r := NewSessions(time.Minute)

	_, ok := r.Lookup("")
	assert.False(t, ok)
	_, ok = r.Lookup("unknown-id")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())

	a := r.Resolve("")
	a.touch(time.Now().Add(-2 * time.Minute))
	got, ok := r.Lookup(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 0, r.Sweep(), "lookup keeps the session alive")
	assert.Equal(t, 1, r.Len())
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	r := NewSessions(time.Minute)
	stale := r.Resolve("")
	fresh := r.Resolve("")

	stale.touch(time.Now().Add(-2 * time.Minute))
	stale.Banner.Show(BannerSuccess, "ok", time.Hour)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assert.Same(t, fresh, r.Resolve(fresh.ID))
	assert.False(t, stale.Banner.Pending(), "evicted session timers are stopped")
}

func TestFormBeginEnd(t *testing.T) {
	var f Form
	assert.Equal(t, phaseIdle, f.lastOutcome())

	require.True(t, f.Begin())
	assert.False(t, f.Begin())
	assert.True(t, f.Submitting())
	assert.Equal(t, "submitting", f.phase().String())

	f.End(false)
	assert.False(t, f.Submitting())
	assert.Equal(t, phaseError, f.lastOutcome())

	require.True(t, f.Begin())
	f.End(true)
	assert.Equal(t, phaseSuccess, f.lastOutcome())
}

func TestStartSweeperStopIsIdempotent(t *testing.T) {
	r := NewSessions(time.Millisecond)
	s := r.Resolve("")
	s.touch(time.Now().Add(-time.Hour))

	stop := r.StartSweeper(5 * time.Millisecond)
	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	stop()
	stop()
}
