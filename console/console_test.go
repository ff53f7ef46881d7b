package console

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eringen/pulseboard/analytics"
)

type fakeAPI struct {
	stats     func(ctx context.Context, q analytics.StatsQuery) (*analytics.StatsResult, error)
	sendEvent func(ctx context.Context, ev analytics.EventSubmission) error
}

func (f *fakeAPI) Stats(ctx context.Context, q analytics.StatsQuery) (*analytics.StatsResult, error) {
	return f.stats(ctx, q)
}

func (f *fakeAPI) SendEvent(ctx context.Context, ev analytics.EventSubmission) error {
	return f.sendEvent(ctx, ev)
}

func newObservedConsole(api API, opts ...Option) (*Console, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New(api, zap.New(core), opts...), logs
}

func TestQueryStatsSuccess(t *testing.T) {
	var phaseDuring phase
	sess := NewSessions(time.Minute).Resolve("")
	want := &analytics.StatsResult{SiteID: "acme", TotalViews: 10}
	api := &fakeAPI{stats: func(_ context.Context, q analytics.StatsQuery) (*analytics.StatsResult, error) {
		phaseDuring = sess.Stats.phase()
		assert.Equal(t, "acme", q.SiteID)
		return want, nil
	}}
	c, _ := newObservedConsole(api)

	got, err := c.QueryStats(context.Background(), sess, analytics.NewStatsQuery("acme", ""))
	require.NoError(t, err)
	assert.Same(t, want, got)

	assert.Equal(t, phaseSubmitting, phaseDuring)
	assert.Equal(t, phaseIdle, sess.Stats.phase())
	assert.Equal(t, phaseSuccess, sess.Stats.lastOutcome())

	q, last, ok := sess.LastResult()
	require.True(t, ok)
	assert.Same(t, want, last)
	assert.Equal(t, "acme", q.SiteID)
}

func TestQueryStatsFailureReleasesFormAndLogs(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	api := &fakeAPI{stats: func(context.Context, analytics.StatsQuery) (*analytics.StatsResult, error) {
		return nil, &analytics.APIError{StatusCode: http.StatusNotFound, Message: "site not found"}
	}}
	c, logs := newObservedConsole(api)

	_, err := c.QueryStats(context.Background(), sess, analytics.NewStatsQuery("ghost", ""))
	require.Error(t, err)

	assert.Contains(t, StatsAlert(err), "site not found")
	assert.False(t, sess.Stats.Submitting())
	assert.Equal(t, phaseError, sess.Stats.lastOutcome())
	assert.Equal(t, 1, logs.FilterMessage("stats fetch error").Len())

	_, _, ok := sess.LastResult()
	assert.False(t, ok)
}

func TestQueryStatsTransportErrorUsesGenericAlert(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	api := &fakeAPI{stats: func(context.Context, analytics.StatsQuery) (*analytics.StatsResult, error) {
		return nil, &analytics.TransportError{Op: "get stats", Err: errors.New("connection refused")}
	}}
	c, _ := newObservedConsole(api)

	_, err := c.QueryStats(context.Background(), sess, analytics.NewStatsQuery("acme", ""))
	assert.Equal(t, "Error: "+StatsFailedMessage, StatsAlert(err))
	assert.True(t, sess.Stats.Begin(), "form should be free again")
}

func TestQueryStatsRejectsSecondSubmission(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	api := &fakeAPI{stats: func(context.Context, analytics.StatsQuery) (*analytics.StatsResult, error) {
		calls++
		close(entered)
		<-release
		return &analytics.StatsResult{SiteID: "acme"}, nil
	}}
	c, _ := newObservedConsole(api)

	done := make(chan error, 1)
	go func() {
		_, err := c.QueryStats(context.Background(), sess, analytics.NewStatsQuery("acme", ""))
		done <- err
	}()
	<-entered

	_, err := c.QueryStats(context.Background(), sess, analytics.NewStatsQuery("acme", ""))
	assert.ErrorIs(t, err, ErrBusy)
	assert.Contains(t, StatsAlert(err), BusyMessage)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
}

func TestSubmitEventSuccessShowsBannerThatHides(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	var sent analytics.EventSubmission
	api := &fakeAPI{sendEvent: func(_ context.Context, ev analytics.EventSubmission) error {
		_, visible := sess.Banner.Current()
		assert.False(t, visible, "previous banner must be hidden while sending")
		sent = ev
		return nil
	}}
	c, _ := newObservedConsole(api, WithBannerTTL(50*time.Millisecond))

	sess.Banner.Show(BannerError, "old", 0)
	err := c.SubmitEvent(context.Background(), sess, analytics.NewEventSubmission("acme", "pageview", "", ""))
	require.NoError(t, err)
	assert.Equal(t, "acme", sent.SiteID)

	b, ok := sess.Banner.Current()
	require.True(t, ok)
	assert.Equal(t, BannerSuccess, b.Kind)
	assert.Equal(t, EventSentMessage, b.Message)
	assert.False(t, b.HideAt.IsZero())
	assert.Equal(t, phaseSuccess, sess.Events.lastOutcome())

	assert.Eventually(t, func() bool {
		_, visible := sess.Banner.Current()
		return !visible
	}, time.Second, 10*time.Millisecond)
}

func TestSubmitEventFailureShowsErrorBanner(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	api := &fakeAPI{sendEvent: func(context.Context, analytics.EventSubmission) error {
		return &analytics.APIError{StatusCode: http.StatusBadRequest, Message: "site_id required"}
	}}
	c, logs := newObservedConsole(api)

	err := c.SubmitEvent(context.Background(), sess, analytics.NewEventSubmission("", "pageview", "", ""))
	require.Error(t, err)

	b, ok := sess.Banner.Current()
	require.True(t, ok)
	assert.Equal(t, BannerError, b.Kind)
	assert.Equal(t, "Error: site_id required", b.Message)
	assert.True(t, b.HideAt.IsZero())
	assert.False(t, sess.Events.Submitting())
	assert.Equal(t, 1, logs.FilterMessage("event send error").Len())
}

func TestSubmitEventGenericMessageWithoutServerText(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	api := &fakeAPI{sendEvent: func(context.Context, analytics.EventSubmission) error {
		return &analytics.TransportError{Op: "post event", Err: errors.New("dial tcp: refused")}
	}}
	c, _ := newObservedConsole(api)

	_ = c.SubmitEvent(context.Background(), sess, analytics.NewEventSubmission("acme", "pageview", "", ""))
	b, _ := sess.Banner.Current()
	assert.True(t, strings.HasSuffix(b.Message, EventFailedMessage))
}

func TestSubmitEventBusy(t *testing.T) {
	sess := NewSessions(time.Minute).Resolve("")
	require.True(t, sess.Events.Begin())

	c, logs := newObservedConsole(&fakeAPI{sendEvent: func(context.Context, analytics.EventSubmission) error {
		t.Fatal("no request may be issued while busy")
		return nil
	}})
	err := c.SubmitEvent(context.Background(), sess, analytics.NewEventSubmission("acme", "pageview", "", ""))
	assert.ErrorIs(t, err, ErrBusy)

	entries := logs.FilterMessage("submission rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "event", fields["form"])
	assert.Equal(t, "submitting", fields["phase"])
	assert.Equal(t, "idle", fields["last_outcome"])
}
