package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/pulseboard/analytics"
)

// User-visible messages.
const (
	StatsFailedMessage = "Failed to fetch stats"
	EventFailedMessage = "Failed to send event"
	EventSentMessage   = "Event sent successfully!"
	BusyMessage        = "A request for this form is already in progress"
)

// DefaultBannerTTL is how long the success banner stays visible.
const DefaultBannerTTL = 3 * time.Second

// ErrBusy is returned when a form is submitted while its previous request is
// still in flight. No request is issued in that case.
var ErrBusy = errors.New("console: request already in progress")

// API is the subset of the analytics client the console needs.
type API interface {
	Stats(ctx context.Context, q analytics.StatsQuery) (*analytics.StatsResult, error)
	SendEvent(ctx context.Context, ev analytics.EventSubmission) error
}

// Console runs form submissions against the analytics API and keeps each
// session's UI state up to date.
type Console struct {
	api       API
	log       *zap.Logger
	bannerTTL time.Duration
}

// Option configures a Console.
type Option func(*Console)

// WithBannerTTL overrides DefaultBannerTTL.
func WithBannerTTL(d time.Duration) Option {
	return func(c *Console) { c.bannerTTL = d }
}

// New creates a Console. A nil logger discards diagnostics.
func New(api API, log *zap.Logger, opts ...Option) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Console{api: api, log: log, bannerTTL: DefaultBannerTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryStats issues one stats request for the session. The stats form is
// released on every return path.
func (c *Console) QueryStats(ctx context.Context, s *Session, q analytics.StatsQuery) (*analytics.StatsResult, error) {
	if !s.Stats.Begin() {
		c.logBusy("stats", s, &s.Stats)
		return nil, ErrBusy
	}
	ok := false
	defer func() { s.Stats.End(ok) }()

	res, err := c.api.Stats(ctx, q)
	if err != nil {
		c.log.Error("stats fetch error",
			zap.String("session", s.ID),
			zap.String("site_id", q.SiteID),
			zap.String("date", q.Date),
			zap.Error(err),
		)
		return nil, fmt.Errorf("query stats: %w", err)
	}

	s.setLastResult(q, res)
	ok = true
	return res, nil
}

// SubmitEvent sends one event for the session. The previous banner is hidden
// as soon as the submission starts; the outcome replaces it. The event form
// is released on every return path.
func (c *Console) SubmitEvent(ctx context.Context, s *Session, ev analytics.EventSubmission) error {
	if !s.Events.Begin() {
		c.logBusy("event", s, &s.Events)
		return ErrBusy
	}
	ok := false
	defer func() { s.Events.End(ok) }()

	s.Banner.Hide()

	if err := c.api.SendEvent(ctx, ev); err != nil {
		c.log.Error("event send error",
			zap.String("session", s.ID),
			zap.String("site_id", ev.SiteID),
			zap.String("event_type", ev.EventType),
			zap.Error(err),
		)
		s.Banner.Show(BannerError, "Error: "+analytics.UserMessage(err, EventFailedMessage), 0)
		return fmt.Errorf("submit event: %w", err)
	}

	s.Banner.Show(BannerSuccess, EventSentMessage, c.bannerTTL)
	ok = true
	return nil
}

func (c *Console) logBusy(form string, s *Session, f *Form) {
	c.log.Debug("submission rejected",
		zap.String("form", form),
		zap.String("session", s.ID),
		zap.Stringer("phase", f.phase()),
		zap.Stringer("last_outcome", f.lastOutcome()),
	)
}

// StatsAlert is the text of the blocking alert raised for a failed stats
// query.
func StatsAlert(err error) string {
	if errors.Is(err, ErrBusy) {
		return "Error: " + BusyMessage
	}
	return "Error: " + analytics.UserMessage(err, StatsFailedMessage)
}
