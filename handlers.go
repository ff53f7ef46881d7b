package pulseboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pulseboard/analytics"
	"github.com/eringen/pulseboard/console"
	"github.com/eringen/pulseboard/views"
)

// RateLimitedMessage is shown when an IP submits events too quickly.
const RateLimitedMessage = "Error: Too many events, please wait a moment"

func (a *App) handleIndex(c echo.Context) error {
	s := ConsoleSession(c)
	return Render(c, a.Views.Page(a.pageData(c, s)))
}

func (a *App) handleStats(c echo.Context) error {
	s := ConsoleSession(c)
	q := analytics.NewStatsQuery(c.QueryParam("site_id"), c.QueryParam("date"))

	_, err := a.Console.QueryStats(c.Request().Context(), s, q)

	data := a.pageData(c, s)
	data.StatsForm.SiteID = q.SiteID
	data.StatsForm.Date = q.Date
	if err != nil {
		data.Alert = console.StatsAlert(err)
		return RenderStatus(c, statusFor(err), a.Views.Page(data))
	}
	if data.Stats != nil {
		// Only the response to the query itself brings the results into view.
		data.Stats.Scroll = true
	}
	return Render(c, a.Views.Page(data))
}

func (a *App) handleEvent(c echo.Context) error {
	s := ConsoleSession(c)
	ev := analytics.NewEventSubmission(
		c.FormValue("site_id"),
		c.FormValue("event_type"),
		c.FormValue("path"),
		c.FormValue("user_id"),
	)

	var err error
	if a.submitLimiter.Allow(c.RealIP()) {
		err = a.Console.SubmitEvent(c.Request().Context(), s, ev)
	} else {
		a.Logger.Warn("event rate limited", zap.String("ip", c.RealIP()))
		s.Banner.Show(console.BannerError, RateLimitedMessage, 0)
		err = errRateLimited
	}
	if err == nil {
		// Post/Redirect/Get: the page reloads with an empty form and the banner.
		return c.Redirect(http.StatusSeeOther, "/")
	}

	data := a.pageData(c, s)
	data.EventForm = views.EventFormView{
		SiteID:    ev.SiteID,
		EventType: ev.EventType,
		Path:      ev.Path,
		UserID:    ev.UserID,
	}
	if errors.Is(err, console.ErrBusy) {
		data.Banner = &views.BannerView{Kind: string(console.BannerError), Message: "Error: " + console.BusyMessage}
	}
	return RenderStatus(c, statusFor(err), a.Views.Page(data))
}

func (a *App) handleBanner(c echo.Context) error {
	s := ConsoleSession(c)
	return Render(c, a.Views.Banner(bannerView(s)))
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

var errRateLimited = errors.New("pulseboard: event rate limited")

// statusFor maps a submission error to the status of the rendered page.
// Client errors of the API are mirrored; anything upstream is a bad gateway.
func statusFor(err error) int {
	var apiErr *analytics.APIError
	switch {
	case errors.Is(err, console.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	default:
		return http.StatusBadGateway
	}
}

// pageData snapshots the session into the page's view model.
func (a *App) pageData(c echo.Context, s *console.Session) views.PageData {
	data := views.PageData{
		Title:     a.Config.Name,
		CSRFToken: CsrfToken(c),
		StatsForm: views.StatsFormView{
			Date:       time.Now().UTC().Format(time.DateOnly),
			Submitting: s.Stats.Submitting(),
		},
		EventForm: views.EventFormView{
			Submitting: s.Events.Submitting(),
		},
		Banner: bannerView(s),
	}
	if q, res, ok := s.LastResult(); ok {
		data.StatsForm.SiteID = q.SiteID
		data.StatsForm.Date = q.Date
		v := views.NewStatsView(*res)
		data.Stats = &v
	}
	return data
}

func bannerView(s *console.Session) *views.BannerView {
	b, ok := s.Banner.Current()
	if !ok {
		return nil
	}
	return &views.BannerView{
		ID:      b.ID,
		Kind:    string(b.Kind),
		Message: b.Message,
		HideAt:  b.HideAt,
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
