package views

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// Page renders the full console: the stats form, the event form with its
// status banner, the stats section and, when set, the blocking alert.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		title := data.Title
		if title == "" {
			title = "Analytics Console"
		}
		writeHead(&buf, title)

		buf.WriteString(`<main class="container"><header><h1>`)
		buf.WriteString(EscapeHTML(title))
		buf.WriteString(`</h1></header>`)

		if data.Alert != "" {
			buf.WriteString(`<div class="alert" role="alertdialog" data-alert="`)
			buf.WriteString(EscapeHTML(data.Alert))
			buf.WriteString(`">`)
			buf.WriteString(EscapeHTML(data.Alert))
			buf.WriteString(`</div>`)
		}

		buf.WriteString(`<div class="forms">`)
		writeStatsForm(&buf, data.StatsForm)
		writeEventForm(&buf, data.EventForm, data.CSRFToken, data.Banner)
		buf.WriteString(`</div>`)

		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		section := hiddenStatsSection()
		if data.Stats != nil {
			section = StatsSection(*data.Stats)
		}
		if err := section.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Banner renders the event status element on its own. The console script
// fetches it once the banner's delay has run out.
func Banner(b *BannerView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeBanner(&buf, b)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return messagePage("Not Found", "The page you are looking for does not exist.")
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return messagePage("Server Error", "Something went wrong. Please try again.")
}

func messagePage(title, msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeHead(&buf, title)
		buf.WriteString(`<main class="container"><h1>`)
		buf.WriteString(EscapeHTML(title))
		buf.WriteString(`</h1><p>`)
		buf.WriteString(EscapeHTML(msg))
		buf.WriteString(`</p><p><a href="/">Back to the console</a></p></main></body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeHead(buf *bytes.Buffer, title string) {
	buf.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	buf.WriteString(`<title>`)
	buf.WriteString(EscapeHTML(title))
	buf.WriteString(`</title>`)
	buf.WriteString(`<link rel="stylesheet" href="/public/console.css">`)
	buf.WriteString(`<script src="/public/console.js" defer></script>`)
	buf.WriteString(`</head><body>`)
}

func writeStatsForm(buf *bytes.Buffer, f StatsFormView) {
	buf.WriteString(`<section class="card"><h2>Query Stats</h2>`)
	buf.WriteString(`<form id="statsForm" method="get" action="/console/stats">`)
	writeInput(buf, "siteId", "site_id", "text", "Site ID", f.SiteID, true)
	writeInput(buf, "date", "date", "date", "Date", f.Date, false)
	writeSubmit(buf, "Get Stats", "Loading...", f.Submitting)
	buf.WriteString(`</form></section>`)
}

func writeEventForm(buf *bytes.Buffer, f EventFormView, csrf string, b *BannerView) {
	buf.WriteString(`<section class="card"><h2>Send Event</h2>`)
	buf.WriteString(`<form id="eventForm" method="post" action="/console/event">`)
	buf.WriteString(`<input type="hidden" name="_csrf" value="`)
	buf.WriteString(EscapeHTML(csrf))
	buf.WriteString(`">`)
	writeInput(buf, "eventSiteId", "site_id", "text", "Site ID", f.SiteID, true)
	writeInput(buf, "eventType", "event_type", "text", "Event Type", f.EventType, true)
	writeInput(buf, "path", "path", "text", "Path (optional)", f.Path, false)
	writeInput(buf, "userId", "user_id", "text", "User ID (optional)", f.UserID, false)
	writeSubmit(buf, "Send Event", "Sending...", f.Submitting)
	buf.WriteString(`</form>`)
	writeBanner(buf, b)
	buf.WriteString(`</section>`)
}

func writeInput(buf *bytes.Buffer, id, name, typ, label, value string, required bool) {
	buf.WriteString(`<div class="form-group"><label for="`)
	buf.WriteString(id)
	buf.WriteString(`">`)
	buf.WriteString(label)
	buf.WriteString(`</label><input id="`)
	buf.WriteString(id)
	buf.WriteString(`" name="`)
	buf.WriteString(name)
	buf.WriteString(`" type="`)
	buf.WriteString(typ)
	buf.WriteString(`" value="`)
	buf.WriteString(EscapeHTML(value))
	buf.WriteString(`"`)
	if required {
		buf.WriteString(` required`)
	}
	buf.WriteString(`></div>`)
}

func writeSubmit(buf *bytes.Buffer, label, loading string, submitting bool) {
	buf.WriteString(`<button type="submit" class="btn"`)
	textStyle, loaderStyle := "inline", "none"
	if submitting {
		buf.WriteString(` disabled`)
		textStyle, loaderStyle = "none", "inline"
	}
	buf.WriteString(`><span class="btn-text" style="display: `)
	buf.WriteString(textStyle)
	buf.WriteString(`;">`)
	buf.WriteString(label)
	buf.WriteString(`</span><span class="btn-loader" style="display: `)
	buf.WriteString(loaderStyle)
	buf.WriteString(`;">`)
	buf.WriteString(loading)
	buf.WriteString(`</span></button>`)
}

func writeBanner(buf *bytes.Buffer, b *BannerView) {
	if b == nil {
		buf.WriteString(`<div id="eventStatus" class="status-message" role="status" style="display: none;"></div>`)
		return
	}
	buf.WriteString(`<div id="eventStatus" class="`)
	buf.WriteString(EscapeHTML(BannerClass(b.Kind)))
	buf.WriteString(`" role="status" data-banner-id="`)
	buf.WriteString(strconv.FormatUint(b.ID, 10))
	buf.WriteString(`"`)
	if !b.HideAt.IsZero() {
		// A relative delay keeps the browser's clock out of the countdown.
		buf.WriteString(` data-hide-in="`)
		buf.WriteString(strconv.FormatInt(hideInMillis(b.HideAt, time.Now()), 10))
		buf.WriteString(`"`)
	}
	buf.WriteString(` style="display: block;">`)
	buf.WriteString(EscapeHTML(b.Message))
	buf.WriteString(`</div>`)
}

func hideInMillis(hideAt, now time.Time) int64 {
	ms := hideAt.Sub(now).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
