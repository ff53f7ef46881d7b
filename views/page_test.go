package views

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWithoutStats(t *testing.T) {
	doc := renderDoc(t, Page(PageData{
		CSRFToken: "tok",
		StatsForm: StatsFormView{Date: "2024-03-01"},
	}))

	for _, id := range []string{"statsForm", "siteId", "date", "eventForm", "eventSiteId", "eventType", "path", "userId", "eventStatus", "statsSection"} {
		assert.Equal(t, 1, doc.Find("#"+id).Length(), "element #%s", id)
	}

	date, _ := doc.Find("#date").Attr("value")
	assert.Equal(t, "2024-03-01", date)
	csrf, _ := doc.Find(`#eventForm input[name="_csrf"]`).Attr("value")
	assert.Equal(t, "tok", csrf)

	style, _ := doc.Find("#statsSection").Attr("style")
	assert.Contains(t, style, "display: none")
	style, _ = doc.Find("#eventStatus").Attr("style")
	assert.Contains(t, style, "display: none")
	assert.Equal(t, 0, doc.Find("[role=alertdialog]").Length())
}

func TestPageSubmittingDisablesButton(t *testing.T) {
	doc := renderDoc(t, Page(PageData{StatsForm: StatsFormView{Submitting: true}}))

	btn := doc.Find("#statsForm button[type=submit]")
	_, disabled := btn.Attr("disabled")
	assert.True(t, disabled)
	text, _ := btn.Find(".btn-text").Attr("style")
	loader, _ := btn.Find(".btn-loader").Attr("style")
	assert.Contains(t, text, "none")
	assert.Contains(t, loader, "inline")

	_, disabled = doc.Find("#eventForm button[type=submit]").Attr("disabled")
	assert.False(t, disabled)
}

func TestPageBannerAndAlert(t *testing.T) {
	hideAt := time.Now().Add(3 * time.Second)
	doc := renderDoc(t, Page(PageData{
		Banner: &BannerView{ID: 7, Kind: "success", Message: "Event sent successfully!", HideAt: hideAt},
		Alert:  `Error: site "x" not found`,
		Stats:  &StatsView{SiteID: "acme", Date: "-", TotalViews: "1", UniqueUsers: "1", Scroll: true},
	}))

	status := doc.Find("#eventStatus")
	assert.Equal(t, "Event sent successfully!", status.Text())
	class, _ := status.Attr("class")
	assert.Equal(t, "status-message success", class)
	id, _ := status.Attr("data-banner-id")
	assert.Equal(t, "7", id)
	_, absolute := status.Attr("data-hide-at")
	assert.False(t, absolute, "the browser clock never decides when to hide")
	in, _ := status.Attr("data-hide-in")
	ms, err := strconv.Atoi(in)
	require.NoError(t, err)
	assert.Greater(t, ms, 0)
	assert.LessOrEqual(t, ms, 3000)

	alert := doc.Find("[role=alertdialog]")
	require.Equal(t, 1, alert.Length())
	msg, _ := alert.Attr("data-alert")
	assert.Equal(t, `Error: site "x" not found`, msg)

	_, scroll := doc.Find("#statsSection").Attr("data-scroll-into-view")
	assert.True(t, scroll)
	assert.Equal(t, NoPathsNotice, doc.Find("#topPaths p").Text())
}

func TestPageKeepsEventValues(t *testing.T) {
	doc := renderDoc(t, Page(PageData{
		EventForm: EventFormView{SiteID: "acme", EventType: "click", Path: `/"q"`, UserID: "u1"},
		Banner:    &BannerView{ID: 1, Kind: "error", Message: "Error: nope"},
	}))
	for id, want := range map[string]string{"eventSiteId": "acme", "eventType": "click", "path": `/"q"`, "userId": "u1"} {
		got, _ := doc.Find("#" + id).Attr("value")
		assert.Equal(t, want, got, id)
	}
	_, ok := doc.Find("#eventStatus").Attr("data-hide-in")
	assert.False(t, ok, "error banner does not auto-hide")
}

func TestBannerPastDeadlineHidesImmediately(t *testing.T) {
	doc := renderDoc(t, Banner(&BannerView{ID: 2, Kind: "success", Message: "ok", HideAt: time.Now().Add(-time.Minute)}))
	in, _ := doc.Find("#eventStatus").Attr("data-hide-in")
	assert.Equal(t, "0", in)
}

func TestHideInMillis(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(3000), hideInMillis(now.Add(3*time.Second), now))
	assert.Equal(t, int64(1), hideInMillis(now.Add(time.Millisecond), now))
	assert.Equal(t, int64(0), hideInMillis(now.Add(-time.Second), now))
}

func TestBannerFragment(t *testing.T) {
	doc := renderDoc(t, Banner(nil))
	style, _ := doc.Find("#eventStatus").Attr("style")
	assert.Contains(t, style, "display: none")
}

func TestErrorPages(t *testing.T) {
	assert.Contains(t, render(t, NotFound()), "Not Found")
	assert.Contains(t, render(t, ServerError()), "Server Error")
}
