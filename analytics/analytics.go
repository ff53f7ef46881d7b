// Package analytics describes the contract of the external analytics API
// and provides a client for it.
package analytics

import (
	"net/url"
	"strings"
)

// StatsQuery selects the aggregate statistics of one site, optionally for a
// single calendar day.
type StatsQuery struct {
	SiteID string
	Date   string // YYYY-MM-DD, empty means "server default"
}

// NewStatsQuery builds a query from raw form input. The site id is trimmed,
// the date is taken as-is.
func NewStatsQuery(siteID, date string) StatsQuery {
	return StatsQuery{
		SiteID: strings.TrimSpace(siteID),
		Date:   date,
	}
}

// Params returns the query string parameters for GET /stats. The date is
// only present when set.
func (q StatsQuery) Params() url.Values {
	v := url.Values{}
	v.Set("site_id", q.SiteID)
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	return v
}

// Key identifies the query for caching.
func (q StatsQuery) Key() string {
	return q.SiteID + "|" + q.Date
}

// StatsResult is the payload returned by GET /stats.
type StatsResult struct {
	SiteID      string     `json:"site_id"`
	Date        string     `json:"date,omitempty"`
	TotalViews  int64      `json:"total_views"`
	UniqueUsers int64      `json:"unique_users"`
	TopPaths    []PathStat `json:"top_paths"`
}

// PathStat is one entry of the server-ranked top paths list.
type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// EventSubmission is the body of POST /event. Optional fields are omitted
// from the payload when blank.
type EventSubmission struct {
	SiteID    string `json:"site_id"`
	EventType string `json:"event_type"`
	Path      string `json:"path,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// NewEventSubmission builds an event from raw form input, trimming every
// field. Required fields are not validated here; the API rejects them.
func NewEventSubmission(siteID, eventType, path, userID string) EventSubmission {
	return EventSubmission{
		SiteID:    strings.TrimSpace(siteID),
		EventType: strings.TrimSpace(eventType),
		Path:      strings.TrimSpace(path),
		UserID:    strings.TrimSpace(userID),
	}
}

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}
