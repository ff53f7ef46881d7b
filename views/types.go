package views

import "time"

// StatsFormView carries the stats form's values and state into the page.
type StatsFormView struct {
	SiteID     string
	Date       string // YYYY-MM-DD; the handler fills in today when empty
	Submitting bool
}

// EventFormView carries the event form's values and state into the page.
// After a successful submission every value is empty.
type EventFormView struct {
	SiteID     string
	EventType  string
	Path       string
	UserID     string
	Submitting bool
}

// BannerView is the status message under the event form.
type BannerView struct {
	ID      uint64
	Kind    string // "success" or "error"
	Message string
	HideAt  time.Time // zero: no auto-hide
}

// PageData is everything the console page renders.
type PageData struct {
	Title     string
	CSRFToken string
	StatsForm StatsFormView
	EventForm EventFormView
	Banner    *BannerView // nil: no banner
	Alert     string      // blocking alert text, empty for none
	Stats     *StatsView  // nil: stats section hidden
}

// StatsView is the display-ready form of a stats result. Every string is
// raw text; escaping happens when it is written as markup.
type StatsView struct {
	SiteID      string
	Date        string
	TotalViews  string
	UniqueUsers string
	Paths       []PathRow
	Scroll      bool // bring the section into view after the page loads
}

// Empty reports whether the placeholder replaces the path list.
func (v StatsView) Empty() bool {
	return len(v.Paths) == 0
}

// PathRow is one ranked entry of the top paths list.
type PathRow struct {
	Rank  string // "#1", "#2", ...
	Path  string
	Views string // formatted count, without the " views" suffix
}
