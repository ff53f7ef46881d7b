package views

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/pulseboard/analytics"
)

// Placeholder values used by the stats section.
const (
	MissingValue  = "-"
	DefaultPath   = "/"
	NoPathsNotice = "No paths found for this date."
)

// FormatNumber renders n in decimal with a comma every three digits from
// the right: 1234567 becomes "1,234,567".
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// EscapeHTML makes text safe to embed in markup by neutralising <, >, &,
// single and double quotes.
func EscapeHTML(text string) string {
	return templ.EscapeString(text)
}

// NewStatsView turns an API result into display strings. Paths keep the
// server's order.
func NewStatsView(res analytics.StatsResult) StatsView {
	v := StatsView{
		SiteID:      orDefault(res.SiteID, MissingValue),
		Date:        orDefault(res.Date, MissingValue),
		TotalViews:  FormatNumber(res.TotalViews),
		UniqueUsers: FormatNumber(res.UniqueUsers),
	}
	if len(res.TopPaths) > 0 {
		v.Paths = make([]PathRow, len(res.TopPaths))
		for i, p := range res.TopPaths {
			v.Paths[i] = PathRow{
				Rank:  "#" + strconv.Itoa(i+1),
				Path:  orDefault(p.Path, DefaultPath),
				Views: FormatNumber(p.Views),
			}
		}
	}
	return v
}

// BannerClass returns the CSS classes of the status banner.
func BannerClass(kind string) string {
	if kind == "" {
		return "status-message"
	}
	return "status-message " + kind
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
