package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/a-h/templ"
)

// StatsSection renders the stats section for v. The output depends on v
// alone, so rendering the same view twice yields identical bytes.
func StatsSection(v StatsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		renderStats(&buf, v)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// hiddenStatsSection keeps the section's id on the page before the first
// successful query.
func hiddenStatsSection() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section id="statsSection" class="stats-section" style="display: none;"></section>`)
		return err
	})
}

func renderStats(buf *bytes.Buffer, v StatsView) {
	buf.WriteString(`<section id="statsSection" class="stats-section"`)
	if v.Scroll {
		buf.WriteString(` data-scroll-into-view`)
	}
	buf.WriteString(`>`)
	buf.WriteString(`<h2>Statistics</h2>`)

	buf.WriteString(`<div class="stats-grid">`)
	statCard(buf, "totalViews", "Total Views", v.TotalViews)
	statCard(buf, "uniqueUsers", "Unique Users", v.UniqueUsers)
	buf.WriteString(`</div>`)

	buf.WriteString(`<div class="query-info">`)
	buf.WriteString(`<span>Site: <strong id="querySiteId">`)
	buf.WriteString(EscapeHTML(v.SiteID))
	buf.WriteString(`</strong></span><span>Date: <strong id="queryDate">`)
	buf.WriteString(EscapeHTML(v.Date))
	buf.WriteString(`</strong></span></div>`)

	buf.WriteString(`<h3>Top Paths</h3><div id="topPaths" class="top-paths">`)
	if v.Empty() {
		buf.WriteString(`<p class="empty-paths">`)
		buf.WriteString(NoPathsNotice)
		buf.WriteString(`</p>`)
	}
	for _, row := range v.Paths {
		buf.WriteString(`<div class="path-item"><div class="path-info"><span class="path-rank">`)
		buf.WriteString(row.Rank)
		buf.WriteString(`</span><span class="path">`)
		buf.WriteString(EscapeHTML(row.Path))
		buf.WriteString(`</span></div><span class="views">`)
		buf.WriteString(row.Views)
		buf.WriteString(` views</span></div>`)
	}
	buf.WriteString(`</div></section>`)
}

func statCard(buf *bytes.Buffer, id, label, value string) {
	buf.WriteString(`<div class="stat-card"><h3>`)
	buf.WriteString(label)
	buf.WriteString(`</h3><p class="stat-value" id="`)
	buf.WriteString(id)
	buf.WriteString(`">`)
	buf.WriteString(EscapeHTML(value))
	buf.WriteString(`</p></div>`)
}

// WriteStatsText writes v as aligned plain text for terminals.
func WriteStatsText(w io.Writer, v StatsView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Site:\t%s\n", v.SiteID)
	fmt.Fprintf(tw, "Date:\t%s\n", v.Date)
	fmt.Fprintf(tw, "Total views:\t%s\n", v.TotalViews)
	fmt.Fprintf(tw, "Unique users:\t%s\n", v.UniqueUsers)
	fmt.Fprintln(tw)
	if v.Empty() {
		fmt.Fprintln(tw, NoPathsNotice)
		return tw.Flush()
	}
	fmt.Fprintln(tw, "Top paths:")
	for _, row := range v.Paths {
		fmt.Fprintf(tw, "%s\t%s\t%s views\n", row.Rank, row.Path, row.Views)
	}
	return tw.Flush()
}
