package report

import (
	"fmt"
	"strconv"

	"media-cleaner/core/reconcile"
	"media-cleaner/core/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NotApplicable replaces a percentage when the total is zero.
const NotApplicable = "N/A"

// Summary is the human readable form of reconcile.Statistics.
type Summary struct {
	TotalFiles     int     `json:"total_files"`
	TotalMB        float64 `json:"total_mb"`
	TotalPercent   string  `json:"total_percent"`
	RemovedFiles   int     `json:"removed_files"`
	RemovedMB      float64 `json:"removed_mb"`
	RemovedPercent string  `json:"removed_percent"`
}

// Summarize converts stats to megabytes and byte percentages.
func Summarize(stats reconcile.Statistics) Summary {
	s := Summary{
		TotalFiles:     stats.TotalFiles,
		TotalMB:        utils.ToMegabytes(stats.TotalBytes),
		TotalPercent:   NotApplicable,
		RemovedFiles:   stats.RemovedFiles,
		RemovedMB:      utils.ToMegabytes(stats.RemovedBytes),
		RemovedPercent: NotApplicable,
	}
	if pct, ok := utils.Percentage(stats.RemovedBytes, stats.TotalBytes); ok {
		s.TotalPercent = formatPercent(100)
		s.RemovedPercent = formatPercent(pct)
	}
	return s
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func formatMB(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSummary draws the Total and Removed rows.
func RenderSummary(s Summary) string {
	tw := newWriter(table.StyleRounded)
	tw.AppendHeader(table.Row{"Files", "Amount", "Size MB", "Size %"})
	tw.AppendRow(table.Row{"Total", s.TotalFiles, formatMB(s.TotalMB), s.TotalPercent})
	tw.AppendRow(table.Row{"Removed", s.RemovedFiles, formatMB(s.RemovedMB), s.RemovedPercent})
	alignRight(tw, 2, 3, 4)
	return tw.Render()
}

// AreaSummary is the per-area breakdown of a scan.
type AreaSummary struct {
	Area string `json:"area"`
	Summary
}

// SummarizeAreas summarizes each area of a plan.
func SummarizeAreas(areas []reconcile.AreaStatistics) []AreaSummary {
	out := make([]AreaSummary, 0, len(areas))
	for _, a := range areas {
		out = append(out, AreaSummary{Area: a.Area, Summary: Summarize(a.Statistics)})
	}
	return out
}

// RenderAreas draws one row per area.
func RenderAreas(areas []AreaSummary) string {
	tw := newWriter(table.StyleRounded)
	tw.AppendHeader(table.Row{"Area", "Files", "Size MB", "Removed", "Removed MB", "Removed %"})
	for _, a := range areas {
		tw.AppendRow(table.Row{a.Area, a.TotalFiles, formatMB(a.TotalMB), a.RemovedFiles, formatMB(a.RemovedMB), a.RemovedPercent})
	}
	alignRight(tw, 2, 3, 4, 5, 6)
	return tw.Render()
}

// RenderNotice draws a double boxed notice with title above lines.
func RenderNotice(title string, lines ...string) string {
	tw := newWriter(table.StyleDouble)
	tw.AppendHeader(table.Row{title})
	for _, l := range lines {
		tw.AppendRow(table.Row{l})
	}
	return tw.Render()
}

func newWriter(style table.Style) table.Writer {
	style.Format.Header = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)
	return tw
}

func alignRight(tw table.Writer, columns ...int) {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      n,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
}
