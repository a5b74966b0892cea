package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

// FormatMean renders the mean stay, "n/a" for an empty view.
func FormatMean(m models.Metrics) string {
	if !m.MeanDefined {
		return "n/a"
	}
	return fmt.Sprintf("%.1f Days", m.MeanStay)
}

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders a record count with thousands separators: 1234567 -> "1,234,567".
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// GenerateMetricsTable renders the four header metrics.
func GenerateMetricsTable(m models.Metrics) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Avg Stay", fmt.Sprintf("Long Stays (>%.fd)", pipeline.LongStayThreshold), "Total Records", "% of Total Data"})
	t.AppendRow(table.Row{FormatMean(m), m.LongStays, m.Total, fmt.Sprintf("%.1f%%", m.Percent)})
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateGroupsTable renders mean stay per admission type.
func GenerateGroupsTable(groups []models.GroupMean) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Type of Admission", "Avg Stay", "Records"})
	for _, g := range groups {
		t.AppendRow(table.Row{g.Group, fmt.Sprintf("%.2f", g.Mean), g.Count})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// GenerateRowsTable renders at most limit rows of the view restricted to cols.
func GenerateRowsTable(view []models.Record, cols []pipeline.Column, limit int) string {
	t := table.NewWriter()
	header := table.Row{}
	for _, h := range pipeline.Headers(cols) {
		header = append(header, h)
	}
	t.AppendHeader(header)
	if limit > 0 && len(view) > limit {
		view = view[:limit]
	}
	for _, r := range pipeline.Rows(view, cols) {
		row := table.Row{}
		for _, v := range r {
			row = append(row, v)
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}
