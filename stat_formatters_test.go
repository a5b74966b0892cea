package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

func TestGenerateMetricsTable(t *testing.T) {
	m := models.Metrics{MeanStay: 5, MeanDefined: true, LongStays: 0, Total: 1, DatasetTotal: 2, Percent: 50}
	assert.Equal(t, `+----------+-------------------+---------------+-----------------+
| AVG STAY | LONG STAYS (>10D) | TOTAL RECORDS | % OF TOTAL DATA |
+----------+-------------------+---------------+-----------------+
| 5.0 Days |                 0 |             1 | 50.0%           |
+----------+-------------------+---------------+-----------------+`, GenerateMetricsTable(m))
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.n))
	}
}

func TestGenerateMetricsTable_EmptyView(t *testing.T) {
	out := GenerateMetricsTable(models.Metrics{DatasetTotal: 2})
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "0.0%")
}

func TestGenerateGroupsTable(t *testing.T) {
	out := GenerateGroupsTable([]models.GroupMean{
		{Group: "Elective", Mean: 12, Count: 1},
		{Group: "Emergency", Mean: 63.5, Count: 2},
	})
	assert.Equal(t, `+-------------------+----------+---------+
| TYPE OF ADMISSION | AVG STAY | RECORDS |
+-------------------+----------+---------+
| Elective          | 12.00    |       1 |
| Emergency         | 63.50    |       2 |
+-------------------+----------+---------+`, out)
}

func TestGenerateRowsTable_Limit(t *testing.T) {
	view := []models.Record{
		{Stay: 5, Values: map[string]string{"Age Group": "A", "Length of Stay": "5"}},
		{Stay: 10, Values: map[string]string{"Age Group": "B", "Length of Stay": "10"}},
	}
	out := GenerateRowsTable(view, []pipeline.Column{pipeline.ColumnAgeGroup, pipeline.ColumnLengthOfStay}, 1)
	assert.Contains(t, out, "| A         |")
	assert.NotContains(t, out, "| B ")
}
