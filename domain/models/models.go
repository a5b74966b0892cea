package models

import "time"

// Record is one discharge row. Stay is always a valid cleaned value.
type Record struct {
	Line          int // 1-based line in the source file, header is line 1
	Stay          float64
	AgeGroup      string
	Gender        string
	AdmissionType string
	Values        map[string]string // raw cells by header, stay replaced with the cleaned value
}

// Get returns the cell for a header, "" when the row has no such column.
func (r Record) Get(header string) string {
	return r.Values[header]
}

type Dataset struct {
	Source   string
	Columns  []string // header order of the source file
	Records  []Record
	Dropped  int // rows discarded because the stay did not parse
	LoadedAt time.Time
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether the source header contains name.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Criteria is the sidebar state: a closed stay range and accepted age groups.
type Criteria struct {
	MinStay   float64
	MaxStay   float64
	AgeGroups []string
}

type Metrics struct {
	MeanStay     float64
	MeanDefined  bool // false for an empty view
	LongStays    int
	Total        int // rows in the filtered view
	DatasetTotal int
	Percent      float64
}

type GroupMean struct {
	Group string
	Mean  float64
	Count int
}

type HistogramData struct {
	RangeStart float64
	RangeEnd   float64
	Count      int
}

// BoxSummary is the five-number summary drawn above the histogram.
type BoxSummary struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

type Distribution struct {
	Bins []HistogramData
	Box  BoxSummary
}
