package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pivolan/stay_dashboard/domain/models"
)

const SEPARATOR = ','

type Options struct {
	// Separator between fields; 0 means SEPARATOR.
	Separator rune
}

// Load reads and cleans the discharge file at path.
func Load(path string, opts Options) (*models.Dataset, error) {
	rc, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return LoadReader(rc, path, opts)
}

// LoadReader parses CSV from r. Rows whose length of stay does not survive
// CleanStay are dropped and counted in Dataset.Dropped.
func LoadReader(r io.Reader, source string, opts Options) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = SEPARATOR
	if opts.Separator != 0 {
		cr.Comma = opts.Separator
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s is empty", ErrSource, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrSource, source, err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, c := range RequiredColumns {
		if _, ok := index[c.Header()]; !ok {
			return nil, &MissingColumnError{Column: c.Header()}
		}
	}
	stayIdx := index[ColumnLengthOfStay.Header()]

	ds := &models.Dataset{
		Source:   source,
		Columns:  headers,
		LoadedAt: time.Now(),
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrSource, source, pe.Line, pe.Err)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrSource, source, err)
		}
		line, _ := cr.FieldPos(0)

		raw := ""
		if stayIdx < len(row) {
			raw = row[stayIdx]
		}
		stay, err := CleanStay(raw)
		if err != nil {
			ds.Dropped++
			continue
		}

		values := make(map[string]string, len(headers))
		for h, i := range index {
			if i < len(row) {
				values[h] = row[i]
			}
		}
		values[ColumnLengthOfStay.Header()] = FormatStay(stay)

		ds.Records = append(ds.Records, models.Record{
			Line:          line,
			Stay:          stay,
			AgeGroup:      values[ColumnAgeGroup.Header()],
			Gender:        values[ColumnGender.Header()],
			AdmissionType: values[ColumnAdmissionType.Header()],
			Values:        values,
		})
	}

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w: %s (%d rows dropped)", ErrNoRows, source, ds.Dropped)
	}
	return ds, nil
}
