package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pivolan/go_utils"
	"github.com/xuri/excelize/v2"

	"github.com/pivolan/stay_dashboard/domain/models"
)

const SheetName = "Filtered"

// ValidateColumns checks a selection against the Dataset schema.
func ValidateColumns(ds *models.Dataset, cols []Column) error {
	if len(cols) == 0 {
		return ErrNoColumns
	}
	for _, c := range cols {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, string(c))
		}
		if ds == nil || !ds.HasColumn(c.Header()) {
			return &MissingColumnError{Column: c.Header()}
		}
	}
	return nil
}

// AvailableColumns returns the known columns present in the Dataset header,
// in AllColumns order.
func AvailableColumns(ds *models.Dataset) []Column {
	if ds == nil {
		return nil
	}
	cols := []Column{}
	for _, c := range AllColumns {
		if go_utils.InArray(c.Header(), ds.Columns) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Headers returns the header labels of cols.
func Headers(cols []Column) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.Header()
	}
	return h
}

// Rows projects the view onto cols.
func Rows(view []models.Record, cols []Column) [][]string {
	rows := make([][]string, len(view))
	for i, r := range view {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = r.Get(c.Header())
		}
		rows[i] = row
	}
	return rows
}

// WriteCSV writes the filtered view restricted to cols, header first.
func WriteCSV(w io.Writer, view []models.Record, cols []Column) error {
	if len(cols) == 0 {
		return ErrNoColumns
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(cols)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(view, cols) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV into a single-sheet workbook.
// Length of stay cells are stored as numbers.
func WriteXLSX(w io.Writer, view []models.Record, cols []Column) error {
	if len(cols) == 0 {
		return ErrNoColumns
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.Header()
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range view {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			if c == ColumnLengthOfStay {
				row[j] = r.Stay
				continue
			}
			row[j] = r.Get(c.Header())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+2, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
