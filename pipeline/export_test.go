package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pivolan/stay_dashboard/domain/models"
)

func TestValidateColumns(t *testing.T) {
	ds := loadString(t, sampleCSV)

	assert.NoError(t, ValidateColumns(ds, DefaultColumns()))
	assert.NoError(t, ValidateColumns(ds, []Column{ColumnTotalCharges, ColumnHealthServiceArea}))
	assert.ErrorIs(t, ValidateColumns(ds, nil), ErrNoColumns)
	assert.ErrorIs(t, ValidateColumns(ds, []Column{"shoe_size"}), ErrUnknownColumn)

	err := ValidateColumns(ds, []Column{ColumnAgeGroup, ColumnFacilityName})
	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "Facility Name", mce.Column)
}

func TestAvailableColumns(t *testing.T) {
	ds := loadString(t, sampleCSV)

	assert.Equal(t, []Column{
		ColumnHealthServiceArea,
		ColumnAgeGroup,
		ColumnGender,
		ColumnLengthOfStay,
		ColumnAdmissionType,
		ColumnTotalCharges,
	}, AvailableColumns(ds))
	assert.NotContains(t, AvailableColumns(ds), ColumnZipCode)
	assert.Nil(t, AvailableColumns(nil))
}

func TestWriteCSV(t *testing.T) {
	ds := exampleDataset(t)
	view, err := Filter(ds, DefaultCriteria(ds))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, view, DefaultColumns()))
	assert.Equal(t, "Age Group,Gender,Length of Stay\nA,F,5\nB,M,10\n", buf.String())
}

func TestWriteCSV_EmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, []Column{ColumnGender}))
	assert.Equal(t, "Gender\n", buf.String())

	assert.ErrorIs(t, WriteCSV(&buf, nil, nil), ErrNoColumns)
}

func TestWriteXLSX(t *testing.T) {
	ds := loadString(t, sampleCSV)
	view, err := Filter(ds, models.Criteria{MinStay: 100, MaxStay: 200, AgeGroups: AgeGroups(ds)})
	require.NoError(t, err)
	require.Len(t, view, 1)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, view, []Column{ColumnAdmissionType, ColumnLengthOfStay}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Type of Admission", "Length of Stay"},
		{"Emergency", "120"},
	}, rows)
}
