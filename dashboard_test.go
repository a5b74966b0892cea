package main

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/stay_dashboard/pipeline"
)

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	return NewDashboard(pipeline.NewCache(writeSource(t, dischargesCSV), pipeline.Options{}, zerolog.Nop()), zerolog.Nop())
}

func TestDashboard_BuildDefaults(t *testing.T) {
	st, err := newTestDashboard(t).Build(DashboardRequest{AllAgeGroups: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"0 to 17", "18 to 29", "70 or Older"}, st.AllAgeGroups)
	assert.Equal(t, 1.0, st.MinBound)
	assert.Equal(t, 120.0, st.MaxBound)
	assert.Len(t, st.View, 5)
	assert.Equal(t, 5, st.Metrics.Total)
	assert.Equal(t, 2, st.Metrics.LongStays)
	assert.InDelta(t, 28.6, st.Metrics.MeanStay, 1e-9)
	assert.Equal(t, pipeline.DefaultColumns(), st.Columns)
	assert.Empty(t, st.Notice)
	require.Len(t, st.Groups, 3)
	assert.Equal(t, "Elective", st.Groups[0].Group)
}

func TestDashboard_BuildFiltered(t *testing.T) {
	lo, hi := 1.0, 7.0
	st, err := newTestDashboard(t).Build(DashboardRequest{
		MinStay:   &lo,
		MaxStay:   &hi,
		AgeGroups: []string{"0 to 17"},
		Columns:   []string{"Type of Admission", "length_of_stay"},
	})
	require.NoError(t, err)

	assert.Len(t, st.View, 2)
	assert.InDelta(t, 40.0, st.Metrics.Percent, 1e-9)
	assert.Equal(t, []pipeline.Column{pipeline.ColumnAdmissionType, pipeline.ColumnLengthOfStay}, st.Columns)
}

func TestDashboard_BuildEmptyView(t *testing.T) {
	st, err := newTestDashboard(t).Build(DashboardRequest{})
	require.NoError(t, err)

	assert.Empty(t, st.View)
	assert.False(t, st.Metrics.MeanDefined)
	assert.NotEmpty(t, st.Notice)
	assert.Empty(t, st.Groups)
}

func TestDashboard_BuildErrors(t *testing.T) {
	lo, hi := 9.0, 2.0
	_, err := newTestDashboard(t).Build(DashboardRequest{AllAgeGroups: true, MinStay: &lo, MaxStay: &hi})
	assert.ErrorIs(t, err, errInvalidSelection)
	assert.ErrorIs(t, err, pipeline.ErrInvalidRange)

	_, err = newTestDashboard(t).Build(DashboardRequest{AllAgeGroups: true, Columns: []string{"zip_code_3_digits"}})
	var mce *pipeline.MissingColumnError
	assert.ErrorAs(t, err, &mce)
	assert.ErrorIs(t, err, errInvalidSelection)

	_, err = newTestDashboard(t).Build(DashboardRequest{AllAgeGroups: true, Columns: []string{"shoe_size"}})
	assert.ErrorIs(t, err, pipeline.ErrUnknownColumn)

	missing := NewDashboard(pipeline.NewCache(filepath.Join(t.TempDir(), "none.csv"), pipeline.Options{}, zerolog.Nop()), zerolog.Nop())
	_, err = missing.Build(DashboardRequest{AllAgeGroups: true})
	assert.ErrorIs(t, err, pipeline.ErrSource)
}

func TestDashboard_BuildErrorKeepsControls(t *testing.T) {
	lo, hi := 10.0, 5.0
	st, err := newTestDashboard(t).Build(DashboardRequest{AgeGroups: []string{"0 to 17"}, MinStay: &lo, MaxStay: &hi})
	require.ErrorIs(t, err, errInvalidSelection)
	require.NotNil(t, st)

	assert.NotNil(t, st.Dataset)
	assert.Equal(t, []string{"0 to 17", "18 to 29", "70 or Older"}, st.AllAgeGroups)
	assert.Equal(t, 1.0, st.MinBound)
	assert.Equal(t, 120.0, st.MaxBound)
	assert.Equal(t, 10.0, st.Criteria.MinStay)
	assert.Equal(t, 5.0, st.Criteria.MaxStay)
	assert.Equal(t, []string{"0 to 17"}, st.Criteria.AgeGroups)
	assert.Empty(t, st.View)
	assert.Equal(t, pipeline.DefaultColumns(), st.Columns)
	assert.NotContains(t, st.AvailableColumns, pipeline.ColumnZipCode)

	st, err = newTestDashboard(t).Build(DashboardRequest{AllAgeGroups: true, Columns: []string{"shoe_size"}})
	require.ErrorIs(t, err, errInvalidSelection)
	require.NotNil(t, st)
	assert.Equal(t, pipeline.DefaultColumns(), st.Columns)
	assert.NotEmpty(t, st.AllAgeGroups)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		prefix string
	}{
		{fmt.Errorf("%w: %w", errInvalidSelection, pipeline.ErrInvalidRange), http.StatusBadRequest, "Please check your selection. Error: "},
		{fmt.Errorf("%w: boom", pipeline.ErrSource), http.StatusInternalServerError, "Please check your CSV file. Error: "},
		{&pipeline.MissingColumnError{Column: "Age Group"}, http.StatusInternalServerError, "Please check your CSV file. Error: "},
		{errors.New("boom"), http.StatusInternalServerError, "Unexpected error: "},
	}
	for _, tt := range tests {
		status, msg := describeError(tt.err)
		assert.Equal(t, tt.status, status)
		assert.Contains(t, msg, tt.prefix)
		assert.Contains(t, msg, tt.err.Error())
	}
}
