package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

var errInvalidSelection = errors.New("invalid selection")

// DashboardRequest is the control state of one interaction. Nil bounds mean
// the full range; AllAgeGroups ignores AgeGroups and accepts every group.
type DashboardRequest struct {
	MinStay      *float64
	MaxStay      *float64
	AgeGroups    []string
	AllAgeGroups bool
	Columns      []string
}

// DashboardState is everything one render pass needs.
type DashboardState struct {
	Dataset          *models.Dataset
	AllAgeGroups     []string
	MinBound         float64
	MaxBound         float64
	Criteria         models.Criteria
	View             []models.Record
	Metrics          models.Metrics
	Groups           []models.GroupMean
	Dist             models.Distribution
	Columns          []pipeline.Column
	AvailableColumns []pipeline.Column // known columns present in the loaded file
	Notice           string            // non-fatal, e.g. nothing matches the filters
}

type Dashboard struct {
	cache *pipeline.Cache
	log   zerolog.Logger
}

func NewDashboard(cache *pipeline.Cache, log zerolog.Logger) *Dashboard {
	return &Dashboard{cache: cache, log: log.With().Str("component", "dashboard").Logger()}
}

// Build runs one cached-load, filter, aggregate pass. A selection error
// still returns the state filled up to the controls, so the caller can
// redraw them next to the message.
func (d *Dashboard) Build(req DashboardRequest) (*DashboardState, error) {
	ds, err := d.cache.Get()
	if err != nil {
		return nil, err
	}

	st := &DashboardState{
		Dataset:          ds,
		AllAgeGroups:     pipeline.AgeGroups(ds),
		Columns:          pipeline.DefaultColumns(),
		AvailableColumns: pipeline.AvailableColumns(ds),
	}
	st.MinBound, st.MaxBound = pipeline.StayBounds(ds)

	crit := pipeline.DefaultCriteria(ds)
	if req.MinStay != nil {
		crit.MinStay = *req.MinStay
	}
	if req.MaxStay != nil {
		crit.MaxStay = *req.MaxStay
	}
	if !req.AllAgeGroups {
		crit.AgeGroups = req.AgeGroups
	}
	st.Criteria = crit

	if len(req.Columns) > 0 {
		cols, err := pipeline.ParseColumns(req.Columns)
		if err != nil {
			return st, fmt.Errorf("%w: %w", errInvalidSelection, err)
		}
		st.Columns = cols
	}

	st.View, err = pipeline.Filter(ds, crit)
	if err != nil {
		st.View = nil
		return st, fmt.Errorf("%w: %w", errInvalidSelection, err)
	}
	if err := pipeline.ValidateColumns(ds, st.Columns); err != nil {
		return st, fmt.Errorf("%w: %w", errInvalidSelection, err)
	}

	st.Metrics, err = pipeline.Summarize(st.View, ds.Len())
	switch {
	case errors.Is(err, pipeline.ErrEmptyView):
		st.Notice = "No records match the current filters. Widen the stay range or select more age groups."
	case err != nil:
		return nil, err
	default:
		st.Groups = pipeline.GroupMeans(st.View, pipeline.ColumnAdmissionType.Header())
		st.Dist, err = pipeline.Distribution(st.View, 0)
		if err != nil {
			return nil, err
		}
	}

	d.log.Debug().
		Float64("min", crit.MinStay).
		Float64("max", crit.MaxStay).
		Strs("age_groups", crit.AgeGroups).
		Int("rows", len(st.View)).
		Msg("dashboard pass")
	return st, nil
}

// describeError turns any pipeline failure into the single message shown to
// the user and an HTTP status.
func describeError(err error) (int, string) {
	var mce *pipeline.MissingColumnError
	switch {
	case errors.Is(err, errInvalidSelection):
		return http.StatusBadRequest, fmt.Sprintf("Please check your selection. Error: %v", err)
	case errors.Is(err, pipeline.ErrSource), errors.Is(err, pipeline.ErrNoRows), errors.As(err, &mce):
		return http.StatusInternalServerError, fmt.Sprintf("Please check your CSV file. Error: %v", err)
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Unexpected error: %v", err)
	}
}
