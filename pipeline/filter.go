package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/pivolan/stay_dashboard/domain/models"
)

// ValidateCriteria rejects NaN bounds and inverted ranges.
func ValidateCriteria(c models.Criteria) error {
	if math.IsNaN(c.MinStay) || math.IsNaN(c.MaxStay) {
		return fmt.Errorf("%w: bounds must be numbers", ErrInvalidRange)
	}
	if c.MinStay > c.MaxStay {
		return fmt.Errorf("%w: min %s is greater than max %s", ErrInvalidRange, FormatStay(c.MinStay), FormatStay(c.MaxStay))
	}
	return nil
}

// Filter returns, in source order, the records whose age group is accepted
// and whose stay lies in [MinStay, MaxStay]. An empty AgeGroups set accepts
// nothing. ds is never modified.
func Filter(ds *models.Dataset, c models.Criteria) ([]models.Record, error) {
	if err := ValidateCriteria(c); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, nil
	}
	accepted := make(map[string]struct{}, len(c.AgeGroups))
	for _, g := range c.AgeGroups {
		accepted[g] = struct{}{}
	}

	view := make([]models.Record, 0, len(ds.Records))
	for _, r := range ds.Records {
		if _, ok := accepted[r.AgeGroup]; !ok {
			continue
		}
		if r.Stay < c.MinStay || r.Stay > c.MaxStay {
			continue
		}
		view = append(view, r)
	}
	return view, nil
}

// DefaultCriteria selects the full stay range and every age group, so
// filtering with it returns the whole Dataset.
func DefaultCriteria(ds *models.Dataset) models.Criteria {
	lo, hi := StayBounds(ds)
	return models.Criteria{MinStay: lo, MaxStay: hi, AgeGroups: AgeGroups(ds)}
}

// StayBounds returns the smallest and largest stay, (0, 0) for no records.
func StayBounds(ds *models.Dataset) (float64, float64) {
	if ds.Len() == 0 {
		return 0, 0
	}
	data := stayValues(ds.Records)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	return lo, hi
}

// AgeGroups returns the distinct age group labels, sorted.
func AgeGroups(ds *models.Dataset) []string {
	if ds == nil {
		return nil
	}
	seen := map[string]struct{}{}
	groups := []string{}
	for _, r := range ds.Records {
		if _, ok := seen[r.AgeGroup]; ok {
			continue
		}
		seen[r.AgeGroup] = struct{}{}
		groups = append(groups, r.AgeGroup)
	}
	sort.Strings(groups)
	return groups
}

func stayValues(records []models.Record) stats.Float64Data {
	data := make(stats.Float64Data, len(records))
	for i, r := range records {
		data[i] = r.Stay
	}
	return data
}
