package pipeline

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/pivolan/stay_dashboard/domain/models"
)

// LongStayThreshold: stays strictly above it count as long stays.
const LongStayThreshold = 10.0

// maxBins caps the automatic histogram bin count.
const maxBins = 50

// Summarize computes the header metrics of a filtered view. datasetTotal is
// the size of the whole cleaned Dataset. For an empty view the counts are
// filled in, MeanDefined is false and ErrEmptyView is returned.
func Summarize(view []models.Record, datasetTotal int) (models.Metrics, error) {
	m := models.Metrics{
		Total:        len(view),
		DatasetTotal: datasetTotal,
	}
	if datasetTotal > 0 {
		m.Percent = float64(len(view)) / float64(datasetTotal) * 100
	}
	for _, r := range view {
		if r.Stay > LongStayThreshold {
			m.LongStays++
		}
	}
	if len(view) == 0 {
		return m, ErrEmptyView
	}

	mean, err := stats.Mean(stayValues(view))
	if err != nil {
		return m, err
	}
	m.MeanStay = mean
	m.MeanDefined = true
	return m, nil
}

// GroupMeans returns the mean stay per value of column, ordered by group
// label. Rows with an empty group value are skipped.
func GroupMeans(view []models.Record, column string) []models.GroupMean {
	groups := map[string]stats.Float64Data{}
	for _, r := range view {
		key := r.Get(column)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], r.Stay)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]models.GroupMean, 0, len(keys))
	for _, k := range keys {
		mean, _ := stats.Mean(groups[k])
		result = append(result, models.GroupMean{Group: k, Mean: mean, Count: len(groups[k])})
	}
	return result
}

// Distribution bins the stays of view into integer-width bins and computes
// the five-number summary. bins <= 0 picks a count by Sturges' rule.
func Distribution(view []models.Record, bins int) (models.Distribution, error) {
	if len(view) == 0 {
		return models.Distribution{}, ErrEmptyView
	}
	data := stayValues(view)

	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	median, _ := stats.Median(data)
	q1, _ := stats.PercentileNearestRank(data, 25)
	q3, _ := stats.PercentileNearestRank(data, 75)

	if bins <= 0 {
		bins = int(math.Ceil(math.Log2(float64(len(data))))) + 1
	}
	if bins > maxBins {
		bins = maxBins
	}
	width := math.Ceil((hi - lo + 1) / float64(bins))
	if width < 1 {
		width = 1
	}
	bins = int(math.Ceil((hi - lo + 1) / width))

	hist := make([]models.HistogramData, bins)
	for i := range hist {
		hist[i].RangeStart = lo + float64(i)*width
		hist[i].RangeEnd = hist[i].RangeStart + width
	}
	for _, v := range data {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		hist[i].Count++
	}

	return models.Distribution{
		Bins: hist,
		Box:  models.BoxSummary{Min: lo, Q1: q1, Median: median, Q3: q3, Max: hi},
	}, nil
}
