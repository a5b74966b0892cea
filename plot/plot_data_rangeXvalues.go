package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// dataRangeXValuesForGraph is a histogram: one bar per [start, end) bin.
type dataRangeXValuesForGraph struct {
	xStart, xEnd []float64
	yValues      []float64
	nameYAxis    string
	nameGraph    string
	color        drawing.Color
}

func NewDataRangeXValuesForGraph(xStart, xEnd, y []float64, nameYAxis, nameGraph string, color drawing.Color) dataRangeXValuesForGraph {
	return dataRangeXValuesForGraph{
		xStart:    xStart,
		xEnd:      xEnd,
		yValues:   y,
		nameYAxis: nameYAxis,
		nameGraph: nameGraph,
		color:     color,
	}
}
func (d dataRangeXValuesForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataRangeXValuesForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataRangeXValuesForGraph) getYValues() []float64 {
	return d.yValues
}

func (d dataRangeXValuesForGraph) lenXValues() int {
	return len(d.xStart)
}

func (d dataRangeXValuesForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return chartDimensions(d.lenXValues(), len(d.yValues), minBarWidth)
}

func (d dataRangeXValuesForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	for i := 0; i < len(d.xStart); i++ {
		// bins hold whole days, so the last day of [start, end) is end-1
		label := fmt.Sprintf("%.f-%.f", d.xStart[i], d.xEnd[i]-1)
		if d.xEnd[i]-d.xStart[i] <= 1 {
			label = fmt.Sprintf("%.f", d.xStart[i])
		}
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: label,
			Style: chart.Style{
				FillColor:   d.color.WithAlpha(200),
				StrokeColor: d.color,
			},
		})
	}
	return bars
}

func (d dataRangeXValuesForGraph) generateGrid() []chart.Tick {
	return gridTicks(findMaxValue(d.yValues))
}
