package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// dataXStringsForGraph is a bar per category, e.g. mean stay per admission type.
type dataXStringsForGraph struct {
	xValues   []string
	yValues   []float64
	nameYAxis string
	nameGraph string
	color     drawing.Color
}

func NewDataXStringsForGraph(xValues []string, y []float64, nameYAxis, nameGraph string, color drawing.Color) dataXStringsForGraph {
	return dataXStringsForGraph{
		xValues:   xValues,
		yValues:   y,
		nameYAxis: nameYAxis,
		nameGraph: nameGraph,
		color:     color,
	}
}
func (d dataXStringsForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataXStringsForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataXStringsForGraph) getYValues() []float64 {
	return d.yValues
}

func (d dataXStringsForGraph) lenXValues() int {
	return len(d.xValues)
}

func (d dataXStringsForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return chartDimensions(d.lenXValues(), len(d.yValues), minBarWidth)
}

// generateBarValues shades each bar by its value, darker for longer stays,
// the way a continuous "Blues" scale does.
func (d dataXStringsForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	max := findMaxValue(d.yValues)
	for i := 0; i < len(d.xValues); i++ {
		alpha := uint8(255)
		if max > 0 {
			alpha = uint8(80 + 175*d.yValues[i]/max)
		}
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: fmt.Sprintf("%s (%.1f)", d.xValues[i], d.yValues[i]), // Округляем до 1 знака после запятой
			Style: chart.Style{
				FillColor:   d.color.WithAlpha(alpha),
				StrokeColor: d.color,
			},
		})
	}
	return bars
}

func (d dataXStringsForGraph) generateGrid() []chart.Tick {
	return gridTicks(findMaxValue(d.yValues))
}
