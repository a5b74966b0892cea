package plot

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/stay_dashboard/domain/models"
)

// ParseColor accepts "#2E86C1" or "2E86C1".
func ParseColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// DrawStayHistogram renders the stay distribution as a PNG bar chart. The
// five-number summary goes into the title.
func DrawStayHistogram(dist models.Distribution, color drawing.Color) ([]byte, error) {
	if len(dist.Bins) == 0 {
		return nil, fmt.Errorf("no histogram bins to draw")
	}
	xStart := make([]float64, len(dist.Bins))
	xEnd := make([]float64, len(dist.Bins))
	yValues := make([]float64, len(dist.Bins))
	for i, b := range dist.Bins {
		xStart[i] = b.RangeStart
		xEnd[i] = b.RangeEnd
		yValues[i] = float64(b.Count)
	}
	box := dist.Box
	title := fmt.Sprintf("Stay Distribution (min %.f, Q1 %.f, median %.1f, Q3 %.f, max %.f)",
		box.Min, box.Q1, box.Median, box.Q3, box.Max)
	return DrawPlotBar(NewDataRangeXValuesForGraph(xStart, xEnd, yValues, "Records", title, color))
}

// DrawAdmissionBar renders mean length of stay per admission type.
func DrawAdmissionBar(groups []models.GroupMean, color drawing.Color) ([]byte, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no groups to draw")
	}
	x := make([]string, len(groups))
	y := make([]float64, len(groups))
	for i, g := range groups {
		x[i] = g.Group
		y[i] = g.Mean
	}
	return DrawPlotBar(NewDataXStringsForGraph(x, y, "Length of Stay", "Stay by Admission Type", color))
}

func DrawPlotBar(data dataForGraph) ([]byte, error) {
	barValues := data.generateBarValues()
	paddingX := customizePaddingXBottom(barValues)
	width, height := data.calculateChartDimensions(100)
	maxY := findMaxValue(data.getYValues())
	if maxY <= 0 {
		// go-chart refuses a zero-height range
		maxY = 1
	}

	bar := chart.BarChart{}
	bar.Title = data.GetNameGraph()
	bar.TitleStyle = chart.Style{FontSize: 14}
	bar.Background = chart.Style{
		FillColor:   drawing.ColorWhite,
		StrokeColor: drawing.ColorFromHex("efefef"),
		StrokeWidth: 1,
		Padding: chart.Box{
			Bottom: paddingX,
			Top:    50,
			Left:   20,
			Right:  20,
		},
	}
	bar.Height = height + 50
	bar.Width = width + paddingX + 50
	bar.BarWidth = 60
	bar.Bars = barValues
	bar.YAxis = chart.YAxis{
		Name: data.getNameYAxis(),
		Range: &chart.ContinuousRange{
			Min: 0.0,
			Max: maxY,
		},
		Style: chart.Style{
			StrokeWidth: 2, // Толщина линии
			StrokeColor: chart.ColorBlack,
			FontSize:    12,
		},
		Ticks: data.generateGrid(),
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0}, // Пунктирная линия
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            12,
	}
	buffer := bytes.NewBuffer([]byte{})

	// Отрисовываем график в формате PNG
	err := bar.Render(chart.PNG, buffer)
	if err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}

	return buffer.Bytes(), nil
}

func chartDimensions(bars, values int, minBarWidth float64) (width, height int) {
	// Проверка входных параметров
	if values == 0 || bars <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if bars < 2 {
		x = 10.0
	} else if bars < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100        // отступ для оси Y и подписей
		spacingRatio = 0.2        // соотношение отступа между столбцами к ширине столбца
		aspectRatio  = 9.0 / 16.0 // соотношение сторон по умолчанию
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(bars) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func gridTicks(max float64) []chart.Tick {
	step := calculateGridStep(max)
	if step <= 0 {
		return nil
	}
	var ticks []chart.Tick
	for i := 0.0; i <= max; i += step {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.1f", i),
		})
	}
	return ticks
}

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	// Обработка очень маленьких чисел
	if maxValue < 1e-10 {
		return 1e-10
	}

	// Находим порядок величины максимального значения
	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))

	// Нормализуем значение к диапазону [1, 10)
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude

	// Округляем большие шаги до "красивых" чисел
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}

	return finalStep
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return count * 8
}
