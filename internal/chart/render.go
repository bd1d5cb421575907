package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sort"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/asksql/asksql/internal/query"
)

type Config struct {
	Width           int
	Height          int
	TopN            int
	PieSliceLimit   int
	PieOtherMinFrac float64
}

type Renderer struct {
	config Config
}

func NewRenderer(cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 700
	}
	if cfg.Height <= 0 {
		cfg.Height = 400
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.PieSliceLimit <= 0 {
		cfg.PieSliceLimit = 8
	}
	if cfg.PieOtherMinFrac <= 0 {
		cfg.PieOtherMinFrac = 0.02
	}
	return &Renderer{config: cfg}
}

type point struct {
	label    string
	value    float64
	x        float64
	xNumeric bool
}

// Render rasterizes the first two columns of the result as the given chart
// kind and returns a data:image/png;base64 URI.
func (r *Renderer) Render(result query.Result, kind Kind, question string) (string, error) {
	if kind == KindNone {
		return "", fmt.Errorf("no chart kind selected")
	}
	points, err := extractPoints(result)
	if err != nil {
		return "", err
	}

	// Bar and line charts stay readable by keeping only the largest values.
	if (kind == KindBar || kind == KindLine) && len(points) > r.config.TopN {
		sort.SliceStable(points, func(i, j int) bool { return points[i].value > points[j].value })
		points = points[:r.config.TopN]
	}

	var buf bytes.Buffer
	switch kind {
	case KindBar:
		err = r.renderBar(&buf, points, question)
	case KindLine:
		err = r.renderLine(&buf, points, question)
	case KindPie:
		err = r.renderPie(&buf, points, question)
	default:
		return "", fmt.Errorf("unsupported chart kind %q", kind)
	}
	if err != nil {
		return "", fmt.Errorf("render %s chart: %w", kind, err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *Renderer) renderBar(buf *bytes.Buffer, points []point, question string) error {
	bars := make([]gochart.Value, 0, len(points))
	for _, p := range points {
		bars = append(bars, gochart.Value{Label: p.label, Value: p.value})
	}
	graph := gochart.BarChart{
		Title:  chartTitle(question),
		Width:  r.config.Width,
		Height: r.config.Height,
		Bars:   bars,
	}
	return graph.Render(gochart.PNG, buf)
}

func (r *Renderer) renderLine(buf *bytes.Buffer, points []point, question string) error {
	xValues := make([]float64, 0, len(points))
	yValues := make([]float64, 0, len(points))
	for i, p := range points {
		x := float64(i)
		if p.xNumeric {
			x = p.x
		}
		xValues = append(xValues, x)
		yValues = append(yValues, p.value)
	}
	graph := gochart.Chart{
		Title:  chartTitle(question),
		Width:  r.config.Width,
		Height: r.config.Height,
		Series: []gochart.Series{
			gochart.ContinuousSeries{XValues: xValues, YValues: yValues},
		},
	}
	return graph.Render(gochart.PNG, buf)
}

func (r *Renderer) renderPie(buf *bytes.Buffer, points []point, question string) error {
	if len(points) > r.config.PieSliceLimit {
		points = groupSmallSlices(points, r.config.PieOtherMinFrac)
	}
	values := make([]gochart.Value, 0, len(points))
	for _, p := range points {
		values = append(values, gochart.Value{Label: p.label, Value: p.value})
	}
	graph := gochart.PieChart{
		Title:  chartTitle(question),
		Width:  r.config.Width,
		Height: r.config.Height,
		Values: values,
	}
	return graph.Render(gochart.PNG, buf)
}

// groupSmallSlices folds slices below minFrac of the total into "Other".
func groupSmallSlices(points []point, minFrac float64) []point {
	var total float64
	for _, p := range points {
		total += p.value
	}
	if total == 0 {
		total = 1
	}

	kept := make([]point, 0, len(points))
	var other float64
	for _, p := range points {
		if p.value/total < minFrac {
			other += p.value
			continue
		}
		kept = append(kept, p)
	}
	if other > 0 {
		kept = append(kept, point{label: "Other", value: other})
	}
	return kept
}

func extractPoints(result query.Result) ([]point, error) {
	if len(result.Columns) < 2 {
		return nil, fmt.Errorf("chart requires at least two columns, got %d", len(result.Columns))
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("chart requires at least one row")
	}

	points := make([]point, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) < 2 {
			continue
		}
		value, ok := toFloat(row[1])
		if !ok {
			return nil, fmt.Errorf("second column value %v is not numeric", row[1])
		}
		x, xNumeric := toFloat(row[0])
		points = append(points, point{label: fmt.Sprint(row[0]), value: value, x: x, xNumeric: xNumeric})
	}
	return points, nil
}

func chartTitle(question string) string {
	const maxRunes = 60
	runes := []rune(question)
	if len(runes) <= maxRunes {
		return question
	}
	return string(runes[:maxRunes]) + "..."
}
