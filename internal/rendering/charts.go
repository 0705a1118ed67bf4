package rendering

import (
	"fmt"
	"math"
	"strings"
)

// Bar chart layout in SVG user units
const (
	BarValue      = 50
	barWidth      = 40
	barGap        = 24
	barMargin     = 24
	barTop        = 16
	barLabelSpace = 110
)

// Pie chart layout in SVG user units
const (
	pieRadius      = 110
	pieMargin      = 10
	pieLegendWidth = 260
	pieLegendRow   = 22
)

// Palette cycles through slice and bar colors
var Palette = []string{
	"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a",
	"#19d3f3", "#ff6692", "#b6e880", "#ff97ff", "#fecb52",
}

// Bar is one rectangle of a bar chart
type Bar struct {
	Label  string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Color  string
	// LabelX and LabelY anchor the rotated axis label
	LabelX float64
	LabelY float64
}

// BarChartSVG holds the geometry of a bar chart
type BarChartSVG struct {
	Width     float64
	Height    float64
	BaselineY float64
	Bars      []Bar
}

// BarChart lays out one bar per distinct keyword, every bar BarValue units tall.
// Returns nil when there are no keywords.
func BarChart(keywords []string) *BarChartSVG {
	labels := distinct(keywords)
	if len(labels) == 0 {
		return nil
	}

	n := float64(len(labels))
	chart := &BarChartSVG{
		Width:     2*barMargin + n*barWidth + (n-1)*barGap,
		Height:    barTop + BarValue + barLabelSpace,
		BaselineY: barTop + BarValue,
		Bars:      make([]Bar, 0, len(labels)),
	}

	for i, label := range labels {
		x := barMargin + float64(i)*(barWidth+barGap)
		chart.Bars = append(chart.Bars, Bar{
			Label:  label.name,
			X:      x,
			Y:      barTop,
			Width:  barWidth,
			Height: BarValue,
			Color:  Palette[0],
			LabelX: x + barWidth/2,
			LabelY: chart.BaselineY + 12,
		})
	}
	return chart
}

// Slice is one wedge of a pie chart
type Slice struct {
	Label   string
	Count   int
	Percent float64
	// Path is the SVG path data; empty when the slice is the whole pie
	Path    string
	Color   string
	LegendY float64
}

// PieChartSVG holds the geometry of a pie chart
type PieChartSVG struct {
	Width  float64
	Height float64
	CX     float64
	CY     float64
	R      float64
	Slices []Slice
}

// Full reports whether a single slice covers the whole pie
func (p *PieChartSVG) Full() bool {
	return len(p.Slices) == 1
}

// LegendX is the x position of the legend swatches
func (p *PieChartSVG) LegendX() float64 {
	return 2*(pieRadius+pieMargin) + pieMargin
}

// LegendTextX is the x position of the legend labels
func (p *PieChartSVG) LegendTextX() float64 {
	return p.LegendX() + 18
}

// PieChart lays out one slice per role with a count of one each.
// Repeated roles share a slice whose count is the number of repeats.
// Returns nil when there are no roles.
func PieChart(roles []string) *PieChartSVG {
	labels := distinct(roles)
	if len(labels) == 0 {
		return nil
	}

	total := 0
	for _, l := range labels {
		total += l.count
	}

	legendHeight := float64(len(labels))*pieLegendRow + 2*pieMargin
	height := math.Max(2*(pieRadius+pieMargin), legendHeight)
	chart := &PieChartSVG{
		Width:  2*(pieRadius+pieMargin) + pieLegendWidth,
		Height: height,
		CX:     pieRadius + pieMargin,
		CY:     height / 2,
		R:      pieRadius,
		Slices: make([]Slice, 0, len(labels)),
	}

	// Start at twelve o'clock and sweep clockwise
	angle := -math.Pi / 2
	for i, l := range labels {
		share := float64(l.count) / float64(total)
		next := angle + share*2*math.Pi

		slice := Slice{
			Label:   l.name,
			Count:   l.count,
			Percent: share * 100,
			Color:   Palette[i%len(Palette)],
			LegendY: pieMargin + float64(i)*pieLegendRow + pieLegendRow/2,
		}
		if len(labels) > 1 {
			slice.Path = arcPath(chart.CX, chart.CY, chart.R, angle, next)
		}
		chart.Slices = append(chart.Slices, slice)
		angle = next
	}
	return chart
}

// arcPath returns the path data for a wedge between two angles in radians
func arcPath(cx, cy, r, from, to float64) string {
	x0, y0 := cx+r*math.Cos(from), cy+r*math.Sin(from)
	x1, y1 := cx+r*math.Cos(to), cy+r*math.Sin(to)
	largeArc := 0
	if to-from > math.Pi {
		largeArc = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "M %s %s ", num(cx), num(cy))
	fmt.Fprintf(&sb, "L %s %s ", num(x0), num(y0))
	fmt.Fprintf(&sb, "A %s %s 0 %d 1 %s %s Z", num(r), num(r), largeArc, num(x1), num(y1))
	return sb.String()
}

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

type labelCount struct {
	name  string
	count int
}

// distinct returns trimmed non-empty labels in first-seen order with their counts
func distinct(items []string) []labelCount {
	index := make(map[string]int, len(items))
	var out []labelCount
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if i, ok := index[item]; ok {
			out[i].count++
			continue
		}
		index[item] = len(out)
		out = append(out, labelCount{name: item, count: 1})
	}
	return out
}
