package rendering

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarChart_Empty(t *testing.T) {
	assert.Nil(t, BarChart(nil))
	assert.Nil(t, BarChart([]string{" ", ""}))
}

func TestBarChart_ConstantHeight(t *testing.T) {
	chart := BarChart([]string{"Kubernetes", "Terraform", "gRPC"})
	require.NotNil(t, chart)
	require.Len(t, chart.Bars, 3)

	for i, bar := range chart.Bars {
		assert.Equal(t, float64(BarValue), bar.Height, "bar %d", i)
		assert.Equal(t, chart.BaselineY, bar.Y+bar.Height, "bar %d sits on the baseline", i)
	}
	assert.Equal(t, "Kubernetes", chart.Bars[0].Label)
	assert.Equal(t, "gRPC", chart.Bars[2].Label)
}

func TestBarChart_BarsDoNotOverlap(t *testing.T) {
	chart := BarChart([]string{"a", "b", "c", "d"})
	require.NotNil(t, chart)

	for i := 1; i < len(chart.Bars); i++ {
		prev := chart.Bars[i-1]
		assert.Greater(t, chart.Bars[i].X, prev.X+prev.Width)
	}
	last := chart.Bars[len(chart.Bars)-1]
	assert.LessOrEqual(t, last.X+last.Width, chart.Width)
}

func TestBarChart_DuplicateKeywords(t *testing.T) {
	chart := BarChart([]string{"Go", "SQL", "Go"})
	require.NotNil(t, chart)
	require.Len(t, chart.Bars, 2)
	assert.Equal(t, "Go", chart.Bars[0].Label)
	assert.Equal(t, "SQL", chart.Bars[1].Label)
}

func TestPieChart_Empty(t *testing.T) {
	assert.Nil(t, PieChart(nil))
	assert.Nil(t, PieChart([]string{}))
}

func TestPieChart_SingleRole(t *testing.T) {
	chart := PieChart([]string{"Platform Engineer"})
	require.NotNil(t, chart)
	require.Len(t, chart.Slices, 1)

	assert.True(t, chart.Full())
	assert.Empty(t, chart.Slices[0].Path)
	assert.InDelta(t, 100, chart.Slices[0].Percent, 1e-9)
}

func TestPieChart_EqualSlices(t *testing.T) {
	chart := PieChart([]string{"SRE", "Platform Engineer", "Backend Engineer", "Data Engineer"})
	require.NotNil(t, chart)
	require.Len(t, chart.Slices, 4)
	assert.False(t, chart.Full())

	for _, s := range chart.Slices {
		assert.Equal(t, 1, s.Count)
		assert.InDelta(t, 25, s.Percent, 1e-9)
		assert.True(t, strings.HasPrefix(s.Path, "M "), s.Path)
		assert.True(t, strings.HasSuffix(s.Path, " Z"), s.Path)
	}
	assert.NotEqual(t, chart.Slices[0].Color, chart.Slices[1].Color)
}

func TestPieChart_FirstSliceStartsAtTop(t *testing.T) {
	chart := PieChart([]string{"A", "B"})
	require.NotNil(t, chart)

	// Path: M cx cy L x0 y0 A ...
	fields := strings.Fields(chart.Slices[0].Path)
	require.GreaterOrEqual(t, len(fields), 6)
	x0, err := strconv.ParseFloat(fields[4], 64)
	require.NoError(t, err)
	y0, err := strconv.ParseFloat(fields[5], 64)
	require.NoError(t, err)

	assert.InDelta(t, chart.CX, x0, 0.01)
	assert.InDelta(t, chart.CY-chart.R, y0, 0.01)
}

func TestPieChart_RepeatedRolesMerge(t *testing.T) {
	chart := PieChart([]string{"SRE", "DevOps", "SRE"})
	require.NotNil(t, chart)
	require.Len(t, chart.Slices, 2)

	assert.Equal(t, "SRE", chart.Slices[0].Label)
	assert.Equal(t, 2, chart.Slices[0].Count)
	assert.InDelta(t, 200.0/3, chart.Slices[0].Percent, 1e-9)
	assert.Contains(t, chart.Slices[0].Path, " 0 1 1 ", "a slice over half the pie uses the large arc")
}

func TestPieChart_ColorsCycle(t *testing.T) {
	roles := make([]string, len(Palette)+1)
	for i := range roles {
		roles[i] = "role" + strconv.Itoa(i)
	}
	chart := PieChart(roles)
	require.NotNil(t, chart)
	assert.Equal(t, chart.Slices[0].Color, chart.Slices[len(Palette)].Color)
}

func TestArcPath(t *testing.T) {
	path := arcPath(100, 100, 50, -math.Pi/2, 0)
	assert.Equal(t, "M 100.00 100.00 L 100.00 50.00 A 50.00 50.00 0 0 1 150.00 100.00 Z", path)
}
