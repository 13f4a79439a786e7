package plotpage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
)

func TestBuildBarChart(t *testing.T) {
	t.Parallel()

	opts := plotpage.NewChartOpts(plotpage.ThemeDark)
	labels := []string{"2024-05-01", "2024-05-02"}
	series := []plotpage.BarSeries{
		{Name: "firefox", Data: []plotpage.SeriesData{91.2, 92.0}, Color: "#fb923c"},
		{Name: "chrome", Data: []plotpage.SeriesData{nil, 88.4}},
	}

	chart := plotpage.BuildBarChart(opts, labels, series, plotpage.BarChartConfig{
		YAxisLabel: "% passed", Percent: true, Legend: true,
	})
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 2)
	require.Equal(t, "firefox", chart.MultiSeries[0].Name)
	require.Equal(t, "chrome", chart.MultiSeries[1].Name)
}

func TestBuildBarChart_NilOpts(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildBarChart(nil, []string{"d"},
		[]plotpage.BarSeries{{Name: "Data", Data: []plotpage.SeriesData{100}}}, plotpage.BarChartConfig{})
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
}

func TestBuildLineChart(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildLineChart(nil, []string{"Mon", "Tue"},
		[]plotpage.LineSeries{{Name: "tracked", Data: []plotpage.SeriesData{10, 12}, Color: "#00ff00", AreaOpacity: 0.2}},
		"specs")
	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
	require.Equal(t, "tracked", chart.MultiSeries[0].Name)
}
