package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/sample.report/internal/sampling"
)

// RenderDistributionChart writes a self-contained HTML bar chart comparing
// population share vs sample share per stratum, for eyeballing how well the
// allocation tracked the population. Unstratified runs have no distribution
// to plot.
func RenderDistributionChart(w io.Writer, s *sampling.Summary) error {
	if len(s.Population.Distribution) == 0 {
		return fmt.Errorf("no stratified distribution to chart")
	}

	labels := make([]string, len(s.Population.Distribution))
	popShares := make([]opts.BarData, len(s.Population.Distribution))
	for i, d := range s.Population.Distribution {
		labels[i] = d.Stratum.Label()
		popShares[i] = opts.BarData{Value: d.Share}
	}
	sampleShares := make([]opts.BarData, len(s.Sample.Distribution))
	for i, d := range s.Sample.Distribution {
		sampleShares[i] = opts.BarData{Value: d.Share}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sample Distribution", Width: "1100px", Height: "550px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Population vs Sample Share by Stratum",
			Subtitle: fmt.Sprintf("population=%d sample=%d method=%s", s.Population.Size, s.Sample.Size, s.Methodology.Method),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "share"}),
	)
	bar.SetXAxis(labels).
		AddSeries("population", popShares).
		AddSeries("sample", sampleShares)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// SaveDistributionChart writes the chart to a file.
func SaveDistributionChart(path string, s *sampling.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := RenderDistributionChart(f, s); err != nil {
		return err
	}
	return f.Close()
}
