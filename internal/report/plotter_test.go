package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sosurvey/internal/analysis"
	"sosurvey/internal/config"
	apperrors "sosurvey/internal/errors"
)

func testPlotter(t *testing.T, format string) *Plotter {
	t.Helper()
	cfg := config.Default().Report
	cfg.OutDir = filepath.Join(t.TempDir(), "charts")
	cfg.Format = format
	cfg.Width = 400
	cfg.Height = 300

	p, err := NewPlotter(cfg, nil)
	require.NoError(t, err)
	return p
}

func languages() Table {
	return SeriesTable("share",
		[]string{"JavaScript", "Python", "Go"},
		[]float64{0.67, 0.41, 0.08})
}

func TestNewPlotter_Formats(t *testing.T) {
	cfg := config.Default().Report
	cfg.OutDir = t.TempDir()

	for _, format := range []string{"png", "svg", "SVG"} {
		cfg.Format = format
		_, err := NewPlotter(cfg, nil)
		assert.NoError(t, err, format)
	}

	cfg.Format = "jpg"
	_, err := NewPlotter(cfg, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "jpg")
}

func TestChartFileName(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"title wins", Options{Title: "Most popular languages", YTitle: "share"}, "Most_popular_languages.png"},
		{"y title fallback", Options{YTitle: "share of respondents"}, "share_of_respondents.png"},
		{"default name", Options{XTitle: "language"}, config.DefaultChartName + ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChartFileName(tt.opts, FormatPNG))
		})
	}
}

func TestBarPlot_PNG(t *testing.T) {
	p := testPlotter(t, FormatPNG)

	path, err := p.BarPlot(languages(), Options{Title: "Languages 2019", YTitle: "share"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(p.OutDir(), "Languages_2019.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestBarPlot_SVGWithColorMap(t *testing.T) {
	p := testPlotter(t, FormatSVG)
	p.SetLabelRotation(45)

	table := SeriesTable("change", []string{"Go", "Perl", "Rust"}, []float64{0.02, -0.03, 0.04})
	path, err := p.BarPlot(table, Options{YTitle: "change since 2018", UseColorMap: true})
	require.NoError(t, err)

	assert.Equal(t, "change_since_2018.svg", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestHorizontalBarPlot(t *testing.T) {
	p := testPlotter(t, FormatPNG)

	table := Table{
		Labels: []string{"Go", "Python"},
		Columns: []Column{
			{Name: "2018", Values: []float64{0.07, 0.38}},
			{Name: "2019", Values: []float64{0.08, 0.41}},
		},
	}
	path, err := p.HorizontalBarPlot(table, Options{Title: "Languages"})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestLinePlot(t *testing.T) {
	p := testPlotter(t, FormatSVG)

	trend := analysis.CompareYears(map[string]analysis.Fractions{
		"2018": {Answers: []analysis.AnswerCount{{Answer: "Go", Fraction: 0.07}}},
		"2019": {Answers: []analysis.AnswerCount{{Answer: "Go", Fraction: 0.08}}},
	})
	path, err := p.LinePlot(TrendTable(trend), Options{Title: "Go over time", UseColorMap: true})
	require.NoError(t, err)
	assert.Equal(t, "Go_over_time.svg", filepath.Base(path))
	assert.FileExists(t, path)
}

func TestPlots_RejectMismatchedTable(t *testing.T) {
	p := testPlotter(t, FormatPNG)
	bad := Table{Labels: []string{"a", "b"}, Columns: []Column{{Name: "x", Values: []float64{1}}}}

	_, err := p.BarPlot(bad, Options{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))

	_, err = p.LinePlot(Table{}, Options{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
}

func TestPlots_EmptyDistribution(t *testing.T) {
	p := testPlotter(t, FormatPNG)
	empty := FractionsTable(analysis.Fractions{Column: "Lang"})

	for name, plot := range map[string]func(Table, Options) (string, error){
		"bar":        p.BarPlot,
		"horizontal": p.HorizontalBarPlot,
		"line":       p.LinePlot,
	} {
		t.Run(name, func(t *testing.T) {
			path, err := plot(empty, Options{Title: "Lang 2019"})
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
			assert.Contains(t, err.Error(), "nothing to plot")
			assert.Empty(t, path)
			assert.NoFileExists(t, filepath.Join(p.OutDir(), "Lang_2019.png"))
		})
	}
}
