package report

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"sosurvey/internal/config"
	apperrors "sosurvey/internal/errors"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Options describe a single chart.
type Options struct {
	Title  string
	XTitle string
	YTitle string
	// UseColorMap colors bars and markers by value through the plotter's
	// ColorMapper instead of one color per column.
	UseColorMap bool
}

// Plotter renders report charts with a uniform look into one directory.
type Plotter struct {
	outDir    string
	format    string
	rotation  float64
	labelSize int
	titleSize int
	width     int
	height    int
	mapper    ColorMapper
	logger    *slog.Logger
}

// NewPlotter creates a plotter from the report configuration. Formats other
// than png and svg are rejected.
func NewPlotter(cfg config.ReportConfig, logger *slog.Logger) (*Plotter, error) {
	format := strings.ToLower(cfg.Format)
	if format != FormatPNG && format != FormatSVG {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("format %s not supported, must be either svg or png", cfg.Format), nil)
	}
	if cfg.OutDir == "" {
		return nil, apperrors.NewConfigError("report output directory is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Plotter{
		outDir:    cfg.OutDir,
		format:    format,
		rotation:  cfg.LabelRotation,
		labelSize: orDefault(cfg.LabelSize, 14),
		titleSize: orDefault(cfg.TitleSize, 18),
		width:     orDefault(cfg.Width, 1200),
		height:    orDefault(cfg.Height, 600),
		mapper:    NewRedGreenMapper(),
		logger:    logger.With(slog.String("component", "plotter")),
	}
	return p, nil
}

// SetLabelRotation sets the rotation of the category axis labels in degrees.
func (p *Plotter) SetLabelRotation(deg float64) {
	p.rotation = deg
}

// SetColorMapper replaces the mapper used when Options.UseColorMap is set.
func (p *Plotter) SetColorMapper(m ColorMapper) {
	if m != nil {
		p.mapper = m
	}
}

// Format returns the output format.
func (p *Plotter) Format() string { return p.format }

// OutDir returns the directory charts are written to.
func (p *Plotter) OutDir() string { return p.outDir }

// BarPlot renders t as vertical bars and returns the written file.
func (p *Plotter) BarPlot(t Table, opts Options) (string, error) {
	return p.barPlot(t, opts, false)
}

// HorizontalBarPlot renders t as horizontal bars. The label rotation moves to
// the vertical axis and the chart is as tall as it is wide.
func (p *Plotter) HorizontalBarPlot(t Table, opts Options) (string, error) {
	return p.barPlot(t, opts, true)
}

// LinePlot renders one line per column of t and returns the written file.
func (p *Plotter) LinePlot(t Table, opts Options) (string, error) {
	if err := t.Validate(); err != nil {
		return "", apperrors.NewRenderError("invalid line plot data", err)
	}
	if len(t.Labels) == 0 {
		return "", errNothingToPlot(opts)
	}

	pl := p.newPlot(opts)
	p.styleCategoryAxis(&pl.X)
	p.styleValueAxis(&pl.Y)

	if opts.UseColorMap {
		p.mapper.Normalize(t.Range())
	}

	for i, col := range t.Columns {
		xys := make(plotter.XYs, len(col.Values))
		for j, v := range col.Values {
			xys[j].X = float64(j)
			xys[j].Y = v
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return "", apperrors.NewRenderError("failed to build line", err).WithContext("column", col.Name)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)

		points, err := plotter.NewScatter(xys)
		if err != nil {
			return "", apperrors.NewRenderError("failed to build markers", err).WithContext("column", col.Name)
		}
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Radius = vg.Points(3)
		points.GlyphStyle.Color = line.Color
		if opts.UseColorMap {
			values := col.Values
			base := points.GlyphStyle
			points.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				g := base
				g.Color = p.mapper.Color(values[i])
				return g
			}
		}

		pl.Add(line, points)
		pl.Legend.Add(col.Name, line)
	}
	pl.NominalX(t.Labels...)

	return p.save(pl, opts, p.width, p.height)
}

func (p *Plotter) barPlot(t Table, opts Options, horizontal bool) (string, error) {
	if err := t.Validate(); err != nil {
		return "", apperrors.NewRenderError("invalid bar plot data", err)
	}
	if len(t.Labels) == 0 {
		return "", errNothingToPlot(opts)
	}

	pl := p.newPlot(opts)
	height := p.height
	if horizontal {
		p.styleValueAxis(&pl.X)
		p.styleCategoryAxis(&pl.Y)
		height = p.width
	} else {
		p.styleCategoryAxis(&pl.X)
		p.styleValueAxis(&pl.Y)
	}

	if opts.UseColorMap {
		p.mapper.Normalize(t.Range())
	}

	barWidth := p.barWidth(len(t.Labels), len(t.Columns))
	for i, col := range t.Columns {
		offset := barWidth * vg.Length(float64(i)-float64(len(t.Columns)-1)/2)

		charts, err := p.bars(col, barWidth, i, opts.UseColorMap)
		if err != nil {
			return "", apperrors.NewRenderError("failed to build bars", err).WithContext("column", col.Name)
		}
		for _, bars := range charts {
			bars.Horizontal = horizontal
			bars.Offset = offset
			pl.Add(bars)
		}
		if len(t.Columns) > 1 {
			pl.Legend.Add(col.Name, charts[0])
		}
	}

	if horizontal {
		pl.NominalY(t.Labels...)
	} else {
		pl.NominalX(t.Labels...)
	}

	return p.save(pl, opts, p.width, height)
}

// bars returns one bar chart for col, or with a color map one chart per
// distinct color holding that color's values and zeros elsewhere.
func (p *Plotter) bars(col Column, width vg.Length, index int, useColorMap bool) ([]*plotter.BarChart, error) {
	if !useColorMap {
		bars, err := plotter.NewBarChart(plotter.Values(col.Values), width)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(index)
		bars.LineStyle.Width = 0
		return []*plotter.BarChart{bars}, nil
	}

	var (
		colors []color.Color
		groups []plotter.Values
	)
	for i, v := range col.Values {
		c := p.mapper.Color(v)
		g := indexOfColor(colors, c)
		if g < 0 {
			colors = append(colors, c)
			groups = append(groups, make(plotter.Values, len(col.Values)))
			g = len(colors) - 1
		}
		groups[g][i] = v
	}
	if len(groups) == 0 {
		groups = append(groups, plotter.Values{})
		colors = append(colors, plotutil.Color(index))
	}

	charts := make([]*plotter.BarChart, 0, len(groups))
	for g, values := range groups {
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, err
		}
		bars.Color = colors[g]
		bars.LineStyle.Width = 0
		charts = append(charts, bars)
	}
	return charts, nil
}

func indexOfColor(colors []color.Color, c color.Color) int {
	r, g, b, a := c.RGBA()
	for i, other := range colors {
		r2, g2, b2, a2 := other.RGBA()
		if r == r2 && g == g2 && b == b2 && a == a2 {
			return i
		}
	}
	return -1
}

func (p *Plotter) newPlot(opts Options) *plot.Plot {
	pl := plot.New()
	pl.BackgroundColor = color.Transparent

	pl.Title.Text = opts.Title
	pl.Title.TextStyle.Font.Size = vg.Points(float64(p.titleSize))
	pl.X.Label.Text = opts.XTitle
	pl.Y.Label.Text = opts.YTitle
	pl.X.Label.TextStyle.Font.Size = vg.Points(float64(p.labelSize))
	pl.Y.Label.TextStyle.Font.Size = vg.Points(float64(p.labelSize))

	pl.Legend.Top = true
	pl.Legend.TextStyle.Font.Size = vg.Points(float64(p.labelSize))
	return pl
}

func (p *Plotter) styleCategoryAxis(axis *plot.Axis) {
	axis.Tick.Label.Font.Size = vg.Points(float64(p.labelSize))
	if p.rotation != 0 {
		axis.Tick.Label.Rotation = p.rotation * math.Pi / 180
		axis.Tick.Label.XAlign = draw.XRight
		axis.Tick.Label.YAlign = draw.YCenter
	}
}

func (p *Plotter) styleValueAxis(axis *plot.Axis) {
	axis.Tick.Label.Font.Size = vg.Points(float64(p.labelSize))
	axis.Tick.Label.Rotation = 0
}

// barWidth spreads the bar groups over roughly 70% of the category axis.
func (p *Plotter) barWidth(labels, columns int) vg.Length {
	if labels == 0 || columns == 0 {
		return vg.Points(10)
	}
	// horizontal charts are as tall as they are wide
	w := pixels(p.width) * 0.7 / vg.Length(labels*columns)
	return vg.Length(math.Max(float64(w), float64(vg.Points(1))))
}

func (p *Plotter) save(pl *plot.Plot, opts Options, width, height int) (string, error) {
	if err := os.MkdirAll(p.outDir, 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create report directory", err).
			WithContext("dir", p.outDir)
	}

	path := filepath.Join(p.outDir, ChartFileName(opts, p.format))
	if err := pl.Save(pixels(width), pixels(height), path); err != nil {
		return "", apperrors.NewRenderError("failed to render chart", err).WithContext("file", path)
	}

	p.logger.Info("Chart written",
		slog.String("file", path),
		slog.String("title", opts.Title))
	return path, nil
}

func errNothingToPlot(opts Options) error {
	return apperrors.NewRenderError("nothing to plot: the table has no rows", nil).
		WithContext("title", opts.Title)
}

// ChartFileName derives the file name of a chart from its title, falling
// back to the y axis title and then to config.DefaultChartName. Spaces
// become underscores.
func ChartFileName(opts Options, format string) string {
	name := opts.Title
	if name == "" {
		name = opts.YTitle
	}
	if name == "" {
		name = config.DefaultChartName
	}
	return strings.ReplaceAll(name, " ", "_") + "." + format
}

// pixels converts a size in pixels to a length at the 96 dpi gonum uses for
// raster output.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
