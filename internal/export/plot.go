// Package export renders result columns to image files with gonum/plot.
// The format follows the file extension (.png, .svg, .pdf, .eps, .jpg).
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/tqcsim/internal/table"
)

// PlotConfig selects what to draw and the figure size in inches.
type PlotConfig struct {
	Title  string
	X      string
	Y      []string
	Width  float64
	Height float64
}

func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		X:      "step",
		Width:  8,
		Height: 5,
	}
}

var formats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".eps": true,
	".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
}

// Chart builds a line plot of cfg.Y against cfg.X.
func Chart(t *table.Table, cfg PlotConfig) (*plot.Plot, error) {
	if len(cfg.Y) == 0 {
		return nil, fmt.Errorf("export: no columns to plot")
	}
	xs, ok := t.Column(cfg.X)
	if !ok {
		return nil, fmt.Errorf("export: unknown x column %q", cfg.X)
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.X
	if len(cfg.Y) == 1 {
		p.Y.Label.Text = cfg.Y[0]
	}
	p.Add(plotter.NewGrid())

	for i, name := range cfg.Y {
		ys, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("export: unknown column %q", name)
		}
		pts := make(plotter.XYs, len(xs))
		for j := range xs {
			pts[j].X = xs[j]
			pts[j].Y = ys[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("export: %s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// Save writes the chart to path; the extension picks the format.
func Save(t *table.Table, cfg PlotConfig, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !formats[ext] {
		return fmt.Errorf("export: unsupported image format %q", ext)
	}
	p, err := Chart(t, cfg)
	if err != nil {
		return err
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		def := DefaultPlotConfig()
		w, h = def.Width, def.Height
	}
	return p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, path)
}
