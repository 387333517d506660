// Package report prints analysis results to the console: tabular
// summaries styled with lipgloss and ASCII curves drawn with asciigraph.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tqcsim/internal/elastic"
	"github.com/san-kum/tqcsim/internal/storage"
	"github.com/san-kum/tqcsim/internal/table"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Run prints the metadata and post-threshold averages of a stored run.
func Run(w io.Writer, meta storage.RunMetadata) {
	fmt.Fprintln(w, headerStyle.Render("run "+meta.ID))
	kv := [][2]string{
		{"input", meta.Input},
		{"ensemble", meta.Ensemble},
		{"steps", fmt.Sprint(meta.Steps)},
		{"compliance", meta.Compliance.String()},
		{"source", meta.ComplianceSource},
		{"threshold", fmt.Sprintf("%s > %g (%d rows)", meta.ThresholdColumn, meta.Threshold, meta.RowsAbove)},
	}
	for _, p := range kv {
		if p[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", p[0]+":")), valueStyle.Render(p[1]))
	}
	fmt.Fprintln(w)
	Averages(w, meta.AverageOrder, meta.Averages)
}

// Averages prints post-threshold means, or a note when none exist.
func Averages(w io.Writer, order []string, averages map[string]float64) {
	if len(averages) == 0 {
		fmt.Fprintln(w, warnStyle.Render("no rows above threshold; no averages"))
		return
	}
	keys := append([]string(nil), order...)
	if len(keys) == 0 {
		for k := range averages {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tMEAN")
	for _, k := range keys {
		if v, ok := averages[k]; ok {
			fmt.Fprintf(tw, "%s\t%.6g\n", k, v)
		}
	}
	tw.Flush()
}

// Elastic prints fitted constants, the compliance and per-file problems.
// Verbose adds per-file slopes and fit quality.
func Elastic(w io.Writer, res *elastic.Result, verbose bool) {
	fmt.Fprintln(w, headerStyle.Render("elastic constants"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "C11\t%.6g\tS11\t%.6g\n", res.C11, res.Params.S11)
	fmt.Fprintf(tw, "C12\t%.6g\tS12\t%.6g\n", res.C12, res.Params.S12)
	fmt.Fprintf(tw, "C44\t%.6g\tS44\t%.6g\n", res.C44, res.Params.S44)
	tw.Flush()

	if verbose {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tLOAD\tROWS\tCONSTANT\tSLOPE\tR²")
		for _, o := range res.Outcomes {
			if !o.OK() {
				continue
			}
			names := make([]string, 0, len(o.Fit.Slopes))
			for k := range o.Fit.Slopes {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.6g\t%.4f\n",
					o.Source, o.Load.Identifier(), o.Fit.Rows, k, o.Fit.Slopes[k], o.Fit.RSquared[k])
			}
		}
		tw.Flush()
	}

	for _, msg := range res.Warnings {
		fmt.Fprintln(w, warnStyle.Render("warning: "+msg))
	}
	for _, o := range res.Failed() {
		fmt.Fprintln(w, errStyle.Render(fmt.Sprintf("skipped %s: %v", o.Source, o.Err)))
	}
}

// Curves renders one ASCII plot per column, downsampled to width points.
func Curves(t *table.Table, cols []string, height, width int) (string, error) {
	var b strings.Builder
	for _, name := range cols {
		data, ok := t.Column(name)
		if !ok {
			return "", fmt.Errorf("report: unknown column %q", name)
		}
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(Downsample(data, width),
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(name),
		)
		b.WriteString(graph)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// Downsample keeps at most n evenly spaced samples, always including the last.
func Downsample(x []float64, n int) []float64 {
	if n <= 0 || len(x) <= n {
		return x
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x[i*(len(x)-1)/(n-1)]
	}
	return out
}
