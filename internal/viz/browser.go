package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tqcsim/internal/metrics"
	"github.com/san-kum/tqcsim/internal/report"
	"github.com/san-kum/tqcsim/internal/table"
)

const (
	stateList = iota
	statePlot
)

// Options configure a Browser.
type Options struct {
	Title string
	Theme string
	// ThresholdColumn and Threshold, when set, add a bar showing the
	// fraction of rows past the yield threshold.
	ThresholdColumn string
	Threshold       float64
}

// Browser is a Bubble Tea model over the columns of a result table.
type Browser struct {
	table         *table.Table
	columns       []string
	opts          Options
	theme         Theme
	styles        Styles
	state, cursor int
	offset        int
	width, height int
}

func NewBrowser(t *table.Table, opts Options) *Browser {
	theme := GetTheme(opts.Theme)
	return &Browser{
		table:   t,
		columns: t.Names(),
		opts:    opts,
		theme:   theme,
		styles:  NewStyles(theme),
		width:   80,
		height:  24,
	}
}

// Selected returns the column under the cursor.
func (b *Browser) Selected() string {
	if len(b.columns) == 0 {
		return ""
	}
	return b.columns[b.cursor]
}

func (b *Browser) Plotting() bool { return b.state == statePlot }

func (b *Browser) Init() tea.Cmd { return nil }

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b, b.handleKey(msg.String())
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.scroll()
	}
	return b, nil
}

func (b *Browser) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c":
		return tea.Quit
	case "t":
		b.theme = nextTheme(b.theme)
		b.styles = NewStyles(b.theme)
		return nil
	}

	if b.state == statePlot {
		switch key {
		case "q", "esc", "backspace":
			b.state = stateList
		}
		return nil
	}

	switch key {
	case "q":
		return tea.Quit
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(b.columns)-1 {
			b.cursor++
		}
	case "g", "home":
		b.cursor = 0
	case "G", "end":
		b.cursor = max(len(b.columns)-1, 0)
	case "enter", " ":
		if len(b.columns) > 0 {
			b.state = statePlot
		}
	}
	b.scroll()
	return nil
}

func (b *Browser) visibleRows() int {
	return max(b.height-10, 3)
}

func (b *Browser) scroll() {
	rows := b.visibleRows()
	if b.cursor < b.offset {
		b.offset = b.cursor
	}
	if b.cursor >= b.offset+rows {
		b.offset = b.cursor - rows + 1
	}
}

func (b *Browser) View() string {
	if b.state == statePlot {
		return b.viewPlot()
	}
	return b.viewList()
}

func (b *Browser) header(sb *strings.Builder, subtitle string) {
	title := b.opts.Title
	if title == "" {
		title = "TQCSIM"
	}
	sb.WriteString("\n  " + b.styles.Title.Render(title) + "\n")
	sb.WriteString("  " + b.styles.Subtle.Render(subtitle) + "\n")
	sb.WriteString("  " + b.styles.Separator(min(b.width-4, 60)) + "\n\n")
}

func (b *Browser) viewList() string {
	var sb strings.Builder
	b.header(&sb, fmt.Sprintf("%d columns, %d rows", len(b.columns), b.table.Len()))

	if bar, ok := b.thresholdBar(); ok {
		sb.WriteString("  " + bar + "\n\n")
	}

	sparkWidth := max(min(b.width-30, 40), 8)
	end := min(b.offset+b.visibleRows(), len(b.columns))
	for i := b.offset; i < end; i++ {
		name := b.columns[i]
		values, _ := b.table.Column(name)
		spark := b.styles.Sparkline(values, sparkWidth)
		if i == b.cursor {
			sb.WriteString(fmt.Sprintf("  %s %s %s\n", b.styles.Cursor.Render("▸"), b.styles.Selected.Render(fmt.Sprintf("%-22s", name)), spark))
		} else {
			sb.WriteString(fmt.Sprintf("    %s %s\n", b.styles.Item.Render(fmt.Sprintf("%-22s", name)), spark))
		}
	}

	sb.WriteString("\n  " + b.hints("j/k", "navigate", "enter", "plot", "t", "theme", "q", "quit") + "\n")
	return sb.String()
}

func (b *Browser) viewPlot() string {
	name := b.Selected()
	values, _ := b.table.Column(name)

	var sb strings.Builder
	b.header(&sb, name)

	if len(values) == 0 {
		sb.WriteString("  " + b.styles.Subtle.Render("no data") + "\n")
	} else {
		width := max(b.width-14, 20)
		height := max(b.height-14, 5)
		graph := asciigraph.Plot(report.Downsample(values, width),
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(name),
		)
		sb.WriteString(b.styles.Panel.Render(graph) + "\n\n")
		sb.WriteString("  " + b.stats(values) + "\n")
	}

	sb.WriteString("\n  " + b.hints("esc", "back", "t", "theme", "ctrl+c", "quit") + "\n")
	return sb.String()
}

func (b *Browser) stats(values []float64) string {
	mean := metrics.NewMean("mean")
	peak := metrics.NewPeak("peak")
	for _, v := range values {
		mean.Observe(v)
		peak.Observe(v)
	}
	parts := []string{
		b.styles.Subtle.Render("mean ") + b.styles.Value.Render(fmt.Sprintf("%.4g", mean.Value())),
		b.styles.Subtle.Render("peak ") + b.styles.Value.Render(fmt.Sprintf("%.4g", peak.Value())),
		b.styles.Subtle.Render("last ") + b.styles.Value.Render(fmt.Sprintf("%.4g", values[len(values)-1])),
	}
	return strings.Join(parts, "   ")
}

func (b *Browser) thresholdBar() (string, bool) {
	if b.opts.ThresholdColumn == "" {
		return "", false
	}
	values, ok := b.table.Column(b.opts.ThresholdColumn)
	if !ok {
		return "", false
	}
	ex := metrics.NewExceedance(b.opts.ThresholdColumn, b.opts.Threshold)
	for _, v := range values {
		ex.Observe(v)
	}
	label := fmt.Sprintf("%s > %g", b.opts.ThresholdColumn, b.opts.Threshold)
	return b.styles.Subtle.Render(label+" ") + b.styles.ProgressBar(ex.Value(), 20) +
		b.styles.Value.Render(fmt.Sprintf(" %.0f%%", 100*ex.Value())), true
}

func (b *Browser) hints(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, b.styles.Key.Render(pairs[i])+b.styles.Subtle.Render(" "+pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

// Run starts the browser in the alternate screen and blocks until it quits.
func Run(t *table.Table, opts Options) error {
	_, err := tea.NewProgram(NewBrowser(t, opts), tea.WithAltScreen()).Run()
	return err
}
