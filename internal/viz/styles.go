package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Value    lipgloss.Style
	Key      lipgloss.Style
	Panel    lipgloss.Style

	high, mid, low lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Subtle:   lipgloss.NewStyle().Foreground(t.Muted),
		Cursor:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Item:     lipgloss.NewStyle().Foreground(t.Muted),
		Value:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Key:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		high: lipgloss.NewStyle().Foreground(t.High),
		mid:  lipgloss.NewStyle().Foreground(t.Mid),
		low:  lipgloss.NewStyle().Foreground(t.Low),
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a one-line bar chart of at most width cells.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		c := string(sparkChars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(s.high.Render(c))
		case norm > 0.3:
			b.WriteString(s.mid.Render(c))
		default:
			b.WriteString(s.low.Render(c))
		}
	}
	return b.String()
}

// ProgressBar renders fraction in [0, 1] as a filled bar.
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = min(max(filled, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case fraction > 0.8:
		return s.high.Render(bar)
	case fraction > 0.4:
		return s.mid.Render(bar)
	}
	return s.low.Render(bar)
}

func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return s.Subtle.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
