package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
)

const (
	barGlyph            = "█"
	minBarWidth         = 10
	terminalWidthBackup = 80
)

// Bar is one labelled value of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
}

// Bars draws a horizontal bar chart scaled to max. A max of 0 scales to the
// largest value. width is the total line width.
func Bars(w io.Writer, title string, bars []Bar, max float64, width int) error {
	if len(bars) == 0 {
		return nil
	}
	if max <= 0 {
		for _, b := range bars {
			max = math.Max(max, b.Value)
		}
	}

	labelWidth := 0
	values := make([]string, len(bars))
	valueWidth := 0
	for i, b := range bars {
		labelWidth = maxInt(labelWidth, runewidth.StringWidth(b.Label))
		values[i] = fmt.Sprintf("%.2f", b.Value)
		valueWidth = maxInt(valueWidth, len(values[i]))
	}
	barWidth := width - labelWidth - valueWidth - 4
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for i, b := range bars {
		n := 0
		if max > 0 {
			n = int(math.Round(math.Min(math.Max(b.Value, 0), max) / max * float64(barWidth)))
		}
		line := fmt.Sprintf("%s │%s %*s",
			padCell(b.Label, labelWidth, false),
			padCell(strings.Repeat(barGlyph, n), barWidth, false),
			valueWidth, values[i])
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

var indicatorStyles = map[models.Indicator]lipgloss.Style{
	models.IndicatorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
	models.IndicatorYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14")).Bold(true),
	models.IndicatorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true),
}

// Difficulty formats the paper difficulty with its traffic-light marker.
// Colour is dropped automatically when stdout is not a terminal.
func Difficulty(d models.PaperDifficulty) string {
	style, ok := indicatorStyles[d.Indicator]
	if !ok {
		return d.Label
	}
	return style.Render("●") + " " + d.Label
}
