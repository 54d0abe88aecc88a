// Package report renders mining results for the terminal and as JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// maxCellWidth truncates long item identifiers in table cells.
const maxCellWidth = 40

var (
	headerStyle  = color.Style{color.FgCyan, color.OpBold}
	sectionStyle = color.Style{color.FgYellow, color.OpBold}
	goodStyle    = color.Style{color.FgGreen}
	badStyle     = color.Style{color.FgRed}
	dimStyle     = color.Style{color.FgGray}
)

// Printer writes human-readable reports. Colors are only emitted when
// enabled and the terminal supports them.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, useColor bool) *Printer {
	return &Printer{w: w, color: useColor}
}

func (p *Printer) paint(style color.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Sprint(s)
}

func (p *Printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) println(args ...interface{}) {
	fmt.Fprintln(p.w, args...)
}

// Header prints a framed title.
func (p *Printer) Header(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	rule := strings.Repeat("=", runewidth.StringWidth(title)+4)
	p.println(p.paint(headerStyle, rule))
	p.printf("  %s\n", p.paint(headerStyle, title))
	p.println(p.paint(headerStyle, rule))
}

// Section prints a section title with an underline.
func (p *Printer) Section(title string) {
	p.println(p.paint(sectionStyle, "["+title+"]"))
	p.println(strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// KeyValues prints aligned "key: value" lines.
func (p *Printer) KeyValues(pairs [][2]string) {
	width := 0
	for _, kv := range pairs {
		width = max(width, runewidth.StringWidth(kv[0]))
	}
	for _, kv := range pairs {
		p.printf("  %s  %s\n", runewidth.FillRight(kv[0]+":", width+1), kv[1])
	}
}

// Table prints rows under headers with every column padded to its widest
// cell. Cells wider than maxCellWidth are truncated. A cell's paint func, if
// any, is applied after padding so escape codes do not skew alignment.
func (p *Printer) Table(headers []string, rows [][]string, paint func(row, col int, cell string) string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(runewidth.FillRight(h, widths[i]))
	}
	p.printf("  %s\n", p.paint(dimStyle, strings.TrimRight(sb.String(), " ")))

	for r, row := range rows {
		sb.Reset()
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cell = runewidth.Truncate(cell, maxCellWidth, "…")
			padded := runewidth.FillRight(cell, widths[i])
			if paint != nil && cell != "" {
				padded = strings.Replace(padded, cell, paint(r, i, cell), 1)
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(padded)
		}
		p.printf("  %s\n", strings.TrimRight(sb.String(), " "))
	}
}

// SideBySide prints two blocks of lines next to each other, padding the left
// block to its widest line plus gap.
func (p *Printer) SideBySide(left, right []string, gap int) {
	leftWidth := 0
	for _, line := range left {
		leftWidth = max(leftWidth, runewidth.StringWidth(line))
	}

	for i := 0; i < max(len(left), len(right)); i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		if r == "" {
			p.println(strings.TrimRight(l, " "))
			continue
		}
		p.printf("%s%s\n", runewidth.FillRight(l, leftWidth+gap), r)
	}
}
