// Package render turns an exec.Result (or a failure) into the text the REPL
// prints, following the ResultFormatter split of the engine this module
// descends from: Result formats every successful statement, using the
// header/separator/row table spec §4.8 describes, and Error formats a
// failure.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"minidb/pkg/dberr"
	"minidb/pkg/exec"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7C3AED")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
)

// Result renders a successful statement's Result: a header row, a
// separator line of "-" segments, each projected row, then the status
// message (spec §4.8). A Result with no Columns (a pure DDL result) skips
// straight to the message.
func Result(r *exec.Result) string {
	var b strings.Builder

	if len(r.Columns) > 0 {
		widths := columnWidths(r)

		header := make([]string, len(r.Columns))
		sep := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			header[i] = pad(col, widths[i])
			sep[i] = strings.Repeat("-", widths[i])
		}
		b.WriteString(headerStyle.Render(strings.Join(header, " | ")))
		b.WriteByte('\n')
		b.WriteString(strings.Join(sep, "-+-"))
		b.WriteByte('\n')

		for _, row := range r.Rows {
			cells := make([]string, len(r.Columns))
			for i, col := range r.Columns {
				cells[i] = pad(row[col].String(), widths[i])
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteByte('\n')
		}
	}

	b.WriteString(successStyle.Render(r.Message))
	return b.String()
}

// Error renders a failed statement per spec §7: "Error: <class>: <detail>".
func Error(err error) string {
	msg := err.Error()
	if de, ok := err.(*dberr.DBError); ok {
		msg = de.Error()
	}
	return errorStyle.Render(fmt.Sprintf("Error: %s", msg))
}

func columnWidths(r *exec.Result) []int {
	widths := make([]int, len(r.Columns))
	for i, col := range r.Columns {
		widths[i] = len(col)
	}
	for _, row := range r.Rows {
		for i, col := range r.Columns {
			if n := len(row[col].String()); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
