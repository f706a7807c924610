package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/focusflow/internal/ui/theme"
)

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// render prints v as JSON under --json, else calls text.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func heading(w io.Writer, title string) {
	lipgloss.Fprintln(w, theme.Title.Render(title))
}

func field(w io.Writer, label string, value any) {
	lipgloss.Fprintln(w, theme.Label.Render(label)+fmt.Sprint(value))
}

func hint(w io.Writer, format string, args ...any) {
	lipgloss.Fprintln(w, theme.Hint.Render(fmt.Sprintf(format, args...)))
}

func bullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	lipgloss.Fprintln(w)
	heading(w, title)
	for _, it := range items {
		lipgloss.Fprintln(w, "  • "+it)
	}
}

func newTable(headers ...string) *table.Table {
	cell := lipgloss.NewStyle().Padding(0, 1)
	head := theme.Title.Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		}).
		Headers(headers...)
}

func printTable(w io.Writer, t *table.Table) {
	lipgloss.Fprintln(w, t.Render())
}

func pct(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

func hourList(hours []int) string {
	if len(hours) == 0 {
		return "-"
	}
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = hourLabel(h)
	}
	return strings.Join(parts, ", ")
}

func clockTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04")
}
