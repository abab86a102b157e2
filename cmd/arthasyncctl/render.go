package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"arthasync/internal/core"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// table writes aligned columns with a styled header and a dash rule.
type table struct {
	w      *tabwriter.Writer
	widths []int
}

func newTable(out io.Writer, headers ...string) *table {
	t := &table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	rendered := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		rendered[i] = headerStyle.Render(h)
		rules[i] = strings.Repeat("-", max(len(h), 4))
	}
	fmt.Fprintln(t.w, strings.Join(rendered, "\t"))
	fmt.Fprintln(t.w, strings.Join(rules, "\t"))
	return t
}

func (t *table) Row(cols ...string) {
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

func (t *table) Flush() error {
	return t.w.Flush()
}

// progressBar draws percent (clamped to 0..100) as a fixed-width bar.
func progressBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func budgetStyle(state core.BudgetState) lipgloss.Style {
	if state == core.OverBudget {
		return errorStyle
	}
	return successStyle
}

func orNone(s string) string {
	if s == "" {
		return mutedStyle.Render("-")
	}
	return s
}
