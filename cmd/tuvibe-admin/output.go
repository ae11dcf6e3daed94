package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	core "github.com/tuvibe/go-admin/components/admin"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No records found."))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMeta(w io.Writer, meta core.ListMeta) {
	if meta.Error != "" {
		fmt.Fprintln(w, errorStyle.Render(meta.Error))
	}
	var tabs []string
	for _, tab := range meta.Tabs {
		if tab.Active {
			tabs = append(tabs, titleStyle.Render("["+tab.Label+"]"))
			continue
		}
		tabs = append(tabs, mutedStyle.Render(tab.Label))
	}
	if len(tabs) > 0 {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(tabs)...))
	}
	pages := ""
	if meta.TotalPages > 0 {
		pages = fmt.Sprintf(" of %d", meta.TotalPages)
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Page %d%s, %d total", meta.Filter.ServerPage(), pages, meta.Total)))
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, p)
	}
	return out
}

// drain prints notifications published while a command ran.
func drain(w io.Writer, events <-chan core.Notification) {
	for {
		select {
		case n, ok := <-events:
			if !ok {
				return
			}
			style := successStyle
			if n.Level == core.LevelError {
				style = errorStyle
			}
			fmt.Fprintln(w, style.Render(n.Message))
		default:
			return
		}
	}
}
