package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// render writes v as JSON or YAML, or as a table built from headers and rows.
func (a *cli) render(w io.Writer, v any, headers []string, rows [][]string) error {
	switch a.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("(none)"))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// message prints a one-line confirmation in table mode and v otherwise.
func (a *cli) message(w io.Writer, msg string, v any) error {
	if a.format == formatTable {
		_, err := fmt.Fprintln(w, okStyle.Render(msg))
		return err
	}
	return a.render(w, v, nil, nil)
}

func ticketRows(tickets []domain.Ticket) [][]string {
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		agent := t.Agent
		if agent == "" {
			agent = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			string(t.Priority),
			string(t.Status),
			agent,
			t.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

var ticketHeaders = []string{"ID", "Title", "Priority", "Status", "Agent", "Created"}
