package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

func newFilterCmd(a *cli) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show or change the saved filters",
		Long: `Without flags prints the saved filters. Use "all" to drop a constraint,
or --reset to drop every constraint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := a.session.State().Filters
			if reset {
				f = query.DefaultFilters()
			}
			changed := reset
			flags := cmd.Flags()
			for name, dst := range map[string]*string{
				"agent":    &f.Agent,
				"status":   &f.Status,
				"priority": &f.Priority,
				"search":   &f.Search,
			} {
				if flags.Changed(name) {
					*dst, _ = flags.GetString(name)
					changed = true
				}
			}
			if changed {
				if err := a.session.SetFilters(cmd.Context(), f); err != nil {
					return err
				}
			}
			return a.render(cmd.OutOrStdout(), f,
				[]string{"Agent", "Status", "Priority", "Search"},
				[][]string{{f.Agent, f.Status, f.Priority, f.Search}})
		},
	}
	cmd.Flags().String("agent", "", "Agent name or all")
	cmd.Flags().String("status", "", "Open|In Progress|Closed or all")
	cmd.Flags().String("priority", "", "Low|Medium|High or all")
	cmd.Flags().String("search", "", "Substring of title or description")
	cmd.Flags().BoolVar(&reset, "reset", false, "Clear every filter")
	return cmd
}

func newSortCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort [key] [asc|desc]",
		Short: "Show or change the saved ticket order",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.session.State().Sort
			if len(args) > 0 {
				s.Key = args[0]
				if len(args) > 1 {
					s.Order = args[1]
				}
				if !query.ValidKey(s.Key) {
					return fmt.Errorf("unknown sort key %q (want one of %s)", s.Key, strings.Join(validSortKeys, ", "))
				}
				if err := a.session.SetSort(cmd.Context(), s); err != nil {
					return err
				}
				s = a.session.State().Sort
			}
			return a.render(cmd.OutOrStdout(), s, []string{"Key", "Order"}, [][]string{{s.Key, s.Order}})
		},
	}
	return cmd
}

func newDashboardCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Count visible tickets by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats := a.session.Stats()
			row := []string{strconv.Itoa(stats.Total)}
			headers := []string{"Total"}
			for _, s := range domain.TicketStatuses {
				headers = append(headers, string(s))
				row = append(row, strconv.Itoa(stats.ByStatus[s]))
			}
			return a.render(cmd.OutOrStdout(), stats, headers, [][]string{row})
		},
	}
}

func newReportCmd(a *cli) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Per-agent breakdown of every cached ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if refresh {
				if err := a.session.RefreshTickets(cmd.Context()); err != nil {
					return err
				}
			}
			tickets := a.session.State().Tickets
			stats := query.Summarize(tickets)

			headers := []string{"Agent", "Total"}
			for _, s := range domain.TicketStatuses {
				headers = append(headers, string(s))
			}
			for _, p := range domain.TicketPriorities {
				headers = append(headers, string(p))
			}

			byAgent := map[string][]domain.Ticket{}
			for _, t := range tickets {
				byAgent[t.Agent] = append(byAgent[t.Agent], t)
			}
			var rows [][]string
			for _, agent := range stats.Agents() {
				agentStats := query.Summarize(byAgent[agent])
				name := agent
				if name == "" {
					name = "(unassigned)"
				}
				row := []string{name, strconv.Itoa(agentStats.Total)}
				for _, s := range domain.TicketStatuses {
					row = append(row, strconv.Itoa(agentStats.ByStatus[s]))
				}
				for _, p := range domain.TicketPriorities {
					row = append(row, strconv.Itoa(agentStats.ByPriority[p]))
				}
				rows = append(rows, row)
			}
			return a.render(cmd.OutOrStdout(), stats, headers, rows)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh tickets from the server first")
	return cmd
}

func newActivityCmd(a *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := a.session.State().Activity
			if limit > 0 && len(log) > limit {
				log = log[:limit]
			}
			rows := make([][]string, 0, len(log))
			for _, e := range log {
				rows = append(rows, []string{e.Time.Local().Format(time.DateTime), e.Msg})
			}
			return a.render(cmd.OutOrStdout(), log, []string{"Time", "Activity"}, rows)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Entries to show (0 for all)")
	return cmd
}
