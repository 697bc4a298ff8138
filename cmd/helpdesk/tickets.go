package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/client"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/query"
)

func newTicketsCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"t"},
		Short:   "List and change tickets",
	}
	cmd.AddCommand(
		newTicketsListCmd(a),
		newTicketsCreateCmd(a),
		newTicketsUpdateCmd(a),
		newTicketsDeleteCmd(a),
	)
	return cmd
}

func newTicketsListCmd(a *cli) *cobra.Command {
	var (
		offline bool
		sortKey string
		order   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the visible tickets",
		Long: `Refreshes the cache from the server (unless --offline) and prints the
tickets that pass the saved filters, in the saved order. --sort and
--order change the saved order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if sortKey != "" || order != "" {
				s := a.session.State().Sort
				if sortKey != "" {
					s.Key = sortKey
				}
				if order != "" {
					s.Order = order
				}
				if err := a.session.SetSort(ctx, s); err != nil {
					return err
				}
			}
			if !offline {
				if err := a.session.RefreshTickets(ctx); err != nil {
					return err
				}
			}
			visible := a.session.Visible()
			return a.render(cmd.OutOrStdout(), visible, ticketHeaders, ticketRows(visible))
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the cached tickets only")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort key: created|id|title|description|priority|status|agent")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc|desc")
	return cmd
}

func newTicketsCreateCmd(a *cli) *cobra.Command {
	var in client.TicketInput
	var priority, status string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			in.Priority = domain.TicketPriority(priority)
			in.Status = domain.TicketStatus(status)
			ticket, err := a.session.CreateTicket(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), ticket, ticketHeaders, ticketRows([]domain.Ticket{*ticket}))
		},
	}
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Longer description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Low|Medium|High (server default Medium)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Open|In Progress|Closed (server default Open)")
	cmd.Flags().StringVarP(&in.Agent, "agent", "a", "", "Assigned agent")
	return cmd
}

func newTicketsUpdateCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change ticket fields",
		Long: `Only the flags you pass are sent. Passing an empty value, e.g.
--agent "", keeps the stored value unless the server runs with
TICKET_MERGE_POLICY=presence, in which case the field is cleared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var req dto.UpdateTicketRequest
			flags := cmd.Flags()
			for name, dst := range map[string]**string{
				"title":       &req.Title,
				"description": &req.Description,
				"agent":       &req.Agent,
			} {
				if flags.Changed(name) {
					v, _ := flags.GetString(name)
					*dst = &v
				}
			}
			if flags.Changed("priority") {
				v, _ := flags.GetString("priority")
				p := domain.TicketPriority(v)
				req.Priority = &p
			}
			if flags.Changed("status") {
				v, _ := flags.GetString("status")
				s := domain.TicketStatus(v)
				req.Status = &s
			}

			ticket, err := a.session.UpdateTicket(cmd.Context(), id, req.Patch())
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), ticket, ticketHeaders, ticketRows([]domain.Ticket{*ticket}))
		},
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	cmd.Flags().StringP("priority", "p", "", "Low|Medium|High")
	cmd.Flags().StringP("status", "s", "", "Open|In Progress|Closed")
	cmd.Flags().StringP("agent", "a", "", "Assigned agent")
	return cmd
}

func newTicketsDeleteCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a ticket",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.session.DeleteTicket(cmd.Context(), id); err != nil {
				return err
			}
			return a.message(cmd.OutOrStdout(), fmt.Sprintf("Ticket %d deleted", id),
				dto.DeleteTicketResponse{Message: "Ticket deleted", ID: id})
		},
	}
}

func newAgentsCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "Refresh and list agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.RefreshAgents(cmd.Context()); err != nil {
				return err
			}
			agents := a.session.State().Agents
			rows := make([][]string, 0, len(agents))
			for _, ag := range agents {
				rows = append(rows, []string{strconv.FormatInt(ag.ID, 10), ag.Name, ag.Email})
			}
			return a.render(cmd.OutOrStdout(), agents, []string{"ID", "Name", "Email"}, rows)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket id %q", s)
	}
	return id, nil
}

// validSortKeys is shown in errors.
var validSortKeys = []string{
	query.KeyCreated, query.KeyID, query.KeyTitle, query.KeyDescription,
	query.KeyPriority, query.KeyStatus, query.KeyAgent,
}
