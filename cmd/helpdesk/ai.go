package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
)

func newAICmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ai <prompt...>",
		Short: "Ask the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := a.session.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.format == formatTable {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
				return err
			}
			return a.render(cmd.OutOrStdout(), dto.AIResponse{Response: answer}, nil, nil)
		},
	}
}
