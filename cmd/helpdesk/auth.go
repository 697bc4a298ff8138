package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/api/dto"
)

func newLoginCmd(a *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.message(cmd.OutOrStdout(), fmt.Sprintf("Logged in as %s (%s)", user.Name, user.Role), user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *cli) *cobra.Command {
	var req dto.UserRegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Register(cmd.Context(), req); err != nil {
				return err
			}
			return a.message(cmd.OutOrStdout(), "Registered successfully",
				dto.MessageResponse{Message: "Registered successfully"})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&req.Role, "role", "agent", "Account role")
	return cmd
}

func newLogoutCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			return a.message(cmd.OutOrStdout(), "Logged out", dto.MessageResponse{Message: "Logged out"})
		},
	}
}

func newWhoamiCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := a.session.State().User
			if user == nil {
				return errors.New("not logged in")
			}
			return a.render(cmd.OutOrStdout(), user.Profile,
				[]string{"Name", "Email", "Role"},
				[][]string{{user.Name, user.Email, user.Role}})
		},
	}
}
