package commands

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/cmd/crm/output"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a session token",
		Long: `Log in with email and password. The password is read from stdin when
--password is not given.

Examples:
  crm login --email carl@epic.co
  echo "$PW" | crm login --email carl@epic.co`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			session, err := a.issuer.Authenticate(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			if err := a.tokens.Save(session); err != nil {
				return err
			}
			if a.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), session.Identity)
			}
			output.Success(cmd.OutOrStdout(), "Logged in as %s (%s), session valid until %s",
				session.Identity.Email, session.Identity.Role, session.ExpiresAt.Local().Format(time.DateTime))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.tokens.Load()
			if err == nil {
				session.Invalidate()
			}
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			return a.render(cmd, id, func() error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", id.Email, id.Role)
				return nil
			})
		}),
	}
}
