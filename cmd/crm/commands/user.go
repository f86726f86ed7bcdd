package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/cmd/crm/output"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage collaborators (gestion)",
	}
	cmd.AddCommand(a.userCreateCmd(), a.userUpdateCmd(), a.userDeleteCmd(), a.userSupportCmd())
	return cmd
}

func (a *app) userCreateCmd() *cobra.Command {
	var in services.UserInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collaborator",
		Long: `Create a collaborator account.

Examples:
  crm user create --name "Sam" --email sam@epic.co --password s3cret --role support`,
		Args: cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			u, err := a.users.Create(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.render(cmd, u, func() error {
				output.Success(cmd.OutOrStdout(), "Created user %d %s (%s)", u.ID, u.Email, u.Role)
				return nil
			})
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email, used to log in")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&in.Role, "role", "", "commercial, support or gestion")
	return cmd
}

func (a *app) userUpdateCmd() *cobra.Command {
	var name, password, role string
	cmd := &cobra.Command{
		Use:   "update EMAIL",
		Short: "Update a collaborator",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			var in services.UserUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("password") {
				in.Password = &password
			}
			if flags.Changed("role") {
				in.Role = &role
			}
			u, err := a.users.Update(cmd.Context(), id, args[0], in)
			if err != nil {
				return err
			}
			return a.render(cmd, u, func() error {
				output.Success(cmd.OutOrStdout(), "Updated user %s (%s)", u.Email, u.Role)
				return nil
			})
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&role, "role", "", "New role")
	return cmd
}

func (a *app) userDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete EMAIL",
		Short: "Delete a collaborator with no clients, contracts or events",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			if err := a.users.Delete(cmd.Context(), id, args[0]); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Deleted user %s", args[0])
			return nil
		}),
	}
}

func (a *app) userSupportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "support",
		Short: "List support collaborators",
		Args:  cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			users, err := a.users.ListSupport(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd, users, func() error {
				return output.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "EMAIL", "ROLE"}, userRows(users))
			})
		}),
	}
}

func userRows(users []models.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.FormatUint(uint64(u.ID), 10), u.Name, u.Email, string(u.Role)})
	}
	return rows
}
