package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/cmd/crm/output"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func (a *app) clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(a.clientCreateCmd(), a.clientListCmd(), a.clientUpdateCmd(), a.clientDeleteCmd())
	return cmd
}

func (a *app) clientCreateCmd() *cobra.Command {
	var in services.ClientInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client you are the sales contact of",
		Long: `Create a client. The logged-in commercial becomes its sales contact.

Examples:
  crm client create --name "Kevin Casey" --email kevin@startup.io --phone +678123456789 --company "Cool Startup LLC"`,
		Args: cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			c, err := a.clients.Create(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.render(cmd, c, func() error {
				output.Success(cmd.OutOrStdout(), "Created client %d %s", c.ID, c.Name)
				return nil
			})
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&in.Company, "company", "", "Company name")
	return cmd
}

func (a *app) clientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		Args:  cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			clients, err := a.clients.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd, clients, func() error {
				return output.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "EMAIL", "PHONE", "COMPANY", "SALES"}, clientRows(clients))
			})
		}),
	}
}

func (a *app) clientUpdateCmd() *cobra.Command {
	var name, email, phone, company string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update one of your clients",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			clientID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in services.ClientUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("email") {
				in.Email = &email
			}
			if flags.Changed("phone") {
				in.Phone = &phone
			}
			if flags.Changed("company") {
				in.Company = &company
			}
			c, err := a.clients.Update(cmd.Context(), id, clientID, in)
			if err != nil {
				return err
			}
			return a.render(cmd, c, func() error {
				output.Success(cmd.OutOrStdout(), "Updated client %d", c.ID)
				return nil
			})
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&company, "company", "", "New company name")
	return cmd
}

func (a *app) clientDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one of your clients that has no contracts",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			clientID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.clients.Delete(cmd.Context(), id, clientID); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Deleted client %d", clientID)
			return nil
		}),
	}
}

func clientRows(clients []models.Client) [][]string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(c.ID), 10), c.Name, c.Email, c.Phone, c.Company,
			strconv.FormatUint(uint64(c.SalesContactID), 10),
		})
	}
	return rows
}
