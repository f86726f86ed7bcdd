package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/cmd/crm/output"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/services"
)

func (a *app) contractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Manage contracts",
	}
	cmd.AddCommand(
		a.contractCreateCmd(),
		a.contractListCmd("list", "List all contracts", (*services.ContractService).List),
		a.contractListCmd("unsigned", "List contracts not signed yet", (*services.ContractService).ListUnsigned),
		a.contractListCmd("signed", "List signed contracts", (*services.ContractService).ListSigned),
		a.contractUpdateCmd(),
		a.contractDeleteCmd(),
	)
	return cmd
}

func (a *app) contractCreateCmd() *cobra.Command {
	var in services.ContractInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract for a client",
		Long: `Create a contract. Amounts must not be negative and the remaining
amount cannot exceed the total.

Examples:
  crm contract create --client-id 1 --total 1000 --remaining 1000
  crm contract create --client-id 1 --total 500 --remaining 0 --signed`,
		Args: cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			c, err := a.contracts.Create(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.render(cmd, c, func() error {
				output.Success(cmd.OutOrStdout(), "Created contract %d for client %d", c.ID, c.ClientID)
				return nil
			})
		}),
	}
	cmd.Flags().UintVar(&in.ClientID, "client-id", 0, "Client id")
	cmd.Flags().Float64Var(&in.AmountTotal, "total", 0, "Total amount")
	cmd.Flags().Float64Var(&in.AmountRemaining, "remaining", 0, "Amount still due")
	cmd.Flags().BoolVar(&in.Signed, "signed", false, "Contract is already signed")
	return cmd
}

// contractLister is a listing method of ContractService, taken as a method
// expression since the service only exists once setup has run.
type contractLister func(*services.ContractService, context.Context, auth.Identity) ([]models.Contract, error)

func (a *app) contractListCmd(use, short string, list contractLister) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			contracts, err := list(a.contracts, cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd, contracts, func() error {
				return output.Table(cmd.OutOrStdout(), []string{"ID", "CLIENT", "TOTAL", "REMAINING", "SIGNED", "SALES"}, contractRows(contracts))
			})
		}),
	}
}

func (a *app) contractUpdateCmd() *cobra.Command {
	var total, remaining float64
	var signed bool
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update amounts or signature of a contract",
		Long: `Update a contract. A commercial may only update contracts they are the
sales contact of; gestion may update any contract.

Examples:
  crm contract update 3 --remaining 250
  crm contract update 3 --signed`,
		Args: cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			contractID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in services.ContractUpdate
			flags := cmd.Flags()
			if flags.Changed("total") {
				in.AmountTotal = &total
			}
			if flags.Changed("remaining") {
				in.AmountRemaining = &remaining
			}
			if flags.Changed("signed") {
				in.Signed = &signed
			}
			c, err := a.contracts.Update(cmd.Context(), id, contractID, in)
			if err != nil {
				return err
			}
			return a.render(cmd, c, func() error {
				output.Success(cmd.OutOrStdout(), "Updated contract %d", c.ID)
				return nil
			})
		}),
	}
	cmd.Flags().Float64Var(&total, "total", 0, "New total amount")
	cmd.Flags().Float64Var(&remaining, "remaining", 0, "New amount still due")
	cmd.Flags().BoolVar(&signed, "signed", false, "Mark as signed (--signed=false to unsign)")
	return cmd
}

func (a *app) contractDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contract that has no events",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			contractID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.contracts.Delete(cmd.Context(), id, contractID); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Deleted contract %d", contractID)
			return nil
		}),
	}
}

func contractRows(contracts []models.Contract) [][]string {
	rows := make([][]string, 0, len(contracts))
	for _, c := range contracts {
		client := strconv.FormatUint(uint64(c.ClientID), 10)
		if c.Client != nil {
			client = c.Client.Name
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(c.ID), 10), client,
			strconv.FormatFloat(c.AmountTotal, 'f', 2, 64),
			strconv.FormatFloat(c.AmountRemaining, 'f', 2, 64),
			strconv.FormatBool(c.Signed),
			strconv.FormatUint(uint64(c.SalesContactID), 10),
		})
	}
	return rows
}
