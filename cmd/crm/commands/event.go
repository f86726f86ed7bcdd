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

func (a *app) eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
	}
	cmd.AddCommand(
		a.eventCreateCmd(),
		a.eventListCmd("list", "List all events", (*services.EventService).List),
		a.eventListCmd("unassigned", "List events without a support contact (gestion)", (*services.EventService).ListUnassigned),
		a.eventListCmd("mine", "List events assigned to you (support)", (*services.EventService).ListMine),
		a.eventAssignCmd(),
		a.eventUpdateCmd(),
		a.eventDeleteCmd(),
	)
	return cmd
}

func (a *app) eventCreateCmd() *cobra.Command {
	var in services.EventInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event for a signed contract of yours",
		Long: `Create an event. Dates use the "YYYY-MM-DD HH:MM" format.

Examples:
  crm event create --contract-id 2 --name "Launch party" \
    --start "2026-06-04 13:00" --end "2026-06-05 02:00" --location Paris --attendees 75`,
		Args: cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			e, err := a.events.Create(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.render(cmd, e, func() error {
				output.Success(cmd.OutOrStdout(), "Created event %d for contract %d", e.ID, e.ContractID)
				return nil
			})
		}),
	}
	cmd.Flags().UintVar(&in.ContractID, "contract-id", 0, "Signed contract id")
	cmd.Flags().StringVar(&in.Name, "name", "", "Event name")
	cmd.Flags().StringVar(&in.Start, "start", "", "Start date (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&in.End, "end", "", "End date (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&in.Location, "location", "", "Location")
	cmd.Flags().IntVar(&in.Attendees, "attendees", 0, "Expected attendees")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	return cmd
}

type eventLister func(*services.EventService, context.Context, auth.Identity) ([]models.Event, error)

func (a *app) eventListCmd(use, short string, list eventLister) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			events, err := list(a.events, cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd, events, func() error {
				return output.Table(cmd.OutOrStdout(),
					[]string{"ID", "CONTRACT", "NAME", "START", "END", "LOCATION", "ATTENDEES", "SUPPORT"},
					eventRows(events))
			})
		}),
	}
}

func (a *app) eventAssignCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "assign ID",
		Short: "Assign a support collaborator to an event (gestion)",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.events.AssignSupport(cmd.Context(), id, eventID, email)
			if err != nil {
				return err
			}
			return a.render(cmd, e, func() error {
				output.Success(cmd.OutOrStdout(), "Assigned %s to event %d", email, e.ID)
				return nil
			})
		}),
	}
	cmd.Flags().StringVar(&email, "support-email", "", "Email of the support collaborator")
	_ = cmd.MarkFlagRequired("support-email")
	return cmd
}

func (a *app) eventUpdateCmd() *cobra.Command {
	var start, end, location, notes string
	var attendees int
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an event assigned to you (support)",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in services.EventUpdate
			flags := cmd.Flags()
			if flags.Changed("start") {
				in.Start = &start
			}
			if flags.Changed("end") {
				in.End = &end
			}
			if flags.Changed("location") {
				in.Location = &location
			}
			if flags.Changed("attendees") {
				in.Attendees = &attendees
			}
			if flags.Changed("notes") {
				in.Notes = &notes
			}
			e, err := a.events.UpdateAssigned(cmd.Context(), id, eventID, in)
			if err != nil {
				return err
			}
			return a.render(cmd, e, func() error {
				output.Success(cmd.OutOrStdout(), "Updated event %d", e.ID)
				return nil
			})
		}),
	}
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end date (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&location, "location", "", "New location")
	cmd.Flags().IntVar(&attendees, "attendees", 0, "New attendee count")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")
	return cmd
}

func (a *app) eventDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event of one of your contracts",
		Args:  cobra.ExactArgs(1),
		RunE: a.withIdentity(func(cmd *cobra.Command, args []string, id auth.Identity) error {
			eventID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.events.Delete(cmd.Context(), id, eventID); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Deleted event %d", eventID)
			return nil
		}),
	}
}

func eventRows(events []models.Event) [][]string {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		support := "-"
		if e.SupportContactID != nil {
			support = strconv.FormatUint(uint64(*e.SupportContactID), 10)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			strconv.FormatUint(uint64(e.ContractID), 10),
			e.Name,
			e.Start.Format(services.DateLayout),
			e.End.Format(services.DateLayout),
			e.Location,
			strconv.Itoa(e.Attendees),
			support,
		})
	}
	return rows
}
