package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	digtrack "github.com/digtrack/digtrack-go"
)

// ticketOut is the CLI projection of a ticket: the wire fields plus the
// derived expiration view, which is excluded from the SDK's own JSON.
type ticketOut struct {
	digtrack.Ticket
	Expiration digtrack.ExpirationView `json:"expiration"`
}

func project(t digtrack.Ticket) ticketOut {
	return ticketOut{Ticket: t, Expiration: t.Expiration}
}

// authedClient restores the saved session before any ticket operation so
// the credential rides along on the request.
func authedClient(ctx context.Context) (*digtrack.Client, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	c.Bootstrap(ctx)
	return c, nil
}

func init() {
	ticketsCmd := &cobra.Command{Use: "tickets", Short: "Ticket operations"}

	// list
	var status, state, pm, search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			list, err := c.ListTickets(cmd.Context(), digtrack.ListTicketsRequest{
				Status:     status,
				State:      state,
				AssignedPM: pm,
				Search:     search,
			})
			if err != nil {
				return err
			}
			out := make([]ticketOut, len(list.Tickets))
			for i, t := range list.Tickets {
				out[i] = project(t)
			}
			return printJSON(out)
		},
	}
	listCmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (active, expiring_soon, expired)")
	listCmd.Flags().StringVar(&state, "state", "", "Filter by state code (VA, MD, DC)")
	listCmd.Flags().StringVar(&pm, "pm", "", "Filter by assigned PM")
	listCmd.Flags().StringVarP(&search, "search", "q", "", "Search ticket number and job name")
	ticketsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get TICKET_ID",
		Short: "Get a ticket by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			t, err := c.GetTicket(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(project(*t))
		},
	}
	ticketsCmd.AddCommand(getCmd)

	// create
	var number, job, addr, tkState, submit, expires, assignPM, notes string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			submitDate, err := digtrack.ParseDate(submit)
			if err != nil {
				return fmt.Errorf("--submit: %w", err)
			}
			req := digtrack.CreateTicketRequest{
				TicketNumber: number,
				JobName:      job,
				Address:      addr,
				State:        tkState,
				SubmitDate:   submitDate,
				AssignedPM:   assignPM,
				Notes:        notes,
			}
			if expires != "" {
				d, err := digtrack.ParseDate(expires)
				if err != nil {
					return fmt.Errorf("--expires: %w", err)
				}
				req.ExpirationDate = &d
			}
			t, err := c.CreateTicket(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(project(*t))
		},
	}
	createCmd.Flags().StringVarP(&number, "number", "n", "", "Ticket number (required)")
	createCmd.Flags().StringVarP(&job, "job", "j", "", "Job name (required)")
	createCmd.Flags().StringVar(&addr, "address", "", "Dig site address")
	createCmd.Flags().StringVar(&tkState, "state", "", "State code (required)")
	createCmd.Flags().StringVar(&submit, "submit", "", "Submit date YYYY-MM-DD (required)")
	createCmd.Flags().StringVar(&expires, "expires", "", "Expiration date YYYY-MM-DD (derived from state when omitted)")
	createCmd.Flags().StringVar(&assignPM, "pm", "", "Assigned PM")
	createCmd.Flags().StringVar(&notes, "notes", "", "Notes")
	_ = createCmd.MarkFlagRequired("number")
	_ = createCmd.MarkFlagRequired("job")
	_ = createCmd.MarkFlagRequired("state")
	_ = createCmd.MarkFlagRequired("submit")
	ticketsCmd.AddCommand(createCmd)

	// renew
	renewCmd := &cobra.Command{
		Use:   "renew TICKET_ID NEW_DATE",
		Short: "Replace a ticket's expiration date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			d, err := digtrack.ParseDate(args[1])
			if err != nil {
				return err
			}
			t, err := c.RenewTicket(cmd.Context(), args[0], d)
			if err != nil {
				return err
			}
			return printJSON(project(*t))
		},
	}
	ticketsCmd.AddCommand(renewCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete TICKET_ID",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteTicket(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
	ticketsCmd.AddCommand(deleteCmd)

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate ticket counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := c.TicketStats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
	ticketsCmd.AddCommand(statsCmd)

	rootCmd.AddCommand(ticketsCmd)
}
