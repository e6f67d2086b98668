package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Request a magic login link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.RequestMagicLink(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Magic link sent to %s. Run 'digtrackctl verify TOKEN' with the token from the email.\n", args[0])
			return nil
		},
	}
	rootCmd.AddCommand(loginCmd)

	verifyCmd := &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Exchange a magic-link token for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			id, err := c.VerifyMagicLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(id)
		},
	}
	rootCmd.AddCommand(verifyCmd)

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			id := c.Bootstrap(cmd.Context())
			if id == nil {
				return fmt.Errorf("not logged in")
			}
			return printJSON(id)
		},
	}
	rootCmd.AddCommand(whoamiCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
	rootCmd.AddCommand(logoutCmd)
}
