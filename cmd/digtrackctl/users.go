package main

import (
	"fmt"

	"github.com/spf13/cobra"

	digtrack "github.com/digtrack/digtrack-go"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User administration"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List managed accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			users, err := c.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(users)
		},
	}
	usersCmd.AddCommand(listCmd)

	var email, name, role string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			u, err := c.CreateUser(cmd.Context(), digtrack.CreateUserRequest{
				Email:    email,
				FullName: name,
				Role:     role,
			})
			if err != nil {
				return err
			}
			return printJSON(u)
		},
	}
	createCmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Full name")
	createCmd.Flags().StringVarP(&role, "role", "r", "viewer", "Role (viewer, editor, admin)")
	_ = createCmd.MarkFlagRequired("email")
	usersCmd.AddCommand(createCmd)

	var upName, upRole string
	var deactivate, activate bool
	updateCmd := &cobra.Command{
		Use:   "update USER_ID",
		Short: "Update an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			var req digtrack.UpdateUserRequest
			if upName != "" {
				req.FullName = &upName
			}
			if upRole != "" {
				req.Role = &upRole
			}
			if deactivate && activate {
				return fmt.Errorf("--activate and --deactivate are mutually exclusive")
			}
			if deactivate || activate {
				req.IsActive = &activate
			}
			u, err := c.UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(u)
		},
	}
	updateCmd.Flags().StringVarP(&upName, "name", "n", "", "Full name")
	updateCmd.Flags().StringVarP(&upRole, "role", "r", "", "Role (viewer, editor, admin)")
	updateCmd.Flags().BoolVar(&activate, "activate", false, "Reactivate the account")
	updateCmd.Flags().BoolVar(&deactivate, "deactivate", false, "Deactivate the account")
	usersCmd.AddCommand(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
	usersCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(usersCmd)
}
