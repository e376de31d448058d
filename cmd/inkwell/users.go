package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/access"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all accounts (admin only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := ensureAuthenticated(cmd.Context(), a); err != nil {
			return err
		}
		if !a.gate.CanAccess(access.AdminOnly).Allowed() {
			return errors.New("this command requires an admin account")
		}

		users, err := a.blog.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range users {
			role := ""
			if u.Admin {
				role = "  (admin)"
			}
			fmt.Printf("%s  %s%s\n", u.ID, u.Email, role)
		}
		return nil
	},
}
