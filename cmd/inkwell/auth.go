package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/howeyc/gopass"
	"github.com/spf13/cobra"
)

func prompt(label string) (string, error) {
	fmt.Print(label + ": ")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text()), scanner.Err()
}

func promptPassword(label string) (string, error) {
	fmt.Print(label + ": ")
	passBytes, err := gopass.GetPasswd()
	return string(passBytes), err
}

func promptCredentials() (email, password string, err error) {
	email, err = prompt("Email")
	if err != nil {
		return "", "", err
	}
	password, err = promptPassword("Password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// ensureAuthenticated restores the persisted session, falling back to an
// interactive login when there is none or it has gone stale.
func ensureAuthenticated(ctx context.Context, a *app) error {
	if err := restoreSession(ctx, a); err != nil {
		return err
	}
	if a.sessions.Snapshot().State.IsAuthenticated() {
		return nil
	}

	email, password, err := promptCredentials()
	if err != nil {
		return err
	}
	return a.sessions.Login(ctx, email, password)
}

// restoreSession attempts restoration and reports expiry once. A restore
// failure other than a rejected credential aborts the command; a rejected
// credential just means the user has to sign in again.
func restoreSession(ctx context.Context, a *app) error {
	err := a.sessions.Restore(ctx)
	if a.sessions.ConsumeExpired() {
		fmt.Fprintln(os.Stderr, "Your session has expired. You will need to sign in again.")
		return nil
	}
	return err
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}
		if err := a.sessions.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		snap := a.sessions.Snapshot()
		fmt.Printf("Signed in as %s\n", snap.Identity.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: "Create an account and sign in. Registration always chains into a " +
		"full login; if the account is created but the login fails, the " +
		"login failure is reported and no session is kept.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		email, password, err := promptCredentials()
		if err != nil {
			return err
		}
		if err := a.sessions.Register(cmd.Context(), email, password); err != nil {
			return err
		}
		snap := a.sessions.Snapshot()
		fmt.Printf("Account created. Signed in as %s\n", snap.Identity.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the currently-authenticated user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := restoreSession(cmd.Context(), a); err != nil {
			return err
		}
		snap := a.sessions.Snapshot()
		if snap.Identity == nil {
			return errors.New("not signed in")
		}
		fmt.Printf("ID:    %s\n", snap.Identity.ID)
		fmt.Printf("Email: %s\n", snap.Identity.Email)
		if snap.Identity.Admin {
			fmt.Println("Role:  admin")
		}
		return nil
	},
}
