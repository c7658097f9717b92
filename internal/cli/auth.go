package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dtroode/storefront/internal/model"
)

// readPassword returns flagValue or, when empty, the next line of stdin.
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}

func newLoginCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to the storefront",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			if err := app.Session.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}

			snap := app.Session.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", snap.Identity.User.Username)
			if snap.Degraded {
				fmt.Fprintln(cmd.OutOrStdout(), "Profile could not be loaded; some features may be unavailable.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Log out",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			snap := app.Session.Snapshot()
			if !snap.IsAuthenticated() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			u := snap.Identity.User
			fmt.Fprintf(out, "User: %s\n", u.Username)
			if u.Email != "" {
				fmt.Fprintf(out, "Email: %s\n", u.Email)
			}
			if c := snap.Identity.Client; c != nil {
				fmt.Fprintf(out, "Client: %s (#%d)\n", c.Name, c.ID)
			} else {
				fmt.Fprintln(out, "Client: not linked")
			}
			if snap.Degraded {
				fmt.Fprintln(out, "Profile: unavailable, showing stored credentials only")
			}
			if claims, ok := app.Session.AccessClaims(cmd.Context()); ok && !claims.ExpiresAt.IsZero() {
				verb := "expires"
				if claims.Expired(time.Now()) {
					verb = "expired"
				}
				fmt.Fprintf(out, "Token: %s %s\n", verb, humanize.Time(claims.ExpiresAt))
			}
			return nil
		},
	}
}

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and maintain the session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed.")
			return nil
		},
	})
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var r model.Registration

	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account and a client profile",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Account.Register(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created. Log in with: storefront login %s\n", r.Username, r.Username)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&r.Username, "username", "", "username")
	f.StringVar(&r.Email, "email", "", "email")
	f.StringVar(&r.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&r.Password2, "password2", "", "password confirmation")
	f.StringVar(&r.FirstName, "first-name", "", "first name")
	f.StringVar(&r.LastName, "last-name", "", "last name")
	f.StringVar(&r.Address, "address", "", "shipping address")

	return cmd
}

func newLinkClientCmd(app *App) *cobra.Command {
	var r model.LinkRequest

	cmd := &cobra.Command{
		Use:         "link-client",
		Short:       "Create an account for an existing client profile",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Account.LinkClient(cmd.Context(), r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s linked to client %s.\n", r.Username, r.Email)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&r.Email, "email", "", "email of the existing client")
	f.StringVar(&r.Username, "username", "", "username")
	f.StringVar(&r.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&r.Password2, "password2", "", "password confirmation")

	return cmd
}
