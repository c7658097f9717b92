package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dtroode/storefront/internal/model"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your client profile",
	}
	cmd.AddCommand(newProfileShowCmd(app), newProfileUpdateCmd(app))
	return cmd
}

func printClient(cmd *cobra.Command, c *model.Client) {
	out := cmd.OutOrStdout()
	printTitle(out, c.Name)
	fmt.Fprintf(out, "Email: %s\n", c.Email)
	if c.Address != "" {
		fmt.Fprintf(out, "Address: %s\n", c.Address)
	}
	if c.Photo != "" {
		fmt.Fprintf(out, "Photo: %s\n", c.Photo)
	}
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your client profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.Profile.Get(cmd.Context())
			if err != nil {
				return err
			}
			printClient(cmd, c)
			return nil
		},
	}
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var (
		in    model.ClientInput
		photo string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your client profile; unset flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := app.Profile.Get(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("name") {
				in.Name = current.Name
			}
			if !flags.Changed("email") {
				in.Email = current.Email
			}
			if !flags.Changed("address") {
				in.Address = current.Address
			}

			if photo != "" {
				f, err := os.Open(photo)
				if err != nil {
					return fmt.Errorf("failed to open photo: %w", err)
				}
				defer f.Close()
				in.Photo = &model.Upload{Filename: filepath.Base(photo), Content: f}
			}

			updated, err := app.Profile.Update(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			printClient(cmd, updated)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "name")
	f.StringVar(&in.Email, "email", "", "email")
	f.StringVar(&in.Address, "address", "", "address")
	f.StringVar(&photo, "photo", "", "path to a new profile photo")

	return cmd
}
