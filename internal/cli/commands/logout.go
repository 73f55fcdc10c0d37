package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starlab-dev/starlab/internal/cli/app"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.Session.IsAuthenticated() {
				fmt.Fprintln(a.Out, "Not signed in.")
				return nil
			}
			a.Session.Logout()
			fmt.Fprintln(a.Out, "✓ Signed out")
			return nil
		},
	}
}
