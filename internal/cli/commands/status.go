package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/starlab-dev/starlab/internal/cli/app"
)

// NewStatusCmd creates the status command
func NewStatusCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API origin and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			signedIn := "no"
			if a.Session.IsAuthenticated() {
				signedIn = "yes"
				if user := a.Session.User(); user != nil {
					signedIn = "yes, as " + describeUser(user)
				}
			}

			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "App:\t%s\n", a.Config.App.Name)
			fmt.Fprintf(w, "API:\t%s\n", a.Client.BaseURL())
			fmt.Fprintf(w, "Session:\t%s\n", a.Config.Client.SessionBackend)
			fmt.Fprintf(w, "Signed in:\t%s\n", signedIn)
			return w.Flush()
		},
	}
}
