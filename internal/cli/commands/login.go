package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starlab-dev/starlab/internal/api"
	"github.com/starlab-dev/starlab/internal/cli/app"
	"github.com/starlab-dev/starlab/internal/session"
)

const demoToken = "demo-token"

// DemoUser is stored by a demo login
var DemoUser = session.User{ID: "u_1", Email: "demo@starlab.dev", Name: "Star Demo"}

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// NewLoginCmd creates the login command
func NewLoginCmd(a *app.App) *cobra.Command {
	var email, name string
	var demo bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in to the API.

With --email the server issues a token for that address. Without it (or with
--demo) the demo account is stored locally; interactive terminals are asked
for an email first, and a blank answer picks the demo account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, a, email, name, demo)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to sign in with")
	cmd.Flags().StringVar(&name, "name", "", "Display name sent with --email")
	cmd.Flags().BoolVar(&demo, "demo", false, "Continue as the demo user")

	return cmd
}

func runLogin(cmd *cobra.Command, a *app.App, email, name string, demo bool) error {
	if !demo && email == "" && a.Interactive {
		answer, err := a.Prompt("Email (blank for demo)")
		if err != nil {
			return err
		}
		email = answer
	}

	if demo || email == "" {
		a.Session.SetToken(demoToken)
		a.Session.SetUser(&DemoUser)
		fmt.Fprintf(a.Out, "✓ Signed in as %s (%s)\n", DemoUser.Name, DemoUser.Email)
		return nil
	}

	resp, err := api.Post[loginResponse](cmd.Context(), a.Client, "/api/login",
		loginRequest{Email: strings.TrimSpace(email), Name: name},
		api.Directive{Auth: api.AuthOmit})
	if err != nil {
		return reported(fmt.Errorf("login failed: %w", err))
	}
	if resp.Token == "" || resp.User == nil {
		return fmt.Errorf("login failed: server returned no session")
	}

	a.Session.SetToken(resp.Token)
	a.Session.SetUser(resp.User)

	fmt.Fprintf(a.Out, "✓ Signed in as %s\n", describeUser(resp.User))
	return nil
}

func describeUser(u *session.User) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s (%s)", u.Name, u.Email)
	case u.Email != "":
		return u.Email
	case u.Name != "":
		return u.Name
	default:
		return u.ID
	}
}
