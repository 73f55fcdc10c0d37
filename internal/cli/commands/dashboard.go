package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/starlab-dev/starlab/internal/api"
	"github.com/starlab-dev/starlab/internal/cli/app"
	"github.com/starlab-dev/starlab/internal/fetch"
	"github.com/starlab-dev/starlab/internal/session"
)

// ErrNotSignedIn is returned by commands that need a session
var ErrNotSignedIn = errors.New("not signed in (run 'starlab login')")

const profileKey = "/me"

// Profile is what the dashboard shows
type Profile struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	ID    string `json:"id" yaml:"id"`
}

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd(a *app.App) *cobra.Command {
	var output string
	var watch time.Duration

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash", "me"},
		Short:   "Show the signed-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (use text, json or yaml)", output)
			}
			return runDashboard(cmd.Context(), a, output, watch)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	cmd.Flags().DurationVar(&watch, "watch", 0, "Refresh the profile at this interval until interrupted")

	return cmd
}

func runDashboard(ctx context.Context, a *app.App, output string, watch time.Duration) error {
	if !a.Session.IsAuthenticated() {
		return ErrNotSignedIn
	}

	fetcher := func(ctx context.Context) (session.User, error) {
		return api.Get[session.User](ctx, a.Client, "/api/me", api.Directive{RequireAuth: true})
	}

	var live atomic.Bool
	opts := queryOptions[session.User](a.Notifier, fetch.Notices{
		Loading: fetch.Say("Loading profile…"),
		Error:   fetch.Show(),
	})
	opts.OnSuccess = func(_ string, user session.User) {
		if !live.Load() {
			return
		}
		fresh := fetch.Result[session.User]{Data: user, HasData: true}
		if err := renderProfile(a.Out, output, profileFrom(fresh, a.Session.User())); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to render profile")
		}
	}

	q := fetch.NewQuery(a.Cache, profileKey, fetcher, opts)
	defer q.Close()

	result := q.Load(ctx)
	stored := a.Session.User()
	if result.Err != nil && !result.HasData && stored == nil {
		return reported(result.Err)
	}
	if err := renderProfile(a.Out, output, profileFrom(result, stored)); err != nil {
		return err
	}

	if watch <= 0 {
		return nil
	}

	changes, unsubscribe := a.Session.Subscribe()
	defer unsubscribe()
	// a logout before Subscribe sends no event
	if !a.Session.IsAuthenticated() {
		return ErrNotSignedIn
	}

	live.Store(true)
	stop := q.Poll(ctx, watch)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case state := <-changes:
			if state.AccessToken == "" {
				return ErrNotSignedIn
			}
		}
	}
}

// profileFrom prefers fetched fields and falls back to the stored user per
// field
func profileFrom(r fetch.Result[session.User], stored *session.User) Profile {
	var fallback session.User
	if stored != nil {
		fallback = *stored
	}
	pick := func(fetched, saved string) string {
		if r.HasData && fetched != "" {
			return fetched
		}
		return saved
	}
	return Profile{
		Name:  pick(r.Data.Name, fallback.Name),
		Email: pick(r.Data.Email, fallback.Email),
		ID:    pick(r.Data.ID, fallback.ID),
	}
}

func renderProfile(out io.Writer, format string, p Profile) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	default:
		fmt.Fprintln(out, "Profile")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Name:\t%s\n", p.Name)
		fmt.Fprintf(w, "  Email:\t%s\n", p.Email)
		fmt.Fprintf(w, "  ID:\t%s\n", p.ID)
		return w.Flush()
	}
}
