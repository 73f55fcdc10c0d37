package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starlab-dev/starlab/internal/api"
	"github.com/starlab-dev/starlab/internal/cli/app"
	"github.com/starlab-dev/starlab/internal/fetch"
)

type helloResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// NewHelloCmd creates the hello command
func NewHelloCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "Call /api/hello",
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := func(ctx context.Context) (helloResponse, error) {
				return api.Get[helloResponse](ctx, a.Client, "/api/hello", api.Directive{Auth: api.AuthOmit})
			}

			q, result := fetch.Use(cmd.Context(), a.Cache, "/api/hello", fetcher, queryOptions[helloResponse](a.Notifier, fetch.Notices{
				Loading: fetch.Show(),
				Success: fetch.Say("Hello ✓"),
				Error:   fetch.Show(),
			}))
			defer q.Close()

			if result.Err != nil {
				return reported(result.Err)
			}
			fmt.Fprintln(a.Out, result.Data.Message)
			return nil
		},
	}
}

// NewBoomCmd creates the boom command. The endpoint always fails, so the
// command exists to show the failure notification.
func NewBoomCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "boom",
		Short: "Call /api/boom",
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := func(ctx context.Context) (messageResponse, error) {
				return api.Get[messageResponse](ctx, a.Client, "/api/boom", api.Directive{Auth: api.AuthOmit})
			}

			q, result := fetch.Use(cmd.Context(), a.Cache, "/api/boom", fetcher, queryOptions[messageResponse](a.Notifier, fetch.Notices{
				Loading: fetch.Say("Requesting…"),
				Error:   fetch.Show(),
			}))
			defer q.Close()

			if result.Err != nil {
				return reported(result.Err)
			}
			fmt.Fprintln(a.Out, result.Data.Message)
			return nil
		},
	}
}
