package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/starlab-dev/starlab/internal/cli/app"
	"github.com/starlab-dev/starlab/internal/cli/commands"
	"github.com/starlab-dev/starlab/internal/config"
	"github.com/starlab-dev/starlab/internal/logger"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	taglineStyle = lipgloss.NewStyle().Faint(true)
)

// NewRootCmd builds the command tree around a
func NewRootCmd(a *app.App, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starlab",
		Short: "starlab - demo client for the starlab API",
		Long: `starlab talks to the starlab API: sign in, look at your profile and poke
the demo endpoints. Failures show up as notifications on stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printWelcome(a.Out, a.Config.App.Name)
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.Out, "%s version %s\n", a.Config.App.Name, version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(a))
	rootCmd.AddCommand(commands.NewLogoutCmd(a))
	rootCmd.AddCommand(commands.NewDashboardCmd(a))
	rootCmd.AddCommand(commands.NewHelloCmd(a))
	rootCmd.AddCommand(commands.NewBoomCmd(a))
	rootCmd.AddCommand(commands.NewStatusCmd(a))

	return rootCmd
}

func printWelcome(out io.Writer, name string) error {
	_, err := fmt.Fprintf(out, "%s\n%s\n\nTry: %s login, %s dashboard, %s hello\n",
		titleStyle.Render("Welcome to "+name),
		taglineStyle.Render("Minimal · Modern · Ready to grow"),
		name, name, name)
	return err
}

// Execute loads configuration, runs the command line and persists the
// session on the way out
func Execute(version string) error {
	cfg, err := config.Load("console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Logger: &log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session storage")
		}
	}()

	if err := NewRootCmd(a, version).ExecuteContext(ctx); err != nil {
		if !commands.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}
