// Package app wires the client side together: configuration, the persisted
// session, the HTTP pipeline, the fetch cache and the notifier. Commands get
// everything they touch from an App so tests can swap any piece.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/starlab-dev/starlab/internal/api"
	"github.com/starlab-dev/starlab/internal/config"
	"github.com/starlab-dev/starlab/internal/fetch"
	"github.com/starlab-dev/starlab/internal/notify"
	"github.com/starlab-dev/starlab/internal/session"
)

// Prompter asks the user for a line of input
type Prompter func(label string) (string, error)

type App struct {
	Config   *config.Config
	Session  *session.Store
	Client   *api.Client
	Cache    *fetch.Cache
	Notifier notify.Notifier
	Logger   zerolog.Logger

	Out io.Writer
	// Interactive enables prompts
	Interactive bool
	Prompt      Prompter

	persister session.Persister
}

// Options overrides pieces of the default wiring
type Options struct {
	Persister session.Persister
	Notifier  notify.Notifier
	Out       io.Writer
	Prompt    Prompter
	// Interactive is derived from stdin when nil
	Interactive *bool
	Logger      *zerolog.Logger
}

// New builds an App from cfg. The session is rehydrated before New returns.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	persister := opts.Persister
	if persister == nil {
		var err error
		persister, err = session.OpenPersister(cfg.Client.SessionBackend, cfg.Client.SessionPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session storage: %w", err)
		}
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewTerminal(os.Stderr)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}

	store := session.New(ctx, persister, logger)

	clientOpts := []api.Option{
		api.WithLogger(logger),
		api.WithTokens(store),
		api.WithNotifier(notifier),
	}
	if cfg.Client.AutoLogoutOnUnauthorized {
		clientOpts = append(clientOpts, api.WithLogoutOnUnauthorized(store))
	}

	a := &App{
		Config:      cfg,
		Session:     store,
		Client:      api.New(cfg.Origin(), clientOpts...),
		Cache:       fetch.NewCache(),
		Notifier:    notifier,
		Logger:      logger,
		Out:         out,
		Interactive: interactive,
		Prompt:      opts.Prompt,
		persister:   persister,
	}
	if a.Prompt == nil {
		a.Prompt = promptEmail
	}
	return a, nil
}

// Close writes the session one last time and releases storage
func (a *App) Close() error {
	err := a.Session.Close()
	if closer, ok := a.persister.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}
