package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/service"
	"github.com/alexanderramin/mandalart/internal/session"
)

// App holds what CLI commands need.
type App struct {
	Wizard service.WizardService
	Locale domain.Locale

	// Serve runs the HTTP API on addr until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error
	// DefaultAddr is used by serve when --addr is not given.
	DefaultAddr string

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	sessionID string
}

// key is the storage slot selected by --session.
func (a *App) key() string {
	return session.KeyFor(a.sessionID)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "mandalart" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "mandalart",
		Short:         "Build a 9x9 Mandalart goal plan with an AI coach",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.sessionID, "session", "", "Session slot id (default slot when empty)")

	root.AddCommand(
		newStartCmd(app),
		newStatusCmd(app),
		newShowCmd(app),
		newExportCmd(app),
		newStepCmd(app),
		newResetCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
	)

	return root
}
