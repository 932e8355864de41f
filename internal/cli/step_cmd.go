package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mandalart/internal/cli/formatter"
	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/session"
)

func newStepCmd(app *App) *cobra.Command {
	steps := make([]string, len(domain.Steps))
	for i, s := range domain.Steps {
		steps[i] = string(s)
	}

	return &cobra.Command{
		Use:       "step <STEP>",
		Short:     "Move the session to a step",
		Long:      "Move the session to a step. Known steps: " + strings.Join(steps, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: steps,
		RunE: func(cmd *cobra.Command, args []string) error {
			step := domain.Step(strings.ToUpper(strings.TrimSpace(args[0])))
			if !domain.ValidStep(step) {
				return fmt.Errorf("unknown step %q", args[0])
			}
			u, err := app.Wizard.Dispatch(cmd.Context(), app.key(), session.SetStep{Step: step})
			if err != nil {
				return err
			}
			if u.Outcome != session.OutcomeApplied {
				return fmt.Errorf("cannot move from %s to %s: %s", u.Session.CurrentStep, step, u.Outcome)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Step is now %s\n", formatter.StepBadge(u.Session.CurrentStep))
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the session and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to reset without --yes")
				}
				ok, err := huhPrompter{ctx: cmd.Context()}.Confirm("Discard the current session?")
				if err != nil || !ok {
					return err
				}
			}
			if _, err := app.Wizard.Reset(cmd.Context(), app.key()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session reset.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wizard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("serve is not configured")
			}
			if addr == "" {
				addr = app.DefaultAddr
			}
			return app.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from MANDALART_ADDR)")

	return cmd
}
