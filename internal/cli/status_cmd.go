package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mandalart/internal/cli/formatter"
)

func newStatusCmd(app *App) *cobra.Command {
	var showPillars bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the session stands",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Wizard.Snapshot(cmd.Context(), app.key())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatStatus(s))
			if showPillars && len(s.SuggestedPillars) > 0 {
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.FormatPillarChoices(s))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPillars, "pillars", false, "List suggested pillars with selection marks")

	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent session mutations",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Wizard.History(cmd.Context(), app.key(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(events, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of events to show")

	return cmd
}
