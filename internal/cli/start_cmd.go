package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotInteractive = errors.New("this command needs an interactive terminal")

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the wizard, resuming from the saved step",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotInteractive
			}
			r := &wizardRunner{
				ctx:    cmd.Context(),
				wizard: app.Wizard,
				key:    app.key(),
				locale: app.Locale,
				ask:    huhPrompter{ctx: cmd.Context()},
				out:    cmd.OutOrStdout(),
				spin:   true,
			}
			return r.run()
		},
	}
}
