package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mandalart/internal/cli/formatter"
	"github.com/alexanderramin/mandalart/internal/domain"
)

var errNoMandalart = errors.New("no mandalart yet; finish the wizard with 'mandalart start'")

func newShowCmd(app *App) *cobra.Command {
	var interactive bool
	var width int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the finished mandalart grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMandalart(cmd, app)
			if err != nil {
				return err
			}
			if interactive {
				if !app.interactive() {
					return errNotInteractive
				}
				return runGridViewer(cmd.Context(), m)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderGrid(m, width))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the grid block by block")
	cmd.Flags().IntVar(&width, "width", formatter.DefaultCellWidth, "Cell width in columns")

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var format, outPath string
	var bless bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the mandalart as Markdown or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "md" && format != "json" {
				return fmt.Errorf("unknown format %q (want md or json)", format)
			}
			m, err := loadMandalart(cmd, app)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				if data, err = formatter.ExportJSON(m); err != nil {
					return err
				}
			default:
				blessing := ""
				if bless {
					if blessing, err = app.Wizard.Bless(cmd.Context(), app.key()); err != nil {
						return fmt.Errorf("blessing: %w", err)
					}
				}
				data = []byte(formatter.ExportMarkdown(m, blessing))
			}

			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Output format: md or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&bless, "bless", false, "Add a closing line from the coach (Markdown only)")

	return cmd
}

func loadMandalart(cmd *cobra.Command, app *App) (domain.MandalartData, error) {
	s, err := app.Wizard.Snapshot(cmd.Context(), app.key())
	if err != nil {
		return domain.MandalartData{}, err
	}
	if s.Mandalart == nil {
		return domain.MandalartData{}, errNoMandalart
	}
	return *s.Mandalart, nil
}
