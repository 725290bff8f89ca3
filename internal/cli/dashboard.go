package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/noah-isme/staggered-pricing/internal/tui"
)

func newDashboardCmd(o *options) *cobra.Command {
	flags := &configFlags{}
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Launch the interactive pricing dashboard",
		Long: `Launch an interactive terminal dashboard that re-solves the schedule on
every change.

Key bindings:
  Up / Down      Target discount +/- 1%
  Left / Right   Number of levels -/+ 1
  f / F          Price floor +/- 1% of the base price
  c / C          Full-price cohort +/- 1 subject
  r              Reset to the starting configuration
  q / Ctrl+C     Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			model := tui.New(cfg, o.quoterFor(cmd), o.money())
			p := tea.NewProgram(model, tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
