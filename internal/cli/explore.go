package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	pgio "github.com/matzehuels/plangraph/pkg/io"
	"github.com/matzehuels/plangraph/pkg/pipeline"
)

func (c *CLI) exploreCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "explore [problem]",
		Short: "Browse a planning graph level by level",
		Long: `Build the planning graph and open an interactive browser showing each
level's literals or actions together with their mutex partners.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := pgio.ImportProblem(args[0])
			if err != nil {
				return err
			}
			opts, err := c.options(cmd, &flags, p)
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			g, err := pipeline.NewRunner(nil, nil, opts.Logger).Build(ctx, p, opts)
			if err != nil {
				return err
			}
			prog.done("Built planning graph")

			_, err = tea.NewProgram(NewLevelModel(p.Name, g), tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
