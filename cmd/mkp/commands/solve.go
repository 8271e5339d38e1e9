package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barabadzhi/construction-mkp/pkg/engine/report"
)

func (a *app) newSolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "solve",
		Short: "Run the heuristics headless and print the results",
		Long: `Loads the instance, runs every configured heuristic in order and prints
one block per heuristic. Use --export to also write a JSON, YAML or CSV report.
An input naming a directory or an s3 prefix solves every .txt instance in it.

Example:
  mkp solve -i mknap1.txt -r 100
  mkp solve -i s3://bucket/mknap1.txt --seed 42 --export out/ --format yaml
  mkp solve -i s3://bucket/instances/ --export s3://bucket/runs/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.solverConfig()
			if err != nil {
				return err
			}

			eng, err := a.newEngine(cmd, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer eng.Shutdown(context.WithoutCancel(cmd.Context()))

			outcomes, err := eng.Run(cmd.Context())
			w := cmd.OutOrStdout()
			printer := report.NewPrinter(w, cfg.Output.NoColor)
			for _, out := range outcomes {
				if len(out.Results) == 0 {
					continue
				}
				if len(outcomes) > 1 || out.Input != cfg.Input {
					fmt.Fprintf(w, "== %s ==\n", out.Input)
				}
				if perr := printer.Print(out.Instance, out.Results); perr != nil {
					return perr
				}
				if out.ExportedTo != "" {
					fmt.Fprintf(w, "Report %s exported to %s\n", out.Report.RunID, out.ExportedTo)
				}
			}
			return err
		},
	}
}
