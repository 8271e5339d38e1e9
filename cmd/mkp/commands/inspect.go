package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/barabadzhi/construction-mkp/pkg/knapsack"
)

func (a *app) newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load and validate instances without solving them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.solverConfig()
			if err != nil {
				return err
			}
			cfg.Telemetry.Disabled = true

			eng, err := a.newEngine(cmd, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer eng.Shutdown(context.WithoutCancel(cmd.Context()))

			inputs, err := eng.Inputs(cmd.Context())
			if err != nil {
				return err
			}
			for n, uri := range inputs {
				inst, err := eng.Load(cmd.Context(), uri)
				if err != nil {
					return err
				}
				if n > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				describe(cmd.OutOrStdout(), uri, inst)
			}
			return nil
		},
	}
}

func describe(w io.Writer, uri string, inst *knapsack.Instance) {
	fmt.Fprintf(w, "Instance:   %s\n", uri)
	fmt.Fprintf(w, "Items:      %d\n", inst.N)
	fmt.Fprintf(w, "Dimensions: %d\n", inst.M)
	fmt.Fprintf(w, "Q:          %d\n", inst.Q)
	if inst.Optimum > 0 {
		fmt.Fprintf(w, "Optimum:    %d\n", inst.Optimum)
	} else {
		fmt.Fprintln(w, "Optimum:    unknown")
	}

	var profit uint64
	for _, it := range inst.Items {
		profit += it.Profit
	}
	fmt.Fprintf(w, "Profit sum: %d\n", profit)

	for d, c := range inst.Capacity {
		var weight uint64
		for _, it := range inst.Items {
			weight += it.Weights[d]
		}
		fmt.Fprintf(w, "Dimension %d: capacity %d, total weight %d\n", d+1, c, weight)
	}
}
