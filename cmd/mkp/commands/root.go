// Package commands holds the mkp command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/barabadzhi/construction-mkp/pkg/config"
	"github.com/barabadzhi/construction-mkp/pkg/engine"
	"github.com/barabadzhi/construction-mkp/pkg/storage"
	"github.com/barabadzhi/construction-mkp/pkg/tui"
	"github.com/barabadzhi/construction-mkp/pkg/version"
)

// app carries the state shared by one command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCommand builds a fresh command tree with its own configuration.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "mkp",
		Short: "Construction heuristics for the multidimensional knapsack problem",
		Long: `mkp - Multidimensional Knapsack Construction Heuristics

Runs a greedy ratio heuristic and a randomized multi-start heuristic
against an MKP instance and reports both solutions.`,
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		RunE: a.runInteractive,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default $HOME/.mkp.yaml)")
	flags.StringP("input", "i", config.DefaultInput, "Instance file or s3://bucket/key")
	flags.IntP("random", "r", config.DefaultTrials, "Number of randomized trials")
	flags.Uint64("seed", 0, "Seed for randomized trials (0 derives one from the clock)")
	flags.Int("workers", 0, "Parallel trial workers (0 uses GOMAXPROCS)")
	flags.StringSlice("heuristics", []string{"greedy", "random"}, "Heuristics to run, in order")
	flags.String("export", "", "Write the report to a file, directory (trailing /) or s3:// URI")
	flags.String("format", config.DefaultFormat, "Report format: json, yaml or csv")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this textfile")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("json-logs", false, "Emit logs as JSON")
	flags.BoolP("verbose", "v", false, "Log progress to stderr")
	flags.String("otel-endpoint", "", "OTLP HTTP endpoint for traces")

	for key, flag := range map[string]string{
		"input":                   "input",
		"trials":                  "random",
		"seed":                    "seed",
		"workers":                 "workers",
		"heuristics":              "heuristics",
		"output.export":           "export",
		"output.format":           "format",
		"output.metrics_textfile": "metrics-textfile",
		"output.no_color":         "no-color",
		"output.json_logs":        "json-logs",
		"output.verbose":          "verbose",
		"telemetry.otel_endpoint": "otel-endpoint",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd.OutOrStdout(), cmd)
	})

	rootCmd.AddCommand(a.newSolveCommand(), a.newInspectCommand(), newCompletionCommand(rootCmd))
	return rootCmd
}

// initConfig layers the config file and MKP_* environment over the flag defaults.
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.SetConfigFile(filepath.Join(home, ".mkp.yaml"))
	}
	a.v.SetConfigType("yaml")
	a.v.SetEnvPrefix("MKP")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// solverConfig resolves the effective configuration.
func (a *app) solverConfig() (config.SolverConfig, error) {
	cfg := config.DefaultSolverConfig()
	if err := a.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (a *app) newEngine(cmd *cobra.Command, cfg config.SolverConfig, logOut io.Writer) (*engine.Engine, error) {
	return engine.New(cmd.Context(), engine.WithConfig(engine.Config{
		SolverConfig: cfg,
		Logger:       engine.NewLogger(logOut, cfg.Output.JSONLogs, cfg.Output.Verbose),
	}))
}

// runInteractive is the default action: solve inside the TUI.
func (a *app) runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := a.solverConfig()
	if err != nil {
		return err
	}
	if storage.IsCollection(cfg.Input) {
		return fmt.Errorf("interactive mode solves a single instance; use \"mkp solve -i %s\" for a collection", cfg.Input)
	}

	// Logs would tear the alternate screen.
	eng, err := a.newEngine(cmd, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer eng.Shutdown(context.WithoutCancel(cmd.Context()))

	model := tui.NewModel(cmd.Context(), eng, cfg.Input)
	final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func renderHelp(w io.Writer, cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("MKP %s", version.Current)))
	fmt.Fprintln(w, cmd.Short)

	fmt.Fprintln(w, titleStyle.Render("USAGE"))
	fmt.Fprintf(w, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(w, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(w, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("EXAMPLES"))
	fmt.Fprintln(w, "  mkp -i input.txt                         # Interactive mode (TUI)")
	fmt.Fprintln(w, "  mkp solve -i input.txt -r 100 --seed 7   # Headless mode")
	fmt.Fprintln(w, "  mkp solve -i s3://bucket/mknap.txt --export s3://bucket/runs/")
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		output := fmt.Sprintf("  %-22s %s", name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(w, flagStyle.Render(output))
	})
	fmt.Fprintln(w)
}
