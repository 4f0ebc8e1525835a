package main

import (
	"fmt"
	"os"
	"time"

	"github.com/juparave/aprxaudit/internal/app"
	"github.com/juparave/aprxaudit/internal/config"
	"github.com/juparave/aprxaudit/internal/report"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type flags struct {
	cfgFile          string
	variant          string
	stamp            bool
	verbose          bool
	allowMissingRoot bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "aprxaudit [root] [output.csv]",
		Short: "List the maps, layers and data sources of every ArcGIS Pro project under a folder",
		Long: `aprxaudit crawls a folder for .aprx project documents, skipping backup,
archive and geodatabase folders, and writes one CSV row per layer with its
project, map, data source, label visibility and symbology field.`,
		Version:       version,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.cfgFile, "config", "c", "", "Path to config file (default: ~/.config/aprxaudit/config.yaml)")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Column set: base or extended (default: extended)")
	cmd.Flags().BoolVar(&f.stamp, "stamp", false, "Append _YYYYMMDD_HHMMSS to the output file name")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&f.allowMissingRoot, "allow-missing-root", false, "Write an empty report instead of failing when root does not exist")

	return cmd
}

func run(cmd *cobra.Command, args []string, f *flags) error {
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with CLI arguments and flags
	if len(args) > 0 {
		cfg.RootPath = args[0]
	}
	if len(args) > 1 {
		cfg.OutputPath = args[1]
	}
	if f.variant != "" {
		cfg.Variant = f.variant
	}
	if f.stamp {
		cfg.StampOutput = true
	}
	if f.allowMissingRoot {
		cfg.AllowMissingRoot = true
	}
	cfg.Verbose = f.verbose

	if cfg.StampOutput {
		cfg.OutputPath = report.StampedPath(cfg.OutputPath, time.Now())
	}

	runner := app.NewRunner(cfg,
		app.WithOutput(cmd.OutOrStdout()),
		app.WithErrorOutput(cmd.ErrOrStderr()),
	)
	_, err = runner.Run(cmd.Context())
	return err
}
