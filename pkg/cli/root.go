// Package cli is the command-line surface of schemascan.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wolfdata/schemascan/pkg/config"
	"github.com/wolfdata/schemascan/pkg/ingest"
	"github.com/wolfdata/schemascan/pkg/render"
	"github.com/wolfdata/schemascan/pkg/report"
	"github.com/wolfdata/schemascan/pkg/services"
)

var (
	configPath string
	logLevel   string
	workers    int
	outPath    string
	dotPath    string
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schemascan",
		Short:         "Infer keys, table roles, and relationships from raw tabular data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Clean, profile, and analyze one or more CSV/JSON datasets",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalyze,
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the YAML report to this file instead of stdout")
	cmd.Flags().StringVar(&dotPath, "dot", "", "write a Graphviz DOT model diagram to this file")
	cmd.Flags().IntVar(&workers, "workers", 0, "override the configured worker count")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loader := ingest.NewLoader(logger)
	datasets, skipped, err := loader.LoadAll(args)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return fmt.Errorf("no datasets loaded (%d files skipped)", len(skipped))
	}

	analyzer := services.NewAnalyzer(cfg, logger)
	result, err := analyzer.Analyze(cmd.Context(), datasets)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, result); err != nil {
		return err
	}

	if dotPath != "" {
		if err := os.WriteFile(dotPath, []byte(render.DOT(result)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dotPath, err)
		}
	}
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(parsed)
	return logConfig.Build()
}
