package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/config"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/logger"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metrics"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/risk"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/service"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/sqlite"
)

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	cfgPath string
	verbose bool

	cfg    *config.AppConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ghosttrace",
		Short: "Detect drift risk in retrieved documentation",
		Long: `GhostTrace indexes a documentation corpus and, for every question, retrieves
the closest documents and scores how likely they are to be stale, deprecated
or inconsistent with the current version.

Examples:
  # Build the index from a directory of docs
  ghosttrace ingest ./docs

  # Ask a question and print the risk verdict
  ghosttrace query "how do I create a charge"

  # Show corpus-wide version facts
  ghosttrace facts

  # List indexed files and index size
  ghosttrace datasets
  ghosttrace stats`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "Path to YAML config file (defaults to ./ghosttrace.yaml or ~/.config/ghosttrace/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newIngestCmd(a),
		newQueryCmd(a),
		newFactsCmd(a),
		newDatasetsCmd(a),
		newStatsCmd(a),
		newTUICmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.AppConfig
		err error
	)
	if a.cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(a.cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	slog.SetDefault(l)
	a.cfg = cfg
	a.logger = l
	return nil
}

func (a *app) store() *sqlite.Store {
	return sqlite.NewStore(a.cfg.IndexPath())
}

func (a *app) engineOptions() []risk.Option {
	return []risk.Option{
		risk.WithCriticalTypes(a.cfg.Risk.CriticalTypes),
		risk.WithNoticeMarkers(a.cfg.Risk.NoticeMarkers),
	}
}

func (a *app) pipeline(m *metrics.Metrics, l *slog.Logger) *service.Pipeline {
	return service.NewPipeline(a.store(),
		service.WithTopK(a.cfg.Index.TopK),
		service.WithEngineOptions(a.engineOptions()...),
		service.WithMetrics(m),
		service.WithLogger(l),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
