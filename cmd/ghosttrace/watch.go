package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metrics"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Answer queries from stdin and hot reload the index",
		Long: `Reads one question per line from stdin and writes one JSON analysis per line
to stdout. The index is reloaded whenever it is rebuilt by ingest, and
prometheus metrics are served when metrics.addr is set. Stops at end of input
or on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)
			p := a.pipeline(m, a.logger)

			if err := p.Reload(cmd.Context()); err != nil {
				if !errors.Is(err, domain.ErrStoreNotFound) {
					return fmt.Errorf("failed to load index: %w", err)
				}
				a.logger.Warn("no index yet, waiting for ingest", "path", a.cfg.IndexPath())
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			if a.cfg.Metrics.Addr != "" {
				g.Go(func() error {
					return metrics.Serve(ctx, a.cfg.Metrics.Addr, reg, a.logger)
				})
			}
			debounce := time.Duration(a.cfg.Watch.DebounceMS) * time.Millisecond
			g.Go(func() error {
				return watcher.Watch(ctx, a.cfg.IndexPath(), debounce, a.logger, func(ctx context.Context) {
					if err := p.Reload(ctx); err != nil {
						a.logger.Error("index reload failed", "error", err)
					}
				})
			})
			go func() {
				// Scanning blocks on stdin, so it stays outside the group; end of
				// input cancels everything else.
				defer cancel()
				enc := json.NewEncoder(cmd.OutOrStdout())
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					q := strings.TrimSpace(sc.Text())
					if q == "" {
						continue
					}
					res, err := p.Analyze(ctx, q)
					if err != nil {
						a.logger.Error("query failed", "query", q, "error", err)
						continue
					}
					if err := enc.Encode(res); err != nil {
						a.logger.Error("write failed", "error", err)
						return
					}
				}
			}()
			return g.Wait()
		},
	}
}
