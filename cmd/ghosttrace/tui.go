package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/tui"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/watcher"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive query screen",
		Long: `Opens an interactive screen that analyzes each question typed into it.
With watch.enabled set, the index is reloaded whenever it is rebuilt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Log lines would tear the alternate screen.
			quiet := slog.New(slog.DiscardHandler)
			p := a.pipeline(nil, quiet)
			if err := p.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load index: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if a.cfg.Watch.Enabled {
				debounce := time.Duration(a.cfg.Watch.DebounceMS) * time.Millisecond
				go func() {
					_ = watcher.Watch(ctx, a.cfg.IndexPath(), debounce, quiet, func(ctx context.Context) {
						_ = p.Reload(ctx)
					})
				}()
			}

			prog := tea.NewProgram(tui.New(p, p.Describe), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err := prog.Run()
			return err
		},
	}
}
