package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/memory"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/sqlite"
)

type statsOutput struct {
	Artifact sqlite.Info  `json:"artifact"`
	Index    memory.Stats `json:"index"`
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the size and shape of the saved index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.store()
			info, err := store.Info(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read index: %w", err)
			}
			ix, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load index: %w", err)
			}
			st := statsOutput{Artifact: info, Index: ix.Stats()}
			if asJSON {
				return printJSON(cmd, st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Index:       %s (format %s)\n", info.Path, info.FormatVersion)
			fmt.Fprintf(out, "Saved at:    %s\n", info.SavedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Documents:   %d\n", st.Index.Documents)
			fmt.Fprintf(out, "Vocabulary:  %d terms\n", st.Index.Vocabulary)
			fmt.Fprintf(out, "Weights:     %d stored (density %.4f)\n", st.Index.NonZero, st.Index.Density)
			fmt.Fprintf(out, "Search:      %s\n", st.Index.IndexType)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output stats as JSON")
	return cmd
}
