package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/ingest"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/service"
)

func newIngestCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Build the index from corpus files",
		Long: `Reads every matching file under the given files, directories or globs,
tags it with version, type and deprecation metadata, builds a new index and
replaces the saved one. The metadata is also exported as JSON next to it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewIndexService(
				ingest.NewLoader(a.cfg.Ingest.Extensions),
				a.store(),
				&metadata.FileSource{Path: a.cfg.MetadataPath()},
				a.cfg.Index.Workers,
				a.logger,
			)
			_, sum, err := svc.Ingest(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			if asJSON {
				return printJSON(cmd, sum)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d documents (%d terms, %d deprecated) into %s\n",
				sum.Documents, sum.Vocabulary, sum.Deprecated, sum.Path)
			for _, t := range sum.SortedDocTypes() {
				fmt.Fprintf(out, "  %-16s %d\n", t, sum.DocTypes[t])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the build summary as JSON")
	return cmd
}
