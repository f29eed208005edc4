package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/risk"
)

func newFactsCmd(a *app) *cobra.Command {
	var (
		metaPath string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Show corpus-wide version and deprecation facts",
		Long: `Prints the latest version seen per document type, the newest version across
the corpus and whether a deprecation notice exists. Facts are read from the
saved index unless --metadata points at a JSON metadata export.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src domain.MetadataSource = a.store()
			if metaPath != "" {
				src = metadata.FileSource{Path: metaPath}
			}
			engine, err := risk.NewEngine(cmd.Context(), src, append(a.engineOptions(), risk.WithLogger(a.logger))...)
			if err != nil {
				return fmt.Errorf("failed to read metadata: %w", err)
			}
			f := engine.Facts()
			if asJSON {
				return printJSON(cmd, f)
			}
			out := cmd.OutOrStdout()
			types := make([]string, 0, len(f.LatestVersions))
			for t := range f.LatestVersions {
				types = append(types, t)
			}
			sort.Strings(types)
			fmt.Fprintln(out, "Latest versions:")
			for _, t := range types {
				fmt.Fprintf(out, "  %-16s %s\n", t, f.LatestVersions[t])
			}
			latest := f.Latest
			if latest == "" {
				latest = "n/a"
			}
			fmt.Fprintf(out, "Newest version: %s\n", latest)
			fmt.Fprintf(out, "Deprecation notice: %t\n", f.DeprecationNoticeExists)
			return nil
		},
	}
	cmd.Flags().StringVar(&metaPath, "metadata", "", "Read facts from a JSON metadata export instead of the index")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output facts as JSON")
	return cmd
}
