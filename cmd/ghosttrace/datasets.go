package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/service"
)

func newDatasetsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the indexed files with their version and deprecation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.store().Records(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read index: %w", err)
			}
			ds := service.Datasets(recs)
			if asJSON {
				return printJSON(cmd, ds)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-32s %-8s %-16s %-5s %s\n", "FILE", "VERSION", "TYPE", "DOCS", "STATUS")
			for _, d := range ds {
				status := "current"
				if d.Deprecated {
					status = "DEPRECATED"
				}
				fmt.Fprintf(out, "%-32s %-8s %-16s %-5d %s\n", d.File, d.Version, d.DocType, d.Count, status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output datasets as JSON")
	return cmd
}
