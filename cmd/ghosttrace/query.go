package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/summarizer"
)

const snippetLen = 160

func newQueryCmd(a *app) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Retrieve documents for a question and score their drift risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.pipeline(nil, a.logger)
			if err := p.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load index: %w", err)
			}
			k := a.cfg.Index.TopK
			if cmd.Flags().Changed("top-k") {
				k = topK
			}
			res, err := p.AnalyzeTopK(cmd.Context(), args[0], k)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			if asJSON {
				return printJSON(cmd, res)
			}
			writeAnalysis(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of documents to retrieve (defaults to index.top_k)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the analysis as JSON")
	return cmd
}

func writeAnalysis(w io.Writer, res domain.Analysis) {
	v := res.Verdict
	fmt.Fprintf(w, "Risk: %s (%d/100)\n", v.Level, v.Score)
	if len(v.Flags) > 0 {
		fmt.Fprintf(w, "Flags: %s\n", strings.Join(v.Flags, ", "))
	}
	fmt.Fprintln(w, "Reasons:")
	for _, r := range v.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	if len(v.Actions) > 0 {
		fmt.Fprintln(w, "Actions:")
		for _, act := range v.Actions {
			fmt.Fprintf(w, "  - %s\n", act)
		}
	}
	if len(res.Results) == 0 {
		fmt.Fprintln(w, "No documents retrieved.")
		return
	}
	fmt.Fprintln(w, "Results:")
	for i, r := range res.Results {
		md := r.Document.Metadata
		state := ""
		if md.Deprecated {
			state = ", deprecated"
		}
		fmt.Fprintf(w, "  [%d] %s (version %s, %s%s) distance=%.4f\n",
			i+1, md.FileName, md.Version, md.DocType, state, r.Distance)
		fmt.Fprintf(w, "      %s\n", snippet(summarizer.Gist(r.Document.Text, res.Query, 1)))
	}
}

func snippet(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}
