package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/enrich"
	"github.com/sells-group/lead-cli/internal/export"
	"github.com/sells-group/lead-cli/internal/model"
)

var (
	enrichFile string
	enrichOut  string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [url...]",
	Short: "Find contact details for company websites",
	Long: "Runs the contact pipeline for each URL given as an argument or listed in --file. " +
		"Results stream to stdout as NDJSON, or are written to --out (.xlsx, .csv or .json).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		urls, err := collectURLs(args, enrichFile)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "enrich", false)
		if err != nil {
			return err
		}
		defer env.Close()

		results := runEnrich(env.Enricher.Stream(ctx, urls), cmd.OutOrStdout(), enrichOut == "")
		logSummary(results)

		if enrichOut != "" {
			if err := export.SaveResults(enrichOut, results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d results to %s\n", len(results), enrichOut)
		}
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichFile, "file", "", "read URLs from a .txt, .csv or .xlsx file")
	enrichCmd.Flags().StringVar(&enrichOut, "out", "", "write results to a .xlsx, .csv or .json file instead of stdout")
	rootCmd.AddCommand(enrichCmd)
}

// collectURLs merges args and the URL file, deduplicated in order.
func collectURLs(args []string, file string) ([]string, error) {
	urls := append([]string{}, args...)
	if file != "" {
		fromFile, err := export.ReadURLs(file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	urls = enrich.Dedup(urls)
	if len(urls) == 0 {
		return nil, eris.New("enrich: no URLs given (pass them as arguments or with --file)")
	}
	return urls, nil
}

// runEnrich drains events, optionally echoing each as an NDJSON chunk, and
// returns the results in completion order.
func runEnrich(events <-chan enrich.Event, w io.Writer, stream bool) []*model.EnrichmentResult {
	enc := json.NewEncoder(w)
	var results []*model.EnrichmentResult
	for ev := range events {
		results = append(results, ev.Result)
		if stream {
			_ = enc.Encode(model.DataChunk(model.ChunkEnrichResult, ev.Result, ev.Progress()))
		}
	}
	if stream {
		_ = enc.Encode(model.DoneChunk())
	}
	return results
}

func logSummary(results []*model.EnrichmentResult) {
	counts := make(map[model.Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	fields := []zap.Field{zap.Int("total", len(results))}
	for _, s := range model.AllStatuses() {
		fields = append(fields, zap.Int(string(s), counts[s]))
	}
	zap.L().Info("enrich: summary", fields...)
}
