package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/export"
	"github.com/sells-group/lead-cli/internal/model"
)

var (
	harvestCities   []string
	harvestKeywords []string
	harvestPrompt   string
	harvestOut      string
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Search for candidate companies",
	Long: "Searches every keyword in every city and prints unique leads (one per domain). " +
		"With --prompt, an AI model first turns a job description into cities and keywords.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "harvest", false)
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.HarvestRequest{Cities: harvestCities, Keywords: harvestKeywords}
		if strings.TrimSpace(harvestPrompt) != "" {
			st := env.Strategist.Generate(ctx, harvestPrompt)
			fmt.Fprintf(cmd.ErrOrStderr(), "Strategy: %s\nCities: %s\nKeywords: %s\n",
				st.Reasoning, strings.Join(st.TargetCities, ", "), strings.Join(st.Keywords, ", "))
			req = st.HarvestRequest()
		}
		if len(req.Cities) == 0 || len(req.Keywords) == 0 {
			return eris.New("harvest: need --city and --keyword, or --prompt")
		}

		leads := runHarvest(env.Harvester.Stream(ctx, req), cmd.OutOrStdout(), harvestOut == "")

		if harvestOut != "" {
			if err := export.SaveLeads(harvestOut, leads); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d leads to %s\n", len(leads), harvestOut)
		}
		return nil
	},
}

func init() {
	harvestCmd.Flags().StringSliceVar(&harvestCities, "city", nil, "city to search (repeatable or comma-separated)")
	harvestCmd.Flags().StringSliceVar(&harvestKeywords, "keyword", nil, "keyword to search (repeatable or comma-separated)")
	harvestCmd.Flags().StringVar(&harvestPrompt, "prompt", "", "free-text job description to plan the search from")
	harvestCmd.Flags().StringVar(&harvestOut, "out", "", "write leads to a .xlsx, .csv or .json file instead of stdout")
	rootCmd.AddCommand(harvestCmd)
}

// runHarvest drains chunks, optionally echoing them as NDJSON, and returns
// the collected leads.
func runHarvest(chunks <-chan model.Chunk, w io.Writer, stream bool) []model.Lead {
	enc := json.NewEncoder(w)
	var leads []model.Lead
	for c := range chunks {
		if c.Type == model.ChunkLeads {
			if batch, ok := c.Data.([]model.Lead); ok {
				leads = append(leads, batch...)
			}
		}
		if stream {
			_ = enc.Encode(c)
		}
	}
	return leads
}
