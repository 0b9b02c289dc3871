package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/enrich"
	"github.com/abhisek/wordiz/internal/llm"
	"github.com/abhisek/wordiz/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM requests made for word enrichment",
}

// llmEvent is a decoded llm_request event.
type llmEvent struct {
	store.LLMRequestEventData
	Sequence  int64
	Timestamp string
}

func decodeLLMEvent(e store.Event) (llmEvent, error) {
	out := llmEvent{Sequence: e.Sequence, Timestamp: e.Timestamp.Local().Format("2006-01-02 15:04:05")}
	if err := json.Unmarshal([]byte(e.Payload), &out.LLMRequestEventData); err != nil {
		return out, fmt.Errorf("decode event %d: %w", e.Sequence, err)
	}
	return out, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		word, _ := cmd.Flags().GetString("word")

		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.store.Events().RecentNamed(cmd.Context(), store.EventLLMRequest, limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM events found.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-14s  %-16s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"Seq", "Timestamp", "Purpose", "Word", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 120))

		for _, raw := range events {
			e, err := decodeLLMEvent(raw)
			if err != nil {
				return err
			}
			if (purpose != "" && e.Purpose != purpose) || (word != "" && e.Word != word) {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-14s  %-16s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.Sequence, e.Timestamp, e.Purpose, truncate(e.Word, 16), truncate(e.Model, 28),
				e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <seq>",
	Short: "View the full request and response of an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[0], err)
		}

		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()

		raw, err := d.store.Events().BySequence(cmd.Context(), seq)
		if store.IsNotFound(err) {
			return fmt.Errorf("event %d not found", seq)
		}
		if err != nil {
			return err
		}
		if raw.Name != store.EventLLMRequest {
			return fmt.Errorf("event %d is a %s event, not an LLM request", seq, raw.Name)
		}
		e, err := decodeLLMEvent(*raw)
		if err != nil {
			return err
		}
		printLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

func printLLMEvent(out io.Writer, e llmEvent) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(out, "Seq:       %d\n", e.Sequence)
	fmt.Fprintf(out, "Time:      %s\n", e.Timestamp)
	fmt.Fprintf(out, "Provider:  %s\n", e.Provider)
	fmt.Fprintf(out, "Model:     %s\n", e.Model)
	fmt.Fprintf(out, "Purpose:   %s\n", e.Purpose)
	if e.Word != "" {
		fmt.Fprintf(out, "Word:      %s\n", e.Word)
	}
	if e.Attempt > 1 {
		fmt.Fprintf(out, "Attempt:   %d\n", e.Attempt)
	}
	fmt.Fprintf(out, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(out, "Latency:   %dms\n", e.LatencyMs)
	if e.CostUSD > 0 {
		fmt.Fprintf(out, "Cost:      %s\n", formatCost(e.CostUSD))
	}
	fmt.Fprintf(out, "Success:   %v\n", e.Success)
	if e.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", e.ErrorMessage)
	}

	for _, section := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sep)
		fmt.Fprintln(out, section.title)
		fmt.Fprintln(out, sep)
		if section.body == "" {
			fmt.Fprintln(out, "(not captured)")
		} else {
			fmt.Fprintln(out, section.body)
		}
	}
}

// modelUsage aggregates calls per model.
type modelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.store.Events().RecentNamed(cmd.Context(), store.EventLLMRequest, 0)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		byModel := map[string]*modelUsage{}
		for _, raw := range events {
			e, err := decodeLLMEvent(raw)
			if err != nil {
				return err
			}
			u, ok := byModel[e.Model]
			if !ok {
				u = &modelUsage{Model: e.Model}
				byModel[e.Model] = u
			}
			u.Calls++
			u.InputTokens += e.InputTokens
			u.OutputTokens += e.OutputTokens
		}
		models := make([]string, 0, len(byModel))
		for m := range byModel {
			models = append(models, m)
		}
		slices.Sort(models)

		fmt.Fprintln(out, "Estimated Cost (USD)")
		fmt.Fprintln(out, strings.Repeat("─", 76))
		fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
		fmt.Fprintln(out, strings.Repeat("─", 76))

		var totalCost float64
		var unknown []string
		for _, m := range models {
			u := byModel[m]
			cost := llm.LookupCost(u.Model)
			if cost == nil {
				unknown = append(unknown, u.Model)
				fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
					truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, "?")
				continue
			}
			c := cost.Cost(u.InputTokens, u.OutputTokens)
			totalCost += c
			fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, formatCost(c))
		}

		fmt.Fprintln(out, strings.Repeat("─", 76))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
		if len(unknown) > 0 {
			fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

var llmTryCmd = &cobra.Command{
	Use:   "try <word> [translation]",
	Short: "Enrich a single word to check the provider setup",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()
		if d.enricher == nil {
			return fmt.Errorf("no LLM provider configured: set llm.provider or an API key")
		}

		in := enrich.Input{Word: args[0], Language: settings.Study.Language}
		if len(args) > 1 {
			in.Translation = args[1]
		}
		res, err := d.enricher.Enrich(llm.WithPurpose(cmd.Context(), llm.PurposeCheck), in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Sentence:     %s\n", res.Sentence)
		fmt.Fprintf(out, "Translation:  %s\n", res.SentenceTranslation)
		fmt.Fprintf(out, "Definition:   %s\n", res.Definition)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (word-enrich, book-enrich, provider-check)")
	llmListCmd.Flags().StringP("word", "w", "", "Filter by vocabulary word")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
	llmCmd.AddCommand(llmTryCmd)
}
