package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonplay/internal/config"
	"github.com/abhisek/lessonplay/internal/llm"
	"github.com/abhisek/lessonplay/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		events = byPurpose(events, purpose)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}
		writeLLMList(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the transcript and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeLLMEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		purposes, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		models, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		writeLLMStats(cmd.OutOrStdout(), purposes, models)
		return nil
	},
}

func byPurpose(events []store.LLMEvent, purpose string) []store.LLMEvent {
	if purpose == "" {
		return events
	}
	out := events[:0:0]
	for _, e := range events {
		if e.Purpose == purpose {
			out = append(out, e)
		}
	}
	return out
}

func writeLLMList(w io.Writer, events []store.LLMEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No LLM calls recorded.")
		return
	}
	t := newTable([]string{"ID", "Time", "Purpose", "Model", "In", "Out", "Latency", ""}, 0, 4, 5, 6)
	for _, e := range events {
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format("Jan 02 15:04:05"),
			e.Purpose,
			truncate(e.Model, 32),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			(time.Duration(e.LatencyMs) * time.Millisecond).String(),
			mark(e.Success),
		)
	}
	fmt.Fprintln(w, t.String())
}

func writeLLMEvent(w io.Writer, e *store.LLMEvent) {
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format(time.DateTime)},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Purpose", e.Purpose},
		{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", (time.Duration(e.LatencyMs) * time.Millisecond).String()},
		{"Result", mark(e.Success)},
	}
	if cost := llm.LookupCost(e.Model); cost != nil {
		fields = append(fields, [2]string{"Cost", formatCost(cost.Cost(e.InputTokens, e.OutputTokens))})
	}
	if e.ErrorMessage != "" {
		fields = append(fields, [2]string{"Error", e.ErrorMessage})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-9s %s\n", f[0]+":", f[1])
	}
	section(w, "Request", e.RequestBody)
	section(w, "Response", e.ResponseBody)
}

func section(w io.Writer, title, body string) {
	fmt.Fprintf(w, "\n── %s %s\n", title, strings.Repeat("─", max(0, 56-len(title))))
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(w, body)
}

func writeLLMStats(w io.Writer, purposes []store.PurposeUsage, models []store.ModelUsage) {
	if len(purposes) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return
	}

	var calls, in, out int
	usage := newTable([]string{"Purpose", "Calls", "Input", "Output", "Avg latency"}, 1, 2, 3, 4)
	for _, p := range purposes {
		usage.Row(p.Purpose, strconv.Itoa(p.Calls), strconv.Itoa(p.InputTokens), strconv.Itoa(p.OutputTokens),
			(time.Duration(p.AvgLatencyMs) * time.Millisecond).String())
		calls += p.Calls
		in += p.InputTokens
		out += p.OutputTokens
	}
	usage.Row("total", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), "")
	fmt.Fprintln(w, usage.String())

	if len(models) == 0 {
		return
	}
	var total float64
	var unpriced []string
	costs := newTable([]string{"Model", "Calls", "Input", "Output", "Cost (USD)"}, 1, 2, 3, 4)
	for _, m := range models {
		price := "?"
		if c := llm.LookupCost(m.Model); c != nil {
			usd := c.Cost(m.InputTokens, m.OutputTokens)
			total += usd
			price = formatCost(usd)
		} else {
			unpriced = append(unpriced, m.Model)
		}
		costs.Row(truncate(m.Model, 32), strconv.Itoa(m.Calls), strconv.Itoa(m.InputTokens), strconv.Itoa(m.OutputTokens), price)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	costs.Row(label, "", "", "", formatCost(total))
	fmt.Fprintln(w)
	fmt.Fprintln(w, costs.String())
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for %s.\n", strings.Join(unpriced, ", "))
	}
}

// openStore opens the event store without the rest of the environment.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls made for this purpose, e.g. ask")
	llmListCmd.Flags().Duration("since", 0, "Only show calls newer than this, e.g. 24h")
	llmListCmd.Flags().Bool("json", false, "Print the calls as JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
