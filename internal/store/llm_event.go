package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	insert := sqlite.Insert(llmTable).
		Columns("sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
			"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body").
		Values(seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.InputTokens,
			data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err := exec(ctx, r.drv, insert); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

var llmColumns = []string{"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body"}

func scanLLMEvent(rows *entsql.Rows) (LLMEvent, error) {
	var e LLMEvent
	err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens,
		&e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody)
	return e, err
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := sqlite.Select(llmColumns...).From(entsql.Table(llmTable))

	var events []LLMEvent
	err := scanRows(ctx, r.drv, opts.filter(sel), func(rows *entsql.Rows) error {
		e, err := scanLLMEvent(rows)
		events = append(events, e)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	sel := sqlite.Select(llmColumns...).From(entsql.Table(llmTable)).Where(entsql.EQ("id", id))

	var found *LLMEvent
	err := scanRows(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		e, err := scanLLMEvent(rows)
		found = &e
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return found, nil
}

// usage selects the per-group call count and token sums, busiest first.
func usage(group string, extra ...string) *entsql.Selector {
	cols := append([]string{
		group,
		entsql.Count("*"),
		"COALESCE(SUM(`input_tokens`), 0)",
		"COALESCE(SUM(`output_tokens`), 0)",
	}, extra...)
	return sqlite.Select(cols...).
		From(entsql.Table(llmTable)).
		GroupBy(group).
		OrderBy(entsql.Desc(entsql.Count("*")), group)
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var stats []PurposeUsage
	sel := usage("purpose", "CAST(COALESCE(AVG(`latency_ms`), 0) AS INTEGER)")
	err := scanRows(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return err
		}
		stats = append(stats, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return stats, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var stats []ModelUsage
	err := scanRows(ctx, r.drv, usage("model"), func(rows *entsql.Rows) error {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return err
		}
		stats = append(stats, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return stats, nil
}
