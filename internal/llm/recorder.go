package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/store"
)

type purposeKey struct{}

// WithPurpose labels requests made with ctx, e.g. "ask". The label ends up
// on the stored LLM event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}

type recording struct {
	inner  Provider
	vendor string
	events store.EventRepo
	log    *logger.Logger
	now    func() time.Time
}

// WithLogging stores every request as an LLM event and logs failures.
// events and log may be nil.
func WithLogging(p Provider, vendor string, events store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &recording{inner: p, vendor: vendor, events: events, log: log.With("component", "llm"), now: time.Now}
}

func (r *recording) ModelID() string { return r.inner.ModelID() }

func (r *recording) Generate(ctx context.Context, req Request) (*Response, error) {
	start := r.now()
	resp, err := r.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    r.vendor,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   r.now().Sub(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		r.log.Warn("llm request failed", "purpose", ev.Purpose, "model", ev.Model, "latency_ms", ev.LatencyMs, "err", err)
	} else {
		r.log.Debug("llm request", "purpose", ev.Purpose, "model", ev.Model, "latency_ms", ev.LatencyMs,
			"tokens", resp.Usage.Total())
	}

	if r.events != nil {
		// The answer still goes back to the caller when the log write fails.
		if serr := r.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); serr != nil {
			r.log.Warn("record llm event", "err", serr)
		}
	}
	return resp, err
}

// transcript renders a request for `lessonplay llm view`.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.MarshalIndent(req.Schema.Definition, "", "  "); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
