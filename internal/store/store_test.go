package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"playback_events", "question_events", "llm_request_events", "lesson_progress", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestTablesFollowSchemas(t *testing.T) {
	ts, err := tables()
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if len(ts) != 4 {
		t.Fatalf("got %d tables, want 4", len(ts))
	}

	playback := ts[0]
	if playback.Name != playbackTable || playback.PrimaryKey[0].Name != "id" {
		t.Fatalf("first table = %s, pk %s", playback.Name, playback.PrimaryKey[0].Name)
	}
	var names []string
	for _, c := range playback.Columns {
		names = append(names, c.Name)
	}
	want := "id sequence timestamp session_id lesson_id kind step_index elapsed_ms"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("columns = %q, want %q", got, want)
	}
	if !playback.Columns[1].Unique {
		t.Error("sequence column is not unique")
	}
	if playback.Columns[2].Default != nil {
		t.Errorf("timestamp default = %v, want none", playback.Columns[2].Default)
	}
	if d := playback.Columns[6].Default; d != 0 {
		t.Errorf("step_index default = %v, want 0", d)
	}
}

func TestAutoMigrationCreatesIndexes(t *testing.T) {
	s := openTestStore(t)

	for _, index := range []string{
		"playback_events_lesson_id_sequence",
		"question_events_session_id_sequence",
		"llm_request_events_purpose_sequence",
	} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&name)
		if err != nil {
			t.Errorf("index %s: %v", index, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.ProgressRepo().SavePosition(ctx, "intro-calculus", 3); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	step, ok, err := s.ProgressRepo().Position(ctx, "intro-calculus")
	if err != nil || !ok || step != 3 {
		t.Fatalf("position = %d, %v, %v; want 3, true, nil", step, ok, err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendPlaybackEvent(ctx, PlaybackEventData{SessionID: "s1", LessonID: "l1", Kind: "play"}); err != nil {
		t.Fatalf("append playback: %v", err)
	}
	if err := repo.AppendQuestionEvent(ctx, QuestionEventData{SessionID: "s1", LessonID: "l1", Question: "why?", Success: true}); err != nil {
		t.Fatalf("append question: %v", err)
	}
	if err := repo.AppendPlaybackEvent(ctx, PlaybackEventData{SessionID: "s1", LessonID: "l1", Kind: "pause", ElapsedMs: 1200}); err != nil {
		t.Fatalf("append playback: %v", err)
	}

	playback, err := repo.QueryPlaybackEvents(ctx, "", QueryOpts{})
	if err != nil {
		t.Fatalf("query playback: %v", err)
	}
	questions, err := repo.QueryQuestionEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query questions: %v", err)
	}
	if len(playback) != 2 || len(questions) != 1 {
		t.Fatalf("got %d playback and %d question events", len(playback), len(questions))
	}
	if playback[0].Sequence != 3 || playback[1].Sequence != 1 || questions[0].Sequence != 2 {
		t.Errorf("sequences = %d, %d, %d; want 3, 1, 2",
			playback[0].Sequence, playback[1].Sequence, questions[0].Sequence)
	}
	if playback[0].Kind != "pause" || playback[0].ElapsedMs != 1200 {
		t.Errorf("newest playback event = %+v", playback[0].PlaybackEventData)
	}
	if !questions[0].Success || questions[0].Question != "why?" {
		t.Errorf("question event = %+v", questions[0].QuestionEventData)
	}
}

func TestQueryPlaybackEventsFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, lesson := range []string{"a", "b", "a", "a", "b"} {
		err := repo.AppendPlaybackEvent(ctx, PlaybackEventData{SessionID: "s", LessonID: lesson, Kind: "step-changed", StepIndex: i})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		lesson string
		opts   QueryOpts
		want   []int
	}{
		{"all", "", QueryOpts{}, []int{4, 3, 2, 1, 0}},
		{"lesson", "a", QueryOpts{}, []int{3, 2, 0}},
		{"limit", "a", QueryOpts{Limit: 2}, []int{3, 2}},
		{"after", "", QueryOpts{After: 3}, []int{4, 3}},
		{"before", "b", QueryOpts{Before: 5}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.QueryPlaybackEvents(ctx, tt.lesson, tt.opts)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			var got []int
			for _, e := range events {
				got = append(got, e.StepIndex)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("steps = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("steps = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "ask", InputTokens: 100, OutputTokens: 40, LatencyMs: 300, Success: true, RequestBody: "[user]\nwhy?", ResponseBody: `{"answer":"because"}`},
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "ask", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "export", InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true},
	}
	for i, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 2 || list[0].Model != "gpt-4o-mini" {
		t.Fatalf("unexpected list: %+v", list)
	}

	first := list[len(list)-1].ID - 1
	e, err := repo.GetLLMEvent(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.RequestBody != "[user]\nwhy?" || e.ResponseBody != `{"answer":"because"}` || !e.Success {
		t.Fatalf("unexpected event: %+v", e)
	}
	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("missing event = %+v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %+v", byPurpose)
	}
	ask := byPurpose[0]
	if ask.Purpose != "ask" || ask.Calls != 2 || ask.InputTokens != 150 || ask.OutputTokens != 50 || ask.AvgLatencyMs != 200 {
		t.Errorf("ask usage = %+v", ask)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-haiku-4-5-20251001" || byModel[0].Calls != 2 {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestProgressRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	if _, ok, err := repo.Position(ctx, "intro-calculus"); err != nil || ok {
		t.Fatalf("expected no position, got ok=%v err=%v", ok, err)
	}

	for _, step := range []int{2, 5} {
		if err := repo.SavePosition(ctx, "intro-calculus", step); err != nil {
			t.Fatalf("save %d: %v", step, err)
		}
	}
	step, ok, err := repo.Position(ctx, "intro-calculus")
	if err != nil || !ok || step != 5 {
		t.Fatalf("position = %d, %v, %v; want 5, true, nil", step, ok, err)
	}
}

func TestQueryLLMEventsByTime(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "openai", Model: "gpt-4o-mini", Purpose: "ask", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{From: before})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d events since %v, want 1", len(list), before)
	}
	if got := list[0].Timestamp; got.Before(before) || got.After(time.Now().Add(time.Second)) {
		t.Errorf("timestamp %v out of range", got)
	}

	list, err = repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d events from the future", len(list))
	}
}
