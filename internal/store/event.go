package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sqlite builds statements in the SQLite dialect.
var sqlite = entsql.Dialect(dialect.SQLite)

// sequenceCounter hands out the monotonic sequence shared by every event
// table, so a question can be ordered against the playback events around
// it. It stays in raw SQL since ent has no atomic counters. The mutex
// serializes within the process and RETURNING makes the increment atomic
// in the database.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

func newSequenceCounter(ctx context.Context, drv *entsql.Driver) (*sequenceCounter, error) {
	err := drv.Exec(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	if err := drv.Exec(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`, []any{}, nil); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{drv: drv}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := scanRows(ctx, sc.drv, rawQuery(`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`),
		func(rows *entsql.Rows) error { return rows.Scan(&seq) })
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	if seq == 0 {
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	return seq, nil
}

// rawQuery adapts a literal statement to entsql.Querier.
type rawQuery string

func (q rawQuery) Query() (string, []any) { return string(q), []any{} }

// eventRepo implements EventRepo on the ent SQL driver and the sequence
// counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// filter adds the sequence and time bounds of o to sel, newest first.
func (o QueryOpts) filter(sel *entsql.Selector) *entsql.Selector {
	if o.After > 0 {
		sel.Where(entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		sel.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", o.From.UTC()))
	}
	if !o.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", o.To.UTC()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if o.Limit > 0 {
		sel.Limit(o.Limit)
	}
	return sel
}

// exec runs a statement built by one of the ent builders.
func exec(ctx context.Context, drv *entsql.Driver, b entsql.Querier) error {
	query, args := b.Query()
	return drv.Exec(ctx, query, args, nil)
}

// scanRows runs b and calls scan once per returned row.
func scanRows(ctx context.Context, drv *entsql.Driver, b entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := b.Query()
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
