package engine

import (
	"context"
	"log/slog"
	"maps"

	"github.com/roach88/cypherlite/internal/queryir"
	"github.com/roach88/cypherlite/internal/store"
)

// binding maps pattern variables to storage row ids.
type binding map[string]int64

// extend returns a copy of b with vars bound to ids.
func (b binding) extend(vars []string, ids []int64) binding {
	next := make(binding, len(b)+len(vars))
	maps.Copy(next, b)
	for i, v := range vars {
		next[v] = ids[i]
	}
	return next
}

// run is the state of one query inside its transaction.
//
// The binding table starts with a single empty row; every statement runs
// once per row, in row order.
type run struct {
	tx       store.Tx
	log      *slog.Logger
	rows     []binding
	output   []map[string]any
	stats    queryir.Stats
	affected int
}

func newRun(tx store.Tx, log *slog.Logger) *run {
	return &run{
		tx:     tx,
		log:    log,
		rows:   []binding{{}},
		output: []map[string]any{},
	}
}

func (r *run) execute(ctx context.Context, stmts []queryir.Statement) error {
	for i := 0; i < len(stmts); {
		end := i + 1
		if g := stmts[i].Group; g != 0 {
			for end < len(stmts) && stmts[end].Group == g {
				end++
			}
			if err := r.group(ctx, i, stmts[i:end]); err != nil {
				return err
			}
		} else if err := r.statement(ctx, i, stmts[i]); err != nil {
			return err
		}
		i = end
	}
	return nil
}

// group runs a statement group to completion for each binding row in
// turn. first is the index of the group's first statement.
func (r *run) group(ctx context.Context, first int, stmts []queryir.Statement) error {
	rows := r.rows
	next := make([]binding, 0, len(rows))
	for _, row := range rows {
		r.rows = []binding{row}
		for k, st := range stmts {
			if err := r.statement(ctx, first+k, st); err != nil {
				return err
			}
		}
		next = append(next, r.rows...)
	}
	r.rows = next
	return nil
}

func (r *run) statement(ctx context.Context, i int, st queryir.Statement) error {
	r.log.Debug("statement",
		"index", i,
		"mode", st.Mode.String(),
		"sql", st.SQL,
		"bindings", len(r.rows),
	)

	switch st.Mode {
	case queryir.ModeExpand:
		return r.expand(ctx, i, st)
	case queryir.ModeInsert:
		return r.insert(ctx, i, st)
	case queryir.ModeExec:
		return r.exec(ctx, i, st)
	case queryir.ModeProject:
		return r.project(ctx, i, st)
	default:
		return internalError(i, "unknown statement mode %s", st.Mode)
	}
}

// args resolves statement arguments against one binding row.
func (r *run) args(idx int, st queryir.Statement, row binding) ([]any, error) {
	out := make([]any, len(st.Args))
	for i, a := range st.Args {
		if !a.IsVar() {
			out[i] = a.Value
			continue
		}
		id, ok := row[a.Var]
		if !ok {
			return nil, internalError(idx, "variable %q is not bound", a.Var)
		}
		out[i] = id
	}
	return out, nil
}

// expand replaces every row with one row per match. Rows without a match
// are dropped, or kept unchanged when the statement is optional.
func (r *run) expand(ctx context.Context, idx int, st queryir.Statement) error {
	next := make([]binding, 0, len(r.rows))
	for _, row := range r.rows {
		args, err := r.args(idx, st, row)
		if err != nil {
			return err
		}
		matches, err := r.tx.Query(ctx, st.SQL, args...)
		if err != nil {
			return storageError(ctx, idx, err)
		}
		if len(matches) == 0 && st.Optional {
			next = append(next, row)
			continue
		}
		for _, m := range matches {
			if len(m) < len(st.Binds) {
				return internalError(idx, "expected %d columns, got %d", len(st.Binds), len(m))
			}
			ids := make([]int64, len(st.Binds))
			for j := range st.Binds {
				id, err := toInt64(m[j])
				if err != nil {
					return internalError(idx, "column %d: %v", j, err)
				}
				ids[j] = id
			}
			next = append(next, row.extend(st.Binds, ids))
		}
	}
	r.rows = next
	return nil
}

// insert creates one storage row per binding row and binds its new id.
// Rows where SkipIfBound is already bound are left alone.
func (r *run) insert(ctx context.Context, idx int, st queryir.Statement) error {
	if len(st.Binds) != 1 {
		return internalError(idx, "insert must bind exactly one variable")
	}
	for i, row := range r.rows {
		if st.SkipIfBound != "" {
			if _, ok := row[st.SkipIfBound]; ok {
				continue
			}
		}
		args, err := r.args(idx, st, row)
		if err != nil {
			return err
		}
		res, err := r.tx.Exec(ctx, st.SQL, args...)
		if err != nil {
			return storageError(ctx, idx, err)
		}
		r.count(st, res.RowsAffected)
		r.rows[i] = row.extend(st.Binds, []int64{res.LastInsertID})
	}
	return nil
}

// exec runs an update or delete once per binding row.
func (r *run) exec(ctx context.Context, idx int, st queryir.Statement) error {
	for _, row := range r.rows {
		args, err := r.args(idx, st, row)
		if err != nil {
			return err
		}
		res, err := r.tx.Exec(ctx, st.SQL, args...)
		if err != nil {
			return storageError(ctx, idx, err)
		}
		r.count(st, res.RowsAffected)
	}
	return nil
}

func (r *run) count(st queryir.Statement, affected int64) {
	r.affected += int(affected)
	r.stats.Add(st.Effect, int(affected))
}

// project shapes the result rows of a RETURN.
func (r *run) project(ctx context.Context, idx int, st queryir.Statement) error {
	for _, row := range r.rows {
		if st.SQL == "" {
			out, err := shapeRow(st, nil)
			if err != nil {
				return internalError(idx, "%v", err)
			}
			r.output = append(r.output, out)
			continue
		}

		args, err := r.args(idx, st, row)
		if err != nil {
			return err
		}
		records, err := r.tx.Query(ctx, st.SQL, args...)
		if err != nil {
			return storageError(ctx, idx, err)
		}
		for _, rec := range records {
			out, err := shapeRow(st, rec)
			if err != nil {
				return internalError(idx, "%v", err)
			}
			r.output = append(r.output, out)
		}
	}
	return nil
}
