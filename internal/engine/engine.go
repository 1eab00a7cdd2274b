package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cypherlite/internal/cypher"
	"github.com/roach88/cypherlite/internal/ir"
	"github.com/roach88/cypherlite/internal/queryir"
	"github.com/roach88/cypherlite/internal/querysql"
	"github.com/roach88/cypherlite/internal/store"
)

// Result is the outcome of a successful query.
//
// Count is len(Rows) when the query has a RETURN clause, otherwise the
// number of storage rows the query created, changed or deleted.
type Result struct {
	Rows    []map[string]any `json:"rows"`
	Columns []string         `json:"columns,omitempty"`
	Count   int              `json:"count"`
	TimeMS  float64          `json:"time_ms"`
	Stats   queryir.Stats    `json:"stats"`
	TraceID string           `json:"trace_id"`
}

// Executor runs query text against storage.
//
// An Executor holds no storage state: the handle is passed to every
// Execute call, and each call runs inside exactly one transaction.
//
// Thread-safety: Execute is safe for concurrent use; serialization of
// writers is the store's job (single connection).
type Executor struct {
	clock    Clock
	traceGen TraceIDGenerator
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock sets the clock used to measure TimeMS.
func WithClock(c Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithTraceIDGenerator sets the trace id source.
func WithTraceIDGenerator(g TraceIDGenerator) Option {
	return func(e *Executor) {
		e.traceGen = g
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// New creates an Executor with a system clock, UUIDv7 trace ids and the
// default logger, overridden by opts.
func New(opts ...Option) *Executor {
	e := &Executor{
		clock:    SystemClock{},
		traceGen: UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DiscardLogger returns a logger that drops every record. Used by tests
// and by callers that want a silent executor.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Translate parses and translates text without touching storage.
// Errors are the same *cypher.ParseError and *querysql.TranslationError
// values Execute returns.
func (e *Executor) Translate(text string, params map[string]any) (*queryir.TranslationResult, error) {
	q, err := cypher.Parse(text)
	if err != nil {
		return nil, err
	}
	return querysql.Translate(q, params)
}

// Execute parses, translates and runs one query.
//
// Stages: parsing, translating, executing, then committed or rolled back.
// A *cypher.ParseError or *querysql.TranslationError is returned before
// storage is touched (Begin is never called). Any storage failure rolls
// the transaction back and returns an *ExecutionError. Nothing is retried.
func (e *Executor) Execute(ctx context.Context, st store.Beginner, text string, params map[string]any) (*Result, error) {
	start := e.clock.Now()
	traceID := e.traceGen.Generate()
	log := e.logger.With("trace_id", traceID, "query_hash", ir.QueryTextHash(text))

	tr, err := e.Translate(text, params)
	if err != nil {
		log.Debug("query rejected", "error", err)
		return nil, err
	}

	fingerprint, err := tr.Fingerprint()
	if err != nil {
		log.Warn("fingerprint failed", "error", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, storageError(ctx, -1, err)
	}

	tx, err := st.Begin(ctx)
	if err != nil {
		return nil, storageError(ctx, -1, err)
	}

	r := newRun(tx, log)
	if err := r.execute(ctx, tr.Statements); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn("rollback failed", "error", rbErr)
		}
		log.Info("query rolled back", "error", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Debug("rollback after failed commit", "error", rbErr)
		}
		return nil, storageError(ctx, -1, fmt.Errorf("commit: %w", err))
	}

	res := &Result{
		Rows:    r.output,
		Columns: tr.Columns,
		Count:   r.affected,
		Stats:   r.stats,
		TraceID: traceID,
	}
	if tr.HasReturn {
		res.Count = len(r.output)
	}
	res.TimeMS = elapsedMS(e.clock.Now().Sub(start))

	log.Info("query executed",
		"duration_ms", res.TimeMS,
		"rows", res.Count,
		"statements", len(tr.Statements),
		"fingerprint", fingerprint,
	)
	return res, nil
}
