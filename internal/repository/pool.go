package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a pgx pool with query logging attached to every connection.
func NewPool(ctx context.Context, dsn string, slowQuery time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	cfg.ConnConfig.Tracer = NewQueryLogger(slowQuery)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// QueryLogger is a pgx tracer logging failed and slow statements.
type QueryLogger struct {
	slow time.Duration
	logf func(format string, args ...any)
	now  func() time.Time
}

func NewQueryLogger(slow time.Duration) *QueryLogger {
	return &QueryLogger{slow: slow, logf: log.Printf, now: time.Now}
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

func (l *QueryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: l.now()})
}

func (l *QueryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := l.now().Sub(start.at)
	switch {
	case data.Err != nil && data.Err != pgx.ErrNoRows:
		l.logf("[DB] query failed duration_ms=%.3f sql=%q err=%v", ms(elapsed), compact(start.sql), data.Err)
	case l.slow > 0 && elapsed >= l.slow:
		l.logf("[DB] slow query duration_ms=%.3f sql=%q rows=%d", ms(elapsed), compact(start.sql), data.CommandTag.RowsAffected())
	}
}

var _ pgx.QueryTracer = (*QueryLogger)(nil)

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func compact(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
