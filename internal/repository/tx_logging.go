package repository

import (
	"context"
	"log"
	"time"
)

// LoggedTxManager records the duration and outcome of every transaction.
type LoggedTxManager struct {
	next TxManager
	logf func(format string, args ...any)
	now  func() time.Time
}

func NewLoggedTxManager(next TxManager) *LoggedTxManager {
	return &LoggedTxManager{next: next, logf: log.Printf, now: time.Now}
}

func (m *LoggedTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	start := m.now()
	err := m.next.WithinTx(ctx, fn)
	elapsed := m.now().Sub(start)
	if err != nil {
		m.logf("[DB] tx rolled back duration_ms=%.3f err=%v", ms(elapsed), err)
		return err
	}
	m.logf("[DB] tx committed duration_ms=%.3f", ms(elapsed))
	return nil
}

var _ TxManager = (*LoggedTxManager)(nil)
