package services

import (
	"context"
	"sync"
	"time"
)

var _ Ledger = (*MemoryLedger)(nil)

type memoryRecord struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryLedger is an in-process Ledger for tests and local runs.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// SetClock replaces the ledger's time source.
func (l *MemoryLedger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *MemoryLedger) live(key string) (memoryRecord, bool) {
	rec, ok := l.records[key]
	if !ok {
		return rec, false
	}
	if !rec.expiresAt.IsZero() && !l.now().Before(rec.expiresAt) {
		delete(l.records, key)
		return rec, false
	}
	return rec, true
}

func (l *MemoryLedger) Get(_ context.Context, key string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.live(key)
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), rec.value...), nil
}

func (l *MemoryLedger) Put(_ context.Context, key string, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, _ := l.live(key)
	rec.value = append([]byte(nil), value...)
	l.records[key] = rec
	return nil
}

func (l *MemoryLedger) ExtendTTL(_ context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.live(key)
	if !ok {
		return ErrRecordNotFound
	}
	rec.expiresAt = l.now().Add(ttl)
	l.records[key] = rec
	return nil
}

// TTL returns the remaining lifetime of key, or zero when it has none.
func (l *MemoryLedger) TTL(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.live(key)
	if !ok || rec.expiresAt.IsZero() {
		return 0
	}
	return rec.expiresAt.Sub(l.now())
}

// Snapshot copies every live record, keyed by ledger key.
func (l *MemoryLedger) Snapshot() map[string][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string][]byte, len(l.records))
	for key := range l.records {
		if rec, ok := l.live(key); ok {
			out[key] = append([]byte(nil), rec.value...)
		}
	}
	return out
}
