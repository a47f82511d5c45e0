package storage

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/dlog-universe/dlogd/internal/app/domain/ledger"
)

// JSONLJournal decorates a JournalStore with an append-only JSONL file.
// Write errors are surfaced to the caller but the in-memory append has
// already happened; the file is display/audit material, not recovery state.
type JSONLJournal struct {
	inner JournalStore

	mu   sync.Mutex
	file *os.File
}

var _ JournalStore = (*JSONLJournal)(nil)

// NewJSONLJournal opens (or creates) the journal file in append mode.
// An empty path returns the inner store untouched.
func NewJSONLJournal(inner JournalStore, path string) (JournalStore, error) {
	if path == "" {
		return inner, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &JSONLJournal{inner: inner, file: f}, nil
}

func (j *JSONLJournal) AppendJournal(ctx context.Context, entry ledger.JournalEntry) error {
	if err := j.inner.AppendJournal(ctx, entry); err != nil {
		return err
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.file.Write(append(b, '\n'))
	return err
}

func (j *JSONLJournal) ListJournal(ctx context.Context, limit int) ([]ledger.JournalEntry, error) {
	return j.inner.ListJournal(ctx, limit)
}

// Close releases the underlying file.
func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
