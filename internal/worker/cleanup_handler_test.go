package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"

	"ongelEstate/internal/tasks"
)

type fakeDeleter struct {
	deleted []string
	failOn  map[string]bool
}

func (d *fakeDeleter) DeleteObject(_ context.Context, key string) error {
	if d.failOn[key] {
		return errors.New("object store unavailable")
	}
	d.deleted = append(d.deleted, key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStorageCleanup_DeletesAllKeys(t *testing.T) {
	deleter := &fakeDeleter{}
	h := NewStorageCleanupHandler(deleter, discardLogger())

	task, err := tasks.NewStorageCleanupTask([]string{"listings/a.jpg", "listings/b.jpg"}, "corr-1")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}

	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(deleter.deleted) != 2 {
		t.Fatalf("deleted %d keys, want 2", len(deleter.deleted))
	}
}

func TestStorageCleanup_PartialFailureIsRetryable(t *testing.T) {
	deleter := &fakeDeleter{failOn: map[string]bool{"listings/b.jpg": true}}
	h := NewStorageCleanupHandler(deleter, discardLogger())

	task, err := tasks.NewStorageCleanupTask([]string{"listings/a.jpg", "listings/b.jpg", "listings/c.jpg"}, "corr-2")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}

	// The error return makes asynq retry; the keys already deleted are
	// tolerated on the retry because deletion is idempotent.
	if err := h.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected an error for the failed key")
	}
	if len(deleter.deleted) != 2 {
		t.Fatalf("deleted %d keys, want 2", len(deleter.deleted))
	}
}

func TestStorageCleanup_MalformedPayload(t *testing.T) {
	h := NewStorageCleanupHandler(&fakeDeleter{}, discardLogger())
	task := asynq.NewTask(tasks.TypeStorageCleanup, []byte("{not json"))
	if err := h.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
