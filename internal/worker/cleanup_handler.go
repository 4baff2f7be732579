package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"ongelEstate/internal/tasks"
)

// ObjectDeleter is the slice of the storage client the worker needs.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, objectKey string) error
}

// StorageCleanupHandler removes orphaned bucket objects after a listing is
// deleted. The database rows are already gone; this is best-effort and
// idempotent, so a retry re-deleting keys is harmless.
type StorageCleanupHandler struct {
	storage ObjectDeleter
	logger  *slog.Logger
}

// NewStorageCleanupHandler constructs the handler.
func NewStorageCleanupHandler(storage ObjectDeleter, logger *slog.Logger) *StorageCleanupHandler {
	return &StorageCleanupHandler{storage: storage, logger: logger}
}

// ProcessTask implements asynq.Handler.
func (h *StorageCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.StorageCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal storage cleanup payload: %w", err)
	}

	logger := h.logger.With(slog.String("correlation_id", payload.CorrelationID))

	var errs []error
	for _, key := range payload.Keys {
		if err := h.storage.DeleteObject(ctx, key); err != nil {
			logger.Error("delete bucket object failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
			errs = append(errs, err)
			continue
		}
		logger.Info("bucket object removed", slog.String("key", key))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup %d of %d objects failed: %w", len(errs), len(payload.Keys), errors.Join(errs...))
	}
	return nil
}
