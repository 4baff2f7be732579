package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants keep the queue producer and consumer in sync.
const (
	TypeStorageCleanup = "storage:cleanup"
)

// StorageCleanupPayload lists bucket keys left behind by a deleted listing.
type StorageCleanupPayload struct {
	Keys          []string `json:"keys"`
	CorrelationID string   `json:"correlation_id"`
}

// NewStorageCleanupTask builds a best-effort bucket cleanup task.
func NewStorageCleanupTask(keys []string, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(StorageCleanupPayload{
		Keys:          keys,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStorageCleanup, payload), nil
}
