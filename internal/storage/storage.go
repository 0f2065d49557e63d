package storage

import "ammCore/internal/model"

// Storage defines a sink for engine event records.
type Storage interface {
	PutEventBatch(events []model.EventRecord) error
}
