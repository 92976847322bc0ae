package db

import (
	"context"

	"umbrella-reminder/internal/domain/entity"
)

type ReminderGateway interface {
	// ReadAll returns every stored reminder keyed by ID. An empty map is a valid answer;
	// transport failures wrap model.ErrStoreUnavailable.
	ReadAll(ctx context.Context) (map[string]entity.Reminder, error)

	// Create stores a new reminder and returns it with its store-assigned ID.
	Create(ctx context.Context, reminder entity.Reminder) (*entity.Reminder, error)
}
