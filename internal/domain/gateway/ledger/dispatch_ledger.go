package ledger

import (
	"context"

	"umbrella-reminder/internal/domain/model"
)

// DispatchLedger records which reminders already had a dispatch attempt in a given minute.
type DispatchLedger interface {
	// Claim atomically marks (reminderID, minuteKey) as taken. It returns false when an earlier
	// claim for the same pair exists, in which case the caller must not dispatch.
	Claim(ctx context.Context, reminderID string, minuteKey string) (bool, error)

	Health() model.ComponentHealthStatus
}
