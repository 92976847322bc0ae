package ledger

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"umbrella-reminder/internal/domain/model"
)

// retainedMinutes bounds memory: claims for older minutes can no longer collide with a live tick
const retainedMinutes = 2

// MemoryLedger keeps claims in process memory, which is enough for a single scheduler instance
type MemoryLedger struct {
	mutex   sync.Mutex
	minutes map[string]map[string]struct{}
}

var _ DispatchLedger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		minutes: make(map[string]map[string]struct{}),
	}
}

func (ledger *MemoryLedger) Claim(_ context.Context, reminderID string, minuteKey string) (bool, error) {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	claimed, ok := ledger.minutes[minuteKey]
	if !ok {
		claimed = make(map[string]struct{})
		ledger.minutes[minuteKey] = claimed
		ledger.prune()

		// a minute older than the retained window may have held claims that were already
		// pruned, so it is reported as taken
		if _, retained := ledger.minutes[minuteKey]; !retained {
			return false, nil
		}
	}

	if _, taken := claimed[reminderID]; taken {
		return false, nil
	}
	claimed[reminderID] = struct{}{}

	return true, nil
}

// prune drops the oldest minutes; keys sort chronologically since they share one layout and zone
func (ledger *MemoryLedger) prune() {
	if len(ledger.minutes) <= retainedMinutes {
		return
	}

	keys := make([]string, 0, len(ledger.minutes))
	for key := range ledger.minutes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys[:len(keys)-retainedMinutes] {
		delete(ledger.minutes, key)
	}
}

func (ledger *MemoryLedger) Health() model.ComponentHealthStatus {
	ledger.mutex.Lock()
	defer ledger.mutex.Unlock()

	claims := 0
	for _, claimed := range ledger.minutes {
		claims += len(claimed)
	}

	return model.ComponentHealthStatus{
		Status: model.StatusUp,
		Details: map[string]string{
			"type":   "memory",
			"claims": strconv.Itoa(claims),
		},
	}
}
