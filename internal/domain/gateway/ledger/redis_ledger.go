package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"umbrella-reminder/internal/domain/model"
	"umbrella-reminder/pkg/redis"
)

type RedisLedger struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

var _ DispatchLedger = (*RedisLedger)(nil)

// NewRedisLedger stores claims as namespace::reminderID::minute keys that expire after ttl
func NewRedisLedger(client *redis.Client, namespace string, ttl time.Duration) *RedisLedger {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLedger{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (ledger *RedisLedger) Claim(ctx context.Context, reminderID string, minuteKey string) (bool, error) {
	stored, err := ledger.client.SetNX(ctx, ledger.key(reminderID, minuteKey), 1, ledger.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to claim dispatch for reminder %s: %w", reminderID, err)
	}
	return stored, nil
}

func (ledger *RedisLedger) key(reminderID string, minuteKey string) string {
	return ledger.namespace + "::" + reminderID + "::" + minuteKey
}

func (ledger *RedisLedger) Health() model.ComponentHealthStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	details := map[string]string{
		"type": "redis",
		"addr": ledger.client.GetConfig().Addr(),
	}

	if err := ledger.client.Ping(ctx); err != nil {
		details["message"] = err.Error()
		return model.ComponentHealthStatus{Status: model.StatusDown, Details: details}
	}

	stats := ledger.client.Stats()
	details["total_conns"] = strconv.FormatUint(uint64(stats.TotalConns), 10)
	details["idle_conns"] = strconv.FormatUint(uint64(stats.IdleConns), 10)

	return model.ComponentHealthStatus{Status: model.StatusUp, Details: details}
}
