package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naijalogix/shipment-tracker/internal/api/metrics"
)

// dedupWindow is how long a processed event is remembered.
const dedupWindow = time.Hour

// DedupChecker remembers processed events as
// dedup:<tracking_number>:<status>:<unix seconds>.
type DedupChecker struct {
	rdb    redis.Cmdable
	window time.Duration
}

func NewDedupChecker(rdb redis.Cmdable) *DedupChecker {
	return &DedupChecker{rdb: rdb, window: dedupWindow}
}

func dedupKey(trackingNumber, status string, ts time.Time) string {
	return fmt.Sprintf("dedup:%s:%s:%d", trackingNumber, status, ts.Unix())
}

func (d *DedupChecker) IsDuplicate(ctx context.Context, trackingNumber, status string, ts time.Time) (bool, error) {
	found, err := d.rdb.Exists(ctx, dedupKey(trackingNumber, status, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup lookup %s: %w", trackingNumber, err)
	}
	result := "miss"
	if found > 0 {
		result = "hit"
	}
	metrics.EventsDedupTotal.WithLabelValues(result).Inc()
	return found > 0, nil
}

func (d *DedupChecker) Mark(ctx context.Context, trackingNumber, status string, ts time.Time) error {
	if err := d.rdb.Set(ctx, dedupKey(trackingNumber, status, ts), 1, d.window).Err(); err != nil {
		return fmt.Errorf("dedup mark %s: %w", trackingNumber, err)
	}
	return nil
}
