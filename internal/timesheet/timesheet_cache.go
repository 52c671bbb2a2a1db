package timesheet

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-attendance/internal/shared/clock"

	"github.com/redis/go-redis/v9"
)

const (
	cacheTTL      = 24 * time.Hour
	globalGenKey  = "timesheet:gen:calendar"
	scanBatchSize = 500
)

func CacheKey(employeeID string, date time.Time) string {
	return "timesheet:" + employeeID + ":" + date.Format(clock.DateLayout)
}

func genKey(employeeID string) string {
	return "timesheet:gen:" + employeeID
}

// Cache stores resolved days in Redis. A nil Cache or nil client turns every
// call into a no-op.
//
// Writers take a Stamp before reading the ledger and hand it back to Store;
// an invalidation in between bumps a generation counter and the write is
// skipped, so a slow reader cannot resurrect a stale day.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCache(rdb redis.Cmdable) *Cache {
	return &Cache{rdb: rdb, ttl: cacheTTL}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *Cache) Stamp(ctx context.Context, employeeID string) (string, error) {
	if !c.enabled() {
		return "", nil
	}
	vals, err := c.rdb.MGet(ctx, genKey(employeeID), globalGenKey).Result()
	if err != nil {
		return "", err
	}
	stamp := ""
	for _, v := range vals {
		s, _ := v.(string)
		stamp += s + "/"
	}
	return stamp, nil
}

// Load returns the cached records among dates, keyed by YYYY-MM-DD.
func (c *Cache) Load(ctx context.Context, employeeID string, dates []time.Time) (map[string]DailyRecord, error) {
	out := make(map[string]DailyRecord, len(dates))
	if !c.enabled() || len(dates) == 0 {
		return out, nil
	}
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = CacheKey(employeeID, d)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return out, err
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec DailyRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		out[dates[i].Format(clock.DateLayout)] = rec
	}
	return out, nil
}

// Store writes recs unless the employee's days were invalidated after stamp
// was taken. It reports whether anything was written.
func (c *Cache) Store(ctx context.Context, employeeID, stamp string, recs []DailyRecord) (bool, error) {
	if !c.enabled() || len(recs) == 0 {
		return false, nil
	}
	current, err := c.Stamp(ctx, employeeID)
	if err != nil {
		return false, err
	}
	if current != stamp {
		return false, nil
	}
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return false, err
		}
		if err := c.rdb.Set(ctx, CacheKey(employeeID, rec.Date), data, c.ttl).Err(); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (c *Cache) InvalidateDay(ctx context.Context, employeeID string, date time.Time) error {
	if !c.enabled() {
		return nil
	}
	if err := c.rdb.Incr(ctx, genKey(employeeID)).Err(); err != nil {
		return err
	}
	return c.rdb.Del(ctx, CacheKey(employeeID, date)).Err()
}

// InvalidateEmployee drops every cached day of one employee.
func (c *Cache) InvalidateEmployee(ctx context.Context, employeeID string) error {
	if !c.enabled() {
		return nil
	}
	if err := c.rdb.Incr(ctx, genKey(employeeID)).Err(); err != nil {
		return err
	}
	return c.deleteMatching(ctx, "timesheet:"+employeeID+":*")
}

// InvalidateDate drops the day of every employee.
func (c *Cache) InvalidateDate(ctx context.Context, date time.Time) error {
	if !c.enabled() {
		return nil
	}
	if err := c.rdb.Incr(ctx, globalGenKey).Err(); err != nil {
		return err
	}
	return c.deleteMatching(ctx, "timesheet:*:"+date.Format(clock.DateLayout))
}

func (c *Cache) deleteMatching(ctx context.Context, match string) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, match, scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
