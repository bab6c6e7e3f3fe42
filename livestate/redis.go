package livestate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/metrics"
)

// Streams mirrored in Redis.
const (
	StreamRobotTelemetry = "robot_telemetry"
	StreamPickerActivity = "picker_activity"
	StreamOrderEvents    = "order_events"
	StreamCartMovement   = "cart_movement"
)

var streams = []string{StreamRobotTelemetry, StreamPickerActivity, StreamOrderEvents, StreamCartMovement}

func latestKey(stream string) string {
	return fmt.Sprintf("amrdash:latest:%s", stream)
}

func stampKey(stream string) string {
	return fmt.Sprintf("amrdash:latest:%s:at", stream)
}

// setIfNewer writes a sample unless the stored one for the same entity is
// strictly newer. Timestamps are unix milliseconds.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[2], ARGV[1])
if cur and tonumber(cur) > tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// RedisStore keeps the newest sample per entity for each stream: one hash of
// JSON samples and one hash of their timestamps, both keyed by entity id.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Put records samples for stream, keeping whichever sample per entity is
// newest. It returns how many samples replaced the stored one.
func Put[S metrics.Sample](ctx context.Context, r *RedisStore, stream string, samples []S) (int, error) {
	keys := []string{latestKey(stream), stampKey(stream)}
	updated := 0
	for _, s := range samples {
		data, err := json.Marshal(s)
		if err != nil {
			return updated, err
		}
		n, err := setIfNewer.Run(ctx, r.client, keys, s.EntityID(), s.At().UnixMilli(), data).Int()
		if err != nil {
			return updated, fmt.Errorf("put %s %s: %w", stream, s.EntityID(), err)
		}
		updated += n
	}
	return updated, nil
}

// All returns every stored sample for stream in no particular order.
func All[S metrics.Sample](ctx context.Context, r *RedisStore, stream string) ([]S, error) {
	fields, err := r.client.HGetAll(ctx, latestKey(stream)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]S, 0, len(fields))
	for id, raw := range fields {
		var s S
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", stream, id, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Count reports how many entities have a stored sample in stream.
func (r *RedisStore) Count(ctx context.Context, stream string) (int, error) {
	n, err := r.client.HLen(ctx, latestKey(stream)).Result()
	return int(n), err
}

// FlushAll deletes every stream's sample and timestamp hashes.
func (r *RedisStore) FlushAll(ctx context.Context) error {
	keys := make([]string, 0, 2*len(streams))
	for _, s := range streams {
		keys = append(keys, latestKey(s), stampKey(s))
	}
	return r.client.Del(ctx, keys...).Err()
}
