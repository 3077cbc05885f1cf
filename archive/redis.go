package archive

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder stores each finished game as a hash and keeps a capped list of the most
// recent keys.
type RedisRecorder struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRecorder(rdb *redis.Client) *RedisRecorder {
	return &RedisRecorder{rdb: rdb, ttl: GameTTL}
}

func (r *RedisRecorder) Record(ctx context.Context, rec Record) error {
	key := GetGameKey(rec.RoomID, rec.FinishedAt)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldRoomID:     rec.RoomID,
		fieldName:       rec.Name,
		fieldWhite:      rec.White,
		fieldBlack:      rec.Black,
		fieldResult:     rec.Result,
		fieldMoves:      strings.Join(rec.Moves, " "),
		fieldFinishedAt: rec.FinishedAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, r.ttl)
	pipe.LPush(ctx, RecentKey, key)
	pipe.LTrim(ctx, RecentKey, 0, RecentLimit-1)

	_, err := pipe.Exec(ctx)
	return err
}

// Recent returns up to limit archived games, newest first. Keys whose hash has already
// expired are skipped.
func (r *RedisRecorder) Recent(ctx context.Context, limit int64) ([]Record, error) {
	keys, err := r.rdb.LRange(ctx, RecentKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		fields, err := r.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		records = append(records, recordFromHash(fields))
	}
	return records, nil
}

func recordFromHash(fields map[string]string) Record {
	rec := Record{
		RoomID: fields[fieldRoomID],
		Name:   fields[fieldName],
		White:  fields[fieldWhite],
		Black:  fields[fieldBlack],
		Result: fields[fieldResult],
		Moves:  strings.Fields(fields[fieldMoves]),
	}
	rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, fields[fieldFinishedAt])
	return rec
}
