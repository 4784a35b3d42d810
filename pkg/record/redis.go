package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces record keys.
const DefaultRedisPrefix = "docent:record"

// RedisStore keeps each record as a JSON string and indexes them in a sorted
// set scored by timestamp.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	owned  bool
}

// DialRedisStore connects to addr and checks the connection.
func DialRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("record: connect to redis at %s: %w", addr, err)
	}
	s := NewRedisStore(rdb, DefaultRedisPrefix)
	s.owned = true
	return s, nil
}

// NewRedisStore uses an existing client, which Close leaves open.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + ":" + id }
func (s *RedisStore) index() string { return s.prefix + "s" }

// Save stores r and adds it to the index.
func (s *RedisStore) Save(ctx context.Context, r *Record) error {
	if r.SessionID == "" {
		return ErrNoID
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("record: marshal: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(r.SessionID), data, 0)
	pipe.ZAdd(ctx, s.index(), redis.Z{Score: float64(r.Time().Unix()), Member: r.SessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record: save %s: %w", r.SessionID, err)
	}
	return nil
}

// Get loads the record for id.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("record: get %s: %w", id, err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("record: parse %s: %w", id, err)
	}
	return &r, nil
}

// List returns records newest first. Index entries whose record has expired
// or been deleted are skipped.
func (s *RedisStore) List(ctx context.Context, limit int) ([]*Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.rdb.ZRevRange(ctx, s.index(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}

	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Close closes the client if the store dialed it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.rdb.Close()
}

var _ Store = (*RedisStore)(nil)
