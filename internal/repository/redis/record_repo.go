package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NordCoder/Uptimer/internal/domain/record"
)

var _ record.Store = (*RecordRepoImpl)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Each collection is a single hash keyed "<prefix>:<collection>"; fields are record keys.
type RecordRepoImpl struct {
	client *redis.Client
	prefix string
}

// updateIfExists replaces a field only when it is already present.
var updateIfExists = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

func New(ctx context.Context, cfg Config) (*RecordRepoImpl, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "uptimer"
	}
	return &RecordRepoImpl{client: client, prefix: prefix}, nil
}

func (r *RecordRepoImpl) Close() error { return r.client.Close() }

func (r *RecordRepoImpl) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func (r *RecordRepoImpl) hash(collection string) string { return r.prefix + ":" + collection }

func (r *RecordRepoImpl) Create(ctx context.Context, collection, key string, value record.Record) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	ok, err := r.client.HSetNX(ctx, r.hash(collection), key, b).Result()
	if err != nil {
		return fmt.Errorf("hsetnx %s/%s: %w", collection, key, err)
	}
	if !ok {
		return record.ErrExists
	}
	return nil
}

func (r *RecordRepoImpl) Read(ctx context.Context, collection, key string) (record.Record, error) {
	b, err := r.client.HGet(ctx, r.hash(collection), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("hget %s/%s: %w", collection, key, err)
	}
	var v record.Record
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", collection, key, err)
	}
	return v, nil
}

func (r *RecordRepoImpl) Update(ctx context.Context, collection, key string, value record.Record) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	n, err := updateIfExists.Run(ctx, r.client, []string{r.hash(collection)}, key, b).Int()
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	if n == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (r *RecordRepoImpl) Delete(ctx context.Context, collection, key string) error {
	n, err := r.client.HDel(ctx, r.hash(collection), key).Result()
	if err != nil {
		return fmt.Errorf("hdel %s/%s: %w", collection, key, err)
	}
	if n == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (r *RecordRepoImpl) List(ctx context.Context, collection string) ([]string, error) {
	keys, err := r.client.HKeys(ctx, r.hash(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("hkeys %s: %w", collection, err)
	}
	sort.Strings(keys)
	return keys, nil
}
