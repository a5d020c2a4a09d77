package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/storefront-console/internal/view"
)

const defaultPrefix = "console:flash:"

type redisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "console:flash:".
func NewRedisStore(ctx context.Context, redisURL, prefix string, ttl time.Duration) (Store, error) {
	const op = "flash.NewRedisStore"

	if prefix == "" {
		prefix = defaultPrefix
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &redisStore{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (s *redisStore) key(id string) string { return s.prefix + id }

// Храним JSON сообщения строкой с EX.
func (s *redisStore) Put(ctx context.Context, id string, a view.Alert) error {
	const op = "flash.redisStore.Put"

	if id == "" {
		return ErrEmptyID
	}

	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, s.key(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Pop читает и удаляет ключ одной командой GETDEL.
func (s *redisStore) Pop(ctx context.Context, id string) (*view.Alert, error) {
	const op = "flash.redisStore.Pop"

	if id == "" {
		return nil, ErrEmptyID
	}

	b, err := s.rdb.GetDel(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var a view.Alert
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	return &a, nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }
