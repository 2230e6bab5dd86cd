package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "companion:session:"

// Store keeps session -> account links in Redis so they survive restarts.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a Store; ttl <= 0 keeps links forever.
func New(addr, password string, db int, ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0 // go-redis reads -1 as KEEPTTL
	}
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *Store) Link(ctx context.Context, sessionID, userID string) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), userID, s.ttl).Err()
}

func (s *Store) Lookup(ctx context.Context, sessionID string) (string, error) {
	v, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Unlink(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
