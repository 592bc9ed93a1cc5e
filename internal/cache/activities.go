// Package cache keeps the static activity catalog in Redis in front of the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dis-cadets/srt-bot/internal/attendance"
	"github.com/dis-cadets/srt-bot/internal/models"
)

const activitiesKey = "srt:activities"

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url must not be empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Store serves ListActivities and ActivityByID from Redis and delegates everything else.
// Redis failures are logged and fall back to the wrapped store.
type Store struct {
	attendance.Store
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func New(next attendance.Store, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{Store: next, rdb: rdb, ttl: ttl, log: log.Named("cache")}
}

func (s *Store) ListActivities(ctx context.Context) ([]models.Activity, error) {
	raw, err := s.rdb.Get(ctx, activitiesKey).Bytes()
	switch {
	case err == nil:
		var acts []models.Activity
		if err := json.Unmarshal(raw, &acts); err == nil {
			return acts, nil
		}
		s.log.Warn("corrupt activity cache entry, reloading")
	case !errors.Is(err, redis.Nil):
		s.log.Warn("activity cache read failed", zap.Error(err))
	}

	acts, err := s.Store.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(acts); err == nil {
		if err := s.rdb.Set(ctx, activitiesKey, raw, s.ttl).Err(); err != nil {
			s.log.Warn("activity cache write failed", zap.Error(err))
		}
	}
	return acts, nil
}

// ActivityByID consults the cached catalog first; a miss goes to the store.
func (s *Store) ActivityByID(ctx context.Context, id int64) (*models.Activity, error) {
	acts, err := s.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range acts {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return s.Store.ActivityByID(ctx, id)
}

func (s *Store) Invalidate(ctx context.Context) error {
	return s.rdb.Del(ctx, activitiesKey).Err()
}
