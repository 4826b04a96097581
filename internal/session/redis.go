package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spectrum-health/clinicdash/internal/clinic"
)

// RedisStore shares sessions across dashboard instances. The triple is one
// JSON value under one key, so a reader always sees a fully-written session
// or nothing.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

func NewRedisStore(rdb *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		prefix: "sess:",
		logger: logger,
		now:    time.Now,
	}
}

func (s *RedisStore) Set(ctx context.Context, id, token string, user clinic.User, ttl time.Duration) {
	sess := Session{
		Token:     token,
		User:      user,
		ExpiresAt: s.now().Add(ttl),
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		s.logger.Error("marshal session", "err", err)
		return
	}
	if err := s.rdb.Set(ctx, s.prefix+id, raw, ttl).Err(); err != nil {
		s.logger.Error("store session", "err", err)
	}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, bool) {
	raw, err := s.rdb.Get(ctx, s.prefix+id).Bytes()
	if err == redis.Nil {
		return Session{}, false
	}
	if err != nil {
		s.logger.Warn("read session", "err", err)
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// Unparsable state cannot be trusted; drop it.
		s.Clear(ctx, id)
		return Session{}, false
	}
	if sess.expired(s.now()) {
		// The key TTL normally handles this, but the expiry field is
		// authoritative.
		s.Clear(ctx, id)
		return Session{}, false
	}
	return sess, true
}

func (s *RedisStore) Clear(ctx context.Context, id string) bool {
	n, err := s.rdb.Del(ctx, s.prefix+id).Result()
	if err != nil {
		s.logger.Warn("clear session", "err", err)
		return false
	}
	return n > 0
}
