package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/starterdev/guardian-form-backend/internal/domain/errors"
)

// RedisStore persists sealed session payloads in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	sealer *Sealer
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed session store. A zero ttl means keys
// never expire.
func NewRedisStore(client *redis.Client, sealer *Sealer, prefix string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = "gf:session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		sealer: sealer,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisStore) key(formName string) string {
	return fmt.Sprintf("%s:%s", s.prefix, formName)
}

func (s *RedisStore) Load(ctx context.Context, formName string) (map[string]any, error) {
	sealed, err := s.client.Get(ctx, s.key(formName)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %q: %w", formName, err)
	}
	values, err := s.sealer.Open(sealed)
	if err != nil {
		// A payload that fails to open is unusable; treat it as absent
		// rather than poisoning the session.
		s.logger.Warn("discarding unreadable session payload",
			zap.String("form", formName), zap.Error(err))
		return nil, apperrors.ErrSessionNotFound
	}
	return values, nil
}

func (s *RedisStore) Save(ctx context.Context, formName string, values map[string]any) error {
	sealed, err := s.sealer.Seal(values)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(formName), sealed, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving session %q: %w", formName, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, formName string) error {
	if err := s.client.Del(ctx, s.key(formName)).Err(); err != nil {
		return fmt.Errorf("deleting session %q: %w", formName, err)
	}
	return nil
}
