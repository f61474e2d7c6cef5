package overlay

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suiboard/suiboard-backend/internal/board/metrics"
	"github.com/suiboard/suiboard-backend/internal/board/types"
	"github.com/suiboard/suiboard-backend/pkg/logging"
)

// RedisStore keeps each account's overlay in a redis hash. Add uses HIncrBy,
// so concurrent finalizations for one account cannot lose updates.
type RedisStore struct {
	client *redis.Client
	logger logging.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(redisURL string, logger logging.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to redis overlay store")
	return &RedisStore{client: client, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, account types.Account) types.ReservationOverlay {
	var overlay types.ReservationOverlay
	if account == "" {
		return overlay
	}
	values, err := s.client.HGetAll(ctx, storageKey(account)).Result()
	if err != nil {
		s.logger.Warnf("Overlay read failed for %s, using zero overlay: %v", account, err)
		return types.ReservationOverlay{}
	}
	overlay.Staked = parseField(values[string(FieldStaked)])
	overlay.Listed = parseField(values[string(FieldListed)])
	overlay.Voted = parseField(values[string(FieldVoted)])
	return overlay
}

func (s *RedisStore) Add(ctx context.Context, account types.Account, field Field, amount uint64) {
	if account == "" || amount == 0 {
		return
	}
	err := s.client.HIncrBy(ctx, storageKey(account), string(field), int64(amount)).Err()
	if err != nil {
		metrics.OverlayWritesTotal.WithLabelValues("dropped").Inc()
		s.logger.Warnf("Overlay increment dropped for %s (%s += %d): %v", account, field, amount, err)
		return
	}
	metrics.OverlayWritesTotal.WithLabelValues("success").Inc()
}

func (s *RedisStore) Set(ctx context.Context, account types.Account, overlay types.ReservationOverlay) {
	if account == "" {
		return
	}
	err := s.client.HSet(ctx, storageKey(account),
		string(FieldStaked), overlay.Staked,
		string(FieldListed), overlay.Listed,
		string(FieldVoted), overlay.Voted,
	).Err()
	if err != nil {
		metrics.OverlayWritesTotal.WithLabelValues("dropped").Inc()
		s.logger.Warnf("Overlay write dropped for %s: %v", account, err)
		return
	}
	metrics.OverlayWritesTotal.WithLabelValues("success").Inc()
}

func parseField(s string) uint64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
