package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrUnavailable means Redis itself failed, not that the key is gone.
	ErrUnavailable = errors.New("session store unavailable")
)

// Store maps a refresh token to the owning user's uuid, with the key TTL
// tracking the token's remaining validity window.
type Store struct {
	client redis.UniversalClient
}

func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, refreshToken, userUUID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshToken, userUUID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, refreshToken string) (string, error) {
	val, err := s.client.Get(ctx, refreshToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

// GetWithTTL reads the mapped uuid and the remaining TTL in one MULTI/EXEC
// so the key cannot expire between the two reads.
func (s *Store) GetWithTTL(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	pipe := s.client.TxPipeline()
	getCmd := pipe.Get(ctx, refreshToken)
	ttlCmd := pipe.TTL(ctx, refreshToken)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", 0, ErrNotFound
		}
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ttl := ttlCmd.Val()
	if ttl <= 0 {
		return "", 0, ErrNotFound
	}
	return getCmd.Val(), ttl, nil
}

func (s *Store) Delete(ctx context.Context, refreshToken string) error {
	deleted, err := s.client.Del(ctx, refreshToken).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Rotate replaces oldToken's mapping with newToken atomically: the new key
// is written with the old key's remaining TTL and the old key deleted in a
// single transaction, guarded by a WATCH on the old key. Of two concurrent
// rotations of the same old token at most one commits; the loser sees the
// key already gone and gets ErrNotFound.
func (s *Store) Rotate(ctx context.Context, oldToken, newToken string) (string, time.Duration, error) {
	var (
		userUUID string
		ttl      time.Duration
	)

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, oldToken).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		remaining, err := tx.TTL(ctx, oldToken).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if remaining <= 0 {
			return ErrNotFound
		}

		userUUID = val
		ttl = remaining

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, newToken, val, remaining)
			pipe.Del(ctx, oldToken)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, oldToken)
	switch {
	case err == nil:
		return userUUID, ttl, nil
	case errors.Is(err, redis.TxFailedErr):
		return "", 0, ErrNotFound
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return "", 0, err
	default:
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
