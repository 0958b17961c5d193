package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	cartKeyPrefix     = "cart:"
	checkoutKeyPrefix = "checkout:"

	// maxUpdateAttempts bounds optimistic retries when a concurrent writer
	// changes the cart between WATCH and EXEC.
	maxUpdateAttempts = 10
)

// releaseScript deletes the checkout guard only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds configuration for the Redis-backed cart store.
type RedisConfig struct {
	// TTL is how long an untouched cart survives.
	TTL time.Duration

	// CheckoutTTL bounds how long a crashed submission can hold the guard.
	CheckoutTTL time.Duration
}

// redisStore implements Store on Redis. Each cart is a JSON snapshot under
// one key; updates are compare-and-swap transactions on that key.
type redisStore struct {
	client redis.UniversalClient
	config RedisConfig
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client redis.UniversalClient, config RedisConfig, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		config: config,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// NewRedisClient parses url and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Get returns the session's cart, or an empty cart if none is stored.
func (s *redisStore) Get(ctx context.Context, sessionID string) (Cart, error) {
	data, err := s.client.Get(ctx, s.cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read cart")
		return Cart{}, fmt.Errorf("failed to read cart: %w", err)
	}

	return decodeCart(data)
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the cart first.
func (s *redisStore) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (Cart, error) {
	key := s.cartKey(sessionID)
	var result Cart

	txf := func(tx *redis.Tx) error {
		current := Cart{}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to read cart: %w", err)
		default:
			if current, err = decodeCart(data); err != nil {
				return err
			}
		}

		if err := fn(&current); err != nil {
			return err
		}

		var encoded []byte
		if !current.IsEmpty() {
			if encoded, err = json.Marshal(current); err != nil {
				return fmt.Errorf("failed to encode cart: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if encoded == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, encoded, s.config.TTL)
			}
			return nil
		})
		if err == nil {
			result = current
		}
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return Cart{}, err
		}
		s.logger.Debug().
			Str("session_id", sessionID).
			Int("attempt", attempt).
			Msg("concurrent cart update, retrying")
	}

	s.logger.Warn().Str("session_id", sessionID).Msg("cart update contention exhausted retries")
	return Cart{}, fmt.Errorf("failed to update cart after %d attempts: %w", maxUpdateAttempts, redis.TxFailedErr)
}

// Delete removes the session's cart.
func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.cartKey(sessionID)).Err(); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// AcquireCheckout takes the guard with SET NX; the key expires after
// CheckoutTTL so a crashed submission cannot hold it forever.
func (s *redisStore) AcquireCheckout(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	key := checkoutKeyPrefix + sessionID
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, s.config.CheckoutTTL).Result()
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to acquire checkout guard")
		return nil, fmt.Errorf("failed to acquire checkout guard: %w", err)
	}
	if !ok {
		return nil, ErrCheckoutLocked
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, s.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to release checkout guard")
			return fmt.Errorf("failed to release checkout guard: %w", err)
		}
		return nil
	}
	return release, nil
}

func (s *redisStore) cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

func decodeCart(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	return c, nil
}
