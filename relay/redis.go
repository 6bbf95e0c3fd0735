package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const credentialKeyPrefix = "upstreamCred:"

// RedisCredentialStore shares captured upstream credentials between relay
// instances. Entries expire with the session duration so abandoned clients
// do not accumulate.
type RedisCredentialStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCredentialStore connects to Redis and verifies the connection.
func NewRedisCredentialStore(addr, password string, db int, ttl time.Duration) (*RedisCredentialStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCredentialStore{client: client, ttl: ttl}, nil
}

func (r *RedisCredentialStore) Get(ctx context.Context, clientID string) (string, error) {
	cookie, err := r.client.Get(ctx, credentialKeyPrefix+clientID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return cookie, nil
}

func (r *RedisCredentialStore) Set(ctx context.Context, clientID, cookie string) error {
	if err := r.client.Set(ctx, credentialKeyPrefix+clientID, cookie, r.ttl).Err(); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (r *RedisCredentialStore) Delete(ctx context.Context, clientID string) error {
	return r.client.Del(ctx, credentialKeyPrefix+clientID).Err()
}
