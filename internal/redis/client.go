package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dashboard:"

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// StateKey namespaces a client state key.
func StateKey(key string) string {
	return keyPrefix + key
}

// Get returns ("", false, nil) when the key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.Client.Get(ctx, StateKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// SetMany writes all pairs in one MULTI/EXEC transaction.
func (c *Client) SetMany(ctx context.Context, pairs map[string]string) error {
	_, err := c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range pairs {
			pipe.Set(ctx, StateKey(key), value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Client) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = StateKey(key)
	}
	if err := c.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
