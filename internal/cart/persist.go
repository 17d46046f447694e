package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Persister est le stockage clé/valeur où le panier est recopié après chaque mutation.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Publish(ctx context.Context, channel, message string) error
}

// RedisPersister stocke le panier sous forme JSON dans Redis.
type RedisPersister struct {
	client *redis.Client
}

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

// Load retourne (nil, nil) si la clé n'existe pas.
func (p *RedisPersister) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (p *RedisPersister) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.client.Set(ctx, key, data, ttl).Err()
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	return p.client.Del(ctx, key).Err()
}

func (p *RedisPersister) Publish(ctx context.Context, channel, message string) error {
	return p.client.Publish(ctx, channel, message).Err()
}
