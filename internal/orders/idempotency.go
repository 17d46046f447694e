package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingMarker = "pending"

// IdempotencyStore réserve une clé le temps de créer la commande puis mémorise son code de suivi.
type IdempotencyStore interface {
	// Reserve retourne reserved=true si la clé est nouvelle ; sinon le code déjà associé
	// (vide si la première création est encore en cours).
	Reserve(ctx context.Context, key string) (trackingCode string, reserved bool, err error)
	Complete(ctx context.Context, key, trackingCode string) error
	Release(ctx context.Context, key string) error
}

func idemKey(key string) string { return "idem:" + key }

type RedisIdempotency struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotency(client *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{client: client, ttl: ttl}
}

func (r *RedisIdempotency) Reserve(ctx context.Context, key string) (string, bool, error) {
	ok, err := r.client.SetNX(ctx, idemKey(key), pendingMarker, r.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	code, err := r.client.Get(ctx, idemKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expirée entre les deux appels
		return r.Reserve(ctx, key)
	}
	if err != nil {
		return "", false, err
	}
	if code == pendingMarker {
		return "", false, nil
	}
	return code, false, nil
}

func (r *RedisIdempotency) Complete(ctx context.Context, key, trackingCode string) error {
	return r.client.Set(ctx, idemKey(key), trackingCode, r.ttl).Err()
}

func (r *RedisIdempotency) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, idemKey(key)).Err()
}

// MemoryIdempotency sert en développement sans Redis et dans les tests.
type MemoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{keys: make(map[string]string)}
}

func (m *MemoryIdempotency) Reserve(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.keys[key]
	if !ok {
		m.keys[key] = pendingMarker
		return "", true, nil
	}
	if code == pendingMarker {
		return "", false, nil
	}
	return code, false, nil
}

func (m *MemoryIdempotency) Complete(_ context.Context, key, trackingCode string) error {
	m.mu.Lock()
	m.keys[key] = trackingCode
	m.mu.Unlock()
	return nil
}

func (m *MemoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.keys, key)
	m.mu.Unlock()
	return nil
}
