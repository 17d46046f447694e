// Package cache met en cache les listings du catalogue et compte les requêtes des limiteurs.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ProductsKey    = "products:all"
	CollectionsKey = "collections:all"
	BlogKey        = "blog:all"

	ListingTTL = 10 * time.Minute
)

// Store est le stockage clé/valeur sous-jacent (Redis en production).
// Get retourne (nil, nil) pour une clé absente.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Counter incrémente un compteur expirant après window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// JSON sérialise les valeurs en JSON ; une panne du cache n'empêche jamais la lecture.
type JSON struct {
	store  Store
	ttl    time.Duration
	logger *logrus.Logger
}

func NewJSON(store Store, ttl time.Duration, logger *logrus.Logger) *JSON {
	if ttl <= 0 {
		ttl = ListingTTL
	}
	return &JSON{store: store, ttl: ttl, logger: logger}
}

// GetOrLoad lit key dans le cache, sinon appelle load et mémorise le résultat.
func GetOrLoad[T any](ctx context.Context, c *JSON, key string, load func(context.Context) (T, error)) (T, error) {
	if data, err := c.store.Get(ctx, key); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("⚠️ Lecture du cache impossible")
	} else if len(data) > 0 {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.WithField("key", key).Warn("⚠️ Entrée de cache illisible, rechargement")
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("⚠️ Sérialisation pour le cache impossible")
		return value, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("⚠️ Écriture du cache impossible")
	}
	return value, nil
}

// Invalidate supprime les clés données.
func (c *JSON) Invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Del(ctx, keys...); err != nil {
		c.logger.WithError(err).WithField("keys", keys).Warn("⚠️ Invalidation du cache impossible")
	}
}
