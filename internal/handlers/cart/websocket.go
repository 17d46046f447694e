package cart

import (
	"context"
	"net/http"
	"time"

	cartsvc "maeva_back_end/internal/cart"
	"maeva_back_end/internal/middleware"
	"maeva_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const pingInterval = 30 * time.Second

// Subscriber diffuse les notifications publiées sur un canal.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, func() error)
}

// RedisSubscriber s'appuie sur le pub/sub Redis alimenté par cart.RedisPersister.
type RedisSubscriber struct {
	client *redis.Client
}

func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client}
}

func (s *RedisSubscriber) Subscribe(ctx context.Context, channel string) (<-chan string, func() error) {
	pubsub := s.client.Subscribe(ctx, channel)
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close
}

type cartMessage struct {
	Type    string       `json:"type"`
	Message string       `json:"message,omitempty"`
	Cart    *models.Cart `json:"cart,omitempty"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range h.origins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// WebSocket pousse le panier de la session à chaque modification (autre onglet inclus).
func (h *Handler) WebSocket(c *gin.Context) {
	if h.subscriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Synchronisation temps réel indisponible"})
		return
	}
	sid := middleware.SessionID(c)

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("❌ Erreur upgrade WebSocket")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, closeSub := h.subscriber.Subscribe(ctx, cartsvc.Key(sid))
	defer closeSub()

	// Détecte la fermeture côté client.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	snapshot := h.carts.Get(ctx, sid)
	if err := conn.WriteJSON(cartMessage{Type: "connected", Message: "Synchronisation panier activée", Cart: &snapshot}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			if payload != cartsvc.EventUpdated && payload != cartsvc.EventCleared {
				continue
			}
			snapshot := h.carts.Get(ctx, sid)
			if err := conn.WriteJSON(cartMessage{Type: "cart_updated", Cart: &snapshot}); err != nil {
				h.logger.WithError(err).Debug("envoi WebSocket interrompu")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
