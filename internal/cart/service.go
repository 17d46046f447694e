package cart

import (
	"context"
	"encoding/json"
	"time"

	"maeva_back_end/internal/config"
	"maeva_back_end/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

// Key retourne la clé (et le canal pub/sub) du panier d'une session.
func Key(sessionID string) string {
	return "cart:" + sessionID
}

type Options struct {
	TTL         time.Duration
	EmptyPolicy string
}

// Service possède le panier de chaque session : chargement, mutation, recopie.
// Les erreurs de persistance sont journalisées et ne bloquent jamais la mutation.
type Service struct {
	store  Persister
	ttl    time.Duration
	policy string
	logger *logrus.Logger
}

func NewService(store Persister, opts Options, logger *logrus.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 30 * 24 * time.Hour
	}
	if opts.EmptyPolicy == "" {
		opts.EmptyPolicy = config.EmptyCartDelete
	}
	return &Service{store: store, ttl: opts.TTL, policy: opts.EmptyPolicy, logger: logger}
}

// Load lit le panier persisté une fois ; toute erreur donne un panier vide.
func (s *Service) Load(ctx context.Context, sessionID string) *Cart {
	data, err := s.store.Load(ctx, Key(sessionID))
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("⚠️ Lecture du panier impossible, panier vide")
		return New(nil)
	}
	if len(data) == 0 {
		return New(nil)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("⚠️ Panier persisté illisible, ignoré")
		return New(nil)
	}
	return New(lines)
}

func (s *Service) Get(ctx context.Context, sessionID string) models.Cart {
	return s.Load(ctx, sessionID).Snapshot()
}

func (s *Service) AddItem(ctx context.Context, sessionID string, line models.CartLine) models.Cart {
	c := s.Load(ctx, sessionID)
	added := c.Add(line)
	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"product_id": added.ProductID,
		"quantity":   added.Quantity,
	}).Debug("🛒 Article ajouté au panier")
	s.save(ctx, sessionID, c)
	return c.Snapshot()
}

// RemoveItem retourne le panier et le nombre de lignes supprimées.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, sel Selector) (models.Cart, int) {
	c := s.Load(ctx, sessionID)
	n := c.Remove(sel)
	if n > 0 {
		s.save(ctx, sessionID, c)
	}
	return c.Snapshot(), n
}

// UpdateQuantity ne borne pas la quantité : voir ValidateQuantity.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, sel Selector, quantity int) (models.Cart, int) {
	c := s.Load(ctx, sessionID)
	n := c.UpdateQuantity(sel, quantity)
	if n > 0 {
		s.save(ctx, sessionID, c)
	}
	return c.Snapshot(), n
}

// Clear vide le panier et supprime toujours la copie persistée.
func (s *Service) Clear(ctx context.Context, sessionID string) models.Cart {
	if err := s.store.Delete(ctx, Key(sessionID)); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("❌ Suppression du panier persisté échouée")
	}
	s.notify(ctx, sessionID, EventCleared)
	return New(nil).Snapshot()
}

func (s *Service) save(ctx context.Context, sessionID string, c *Cart) {
	key := Key(sessionID)
	log := s.logger.WithField("session_id", sessionID)

	if c.IsEmpty() {
		if s.policy == config.EmptyCartDelete {
			if err := s.store.Delete(ctx, key); err != nil {
				log.WithError(err).Error("❌ Suppression du panier persisté échouée")
			}
		}
		s.notify(ctx, sessionID, EventUpdated)
		return
	}

	data, err := json.Marshal(c.Lines())
	if err != nil {
		log.WithError(err).Error("❌ Sérialisation du panier échouée")
		return
	}
	if err := s.store.Save(ctx, key, data, s.ttl); err != nil {
		log.WithError(err).Error("❌ Sauvegarde du panier échouée")
	}
	s.notify(ctx, sessionID, EventUpdated)
}

func (s *Service) notify(ctx context.Context, sessionID, event string) {
	if err := s.store.Publish(ctx, Key(sessionID), event); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Debug("Notification panier non publiée")
	}
}
