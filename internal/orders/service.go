// Package orders crée, stocke et suit les commandes passées sur la boutique.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maeva_back_end/internal/checkout"
	"maeva_back_end/internal/coupon"
	"maeva_back_end/internal/events"
	"maeva_back_end/internal/models"
	"maeva_back_end/internal/money"
	"maeva_back_end/internal/shipping"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Notifier prévient le client par e-mail ; les erreurs sont seulement journalisées.
type Notifier interface {
	OrderCreated(ctx context.Context, o models.Order) error
	StatusChanged(ctx context.Context, o models.Order) error
}

type noopNotifier struct{}

func (noopNotifier) OrderCreated(context.Context, models.Order) error  { return nil }
func (noopNotifier) StatusChanged(context.Context, models.Order) error { return nil }

type Options struct {
	Publisher events.Publisher
	Notifier  Notifier
	// Tarifs de référence : par défaut la grille standard et aucun code promo.
	Shipping *shipping.Catalog
	Coupons  coupon.Validator
	// Async exécute les effets de bord (e-mail, événements) ; par défaut une goroutine.
	Async func(func())
	Now   func() time.Time
}

type Service struct {
	repo      Repository
	idem      IdempotencyStore
	publisher events.Publisher
	notifier  Notifier
	shipping  *shipping.Catalog
	coupons   coupon.Validator
	logger    *logrus.Logger
	async     func(func())
	now       func() time.Time
}

func NewService(repo Repository, idem IdempotencyStore, logger *logrus.Logger, opts Options) *Service {
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	if opts.Shipping == nil {
		opts.Shipping = shipping.NewCatalog()
	}
	if opts.Coupons == nil {
		opts.Coupons = coupon.NewStatic(nil)
	}
	if opts.Async == nil {
		opts.Async = func(f func()) { go f() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:      repo,
		idem:      idem,
		publisher: opts.Publisher,
		notifier:  opts.Notifier,
		shipping:  opts.Shipping,
		coupons:   opts.Coupons,
		logger:    logger,
		async:     opts.Async,
		now:       opts.Now,
	}
}

// ValidateRequest vérifie la cohérence d'une requête de création : articles,
// client et montants recalculés à partir des articles.
func ValidateRequest(req models.OrderRequest) error {
	if len(req.Items) == 0 {
		return &RequestError{Message: "La commande ne contient aucun article"}
	}
	subtotal := decimal.Zero
	for _, it := range req.Items {
		if it.ProductID == "" {
			return &RequestError{Message: "Article sans identifiant produit"}
		}
		if it.Quantity <= 0 {
			return &RequestError{Message: "Quantité invalide"}
		}
		if it.Price < 0 {
			return &RequestError{Message: "Prix invalide"}
		}
		subtotal = subtotal.Add(money.LineTotal(it.Price, it.Quantity))
	}

	var verr *checkout.ValidationError
	if err := checkout.ValidateCustomer(req.Customer); errors.As(err, &verr) {
		return &RequestError{Message: "Informations client incomplètes"}
	}

	p := req.Payment
	if p.Discount < 0 || p.ShippingCost < 0 || req.Shipping.Cost < 0 {
		return &RequestError{Message: "Montants invalides"}
	}
	if !money.Equal(p.Subtotal, money.Float(subtotal)) {
		return &RequestError{Message: "Le sous-total ne correspond pas aux articles"}
	}
	if !money.Equal(p.ShippingCost, req.Shipping.Cost) {
		return &RequestError{Message: "Frais de livraison incohérents"}
	}
	total := subtotal.Add(decimal.NewFromFloat(p.ShippingCost)).Sub(decimal.NewFromFloat(p.Discount))
	if total.IsNegative() {
		total = decimal.Zero
	}
	if !money.Equal(p.Total, money.Float(total)) {
		return &RequestError{Message: "Le total ne correspond pas au détail du paiement"}
	}
	return nil
}

// sameRequest indique si la commande enregistrée correspond à la requête rejouée.
func sameRequest(o *models.Order, req models.OrderRequest) bool {
	if len(o.Items) != len(req.Items) ||
		!strings.EqualFold(strings.TrimSpace(o.Customer.Email), strings.TrimSpace(req.Customer.Email)) ||
		!strings.EqualFold(o.CouponCode, req.CouponCode) {
		return false
	}
	for i, it := range req.Items {
		got := o.Items[i]
		if got.ProductID != it.ProductID || got.Quantity != it.Quantity || !money.Equal(got.Price, it.Price) ||
			got.Size != it.Size || got.Color != it.Color {
			return false
		}
	}
	a, b := o.Payment, req.Payment
	return money.Equal(a.Subtotal, b.Subtotal) && money.Equal(a.Discount, b.Discount) &&
		money.Equal(a.ShippingCost, b.ShippingCost) && money.Equal(a.Total, b.Total)
}

// checkPricing compare les frais de livraison et la remise annoncés aux tarifs
// du serveur : une remise sans code promo valide est refusée.
func (s *Service) checkPricing(ctx context.Context, req models.OrderRequest) error {
	ref := req.Shipping.ID
	if ref == "" {
		ref = req.Shipping.Method
	}
	opt, err := s.shipping.Find(ref)
	if err != nil {
		return &RequestError{Message: "Mode de livraison inconnu"}
	}
	if !money.Equal(req.Shipping.Cost, opt.Price) {
		return &RequestError{Message: "Frais de livraison incohérents"}
	}

	expected := 0.0
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		v, err := s.coupons.Validate(ctx, code, req.Payment.Subtotal)
		if err != nil {
			return fmt.Errorf("validation du code promo: %w", err)
		}
		if v.Valid {
			expected = v.Discount
		}
	}
	if !money.Equal(req.Payment.Discount, expected) {
		return &RequestError{Message: "La remise ne correspond à aucun code promo valide"}
	}
	return nil
}

// CreateOrder valide la requête et enregistre la commande. Avec une clé déjà utilisée,
// la commande d'origine est renvoyée avec Replayed=true.
func (s *Service) CreateOrder(ctx context.Context, idempotencyKey string, req models.OrderRequest) (*models.OrderResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkPricing(ctx, req); err != nil {
		return nil, err
	}

	reserved := false
	if idempotencyKey != "" {
		code, ok, err := s.idem.Reserve(ctx, idempotencyKey)
		switch {
		case err != nil:
			s.logger.WithError(err).Warn("⚠️ Stockage d'idempotence indisponible, création sans déduplication")
		case ok:
			reserved = true
		case code == "":
			return nil, ErrInProgress
		default:
			o, err := s.repo.Get(ctx, code)
			if err != nil {
				return nil, fmt.Errorf("relecture de la commande %s: %w", code, err)
			}
			if !sameRequest(o, req) {
				s.logger.WithField("tracking_code", code).Warn("⚠️ Clé d'idempotence réutilisée avec une autre commande")
				return nil, ErrKeyReused
			}
			s.logger.WithField("tracking_code", code).Info("🔁 Commande rejouée (clé d'idempotence)")
			return &models.OrderResponse{TrackingCode: code, Order: o, Replayed: true}, nil
		}
	}

	now := s.now().UTC()
	method := req.Payment.Method
	if method == "" {
		method = models.PaymentCashOnDelivery
	}
	o := models.Order{
		TrackingCode: NewTrackingCode(),
		Items:        req.Items,
		Customer:     checkout.NormalizeCustomer(req.Customer),
		Shipping:     req.Shipping,
		Payment:      req.Payment,
		CouponCode:   req.CouponCode,
		Status:       models.OrderPending,
		History:      []models.StatusEvent{{Status: models.OrderPending, At: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	o.Payment.Method = method

	if err := s.repo.Insert(ctx, o); err != nil {
		if reserved {
			if rerr := s.idem.Release(ctx, idempotencyKey); rerr != nil {
				s.logger.WithError(rerr).Warn("⚠️ Clé d'idempotence non libérée")
			}
		}
		return nil, fmt.Errorf("enregistrement de la commande: %w", err)
	}
	if reserved {
		if err := s.idem.Complete(ctx, idempotencyKey, o.TrackingCode); err != nil {
			s.logger.WithError(err).Warn("⚠️ Clé d'idempotence non mémorisée")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tracking_code": o.TrackingCode,
		"items":         len(o.Items),
		"total":         o.Payment.Total,
	}).Info("✅ Commande créée")

	created := o
	s.async(func() { s.afterCreate(created) })
	return &models.OrderResponse{TrackingCode: o.TrackingCode, Order: &o}, nil
}

func (s *Service) Get(ctx context.Context, trackingCode string) (*models.Order, error) {
	return s.repo.Get(ctx, NormalizeTrackingCode(trackingCode))
}

// Track retourne la commande et sa frise de suivi.
func (s *Service) Track(ctx context.Context, trackingCode string) (*TrackResponse, error) {
	o, err := s.Get(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	return &TrackResponse{Order: o, Timeline: Timeline(*o)}, nil
}

// UpdateStatus fait avancer la commande en respectant les transitions autorisées.
func (s *Service) UpdateStatus(ctx context.Context, trackingCode, status string) (*models.Order, error) {
	o, err := s.Get(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, status) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, o.Status, status)
	}

	now := s.now().UTC()
	o.Status = status
	o.History = append(o.History, models.StatusEvent{Status: status, At: now})
	o.UpdatedAt = now
	if err := s.repo.UpdateStatus(ctx, o.TrackingCode, status, o.History, now); err != nil {
		return nil, fmt.Errorf("mise à jour du statut: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tracking_code": o.TrackingCode,
		"status":        status,
	}).Info("📦 Statut de commande mis à jour")

	changed := *o
	s.async(func() { s.afterStatusChange(changed) })
	return o, nil
}

// ConfirmPayment enregistre le PaymentIntent réglé et confirme la commande.
// Une commande déjà confirmée (webhook rejoué) n'est pas une erreur.
func (s *Service) ConfirmPayment(ctx context.Context, trackingCode, intentID string) error {
	code := NormalizeTrackingCode(trackingCode)
	if err := s.repo.SetPaymentIntent(ctx, code, intentID); err != nil {
		return fmt.Errorf("enregistrement du paiement: %w", err)
	}
	_, err := s.UpdateStatus(ctx, code, models.OrderConfirmed)
	if errors.Is(err, ErrInvalidTransition) {
		s.logger.WithField("tracking_code", code).Info("Paiement reçu pour une commande déjà confirmée")
		return nil
	}
	return err
}

func (s *Service) afterCreate(o models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log := s.logger.WithField("tracking_code", o.TrackingCode)

	evt := events.OrderCreatedEvent{
		TrackingCode: o.TrackingCode,
		Total:        o.Payment.Total,
		ItemsCount:   len(o.Items),
		City:         o.Customer.City,
		CreatedAt:    o.CreatedAt,
		EventTime:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.OrderCreatedTopic, o.TrackingCode, evt); err != nil {
		log.WithError(err).Warn("⚠️ Événement order.created non publié")
	}
	if err := s.notifier.OrderCreated(ctx, o); err != nil {
		log.WithError(err).Warn("⚠️ E-mail de confirmation non envoyé")
	}
}

func (s *Service) afterStatusChange(o models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log := s.logger.WithField("tracking_code", o.TrackingCode)

	evt := events.OrderStatusChangedEvent{
		TrackingCode: o.TrackingCode,
		Status:       o.Status,
		EventTime:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.OrderStatusChangedTopic, o.TrackingCode, evt); err != nil {
		log.WithError(err).Warn("⚠️ Événement order.status_changed non publié")
	}
	if err := s.notifier.StatusChanged(ctx, o); err != nil {
		log.WithError(err).Warn("⚠️ E-mail de suivi non envoyé")
	}
}
