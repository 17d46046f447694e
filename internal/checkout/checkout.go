// Package checkout transforme le panier d'une session en commande.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"maeva_back_end/internal/cart"
	"maeva_back_end/internal/coupon"
	"maeva_back_end/internal/models"
	"maeva_back_end/internal/shipping"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const MessageSubmitFailed = "Impossible de créer la commande, veuillez réessayer"

var ErrEmptyCart = errors.New("le panier est vide")

// OrderCreator crée une commande ; la même clé d'idempotence rejoue la première commande.
type OrderCreator interface {
	CreateOrder(ctx context.Context, idempotencyKey string, req models.OrderRequest) (*models.OrderResponse, error)
}

// PaymentStarter prépare un paiement carte pour une commande créée.
type PaymentStarter interface {
	StartPayment(ctx context.Context, trackingCode string, amount float64) (clientSecret string, err error)
}

// SubmitError est retourné quand la création de la commande échoue ; le panier est intact.
type SubmitError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

// Les erreurs du service de commandes exposent leur message utilisateur ainsi.
type publicError interface {
	PublicMessage() string
	HTTPStatus() int
}

type Request struct {
	Customer       models.Customer `json:"customer"`
	ShippingMethod string          `json:"shippingMethod"`
	CouponCode     string          `json:"couponCode"`
	PaymentMethod  string          `json:"paymentMethod"`
}

type Result struct {
	TrackingCode string                   `json:"trackingCode"`
	Order        *models.Order            `json:"order,omitempty"`
	Payment      models.PaymentInfo       `json:"payment"`
	Shipping     models.ShippingInfo      `json:"shipping"`
	Coupon       *models.CouponValidation `json:"coupon,omitempty"`
	Replayed     bool                     `json:"replayed,omitempty"`
	ClientSecret string                   `json:"clientSecret,omitempty"`
	PaymentError string                   `json:"paymentError,omitempty"`
}

type Deps struct {
	Carts    *cart.Service
	Store    cart.Persister
	Shipping *shipping.Catalog
	Coupons  coupon.Validator
	Orders   OrderCreator
	Payments PaymentStarter
	Logger   *logrus.Logger
	// Durée de vie du récapitulatif et du jeton de tentative.
	TTL time.Duration
}

type Service struct {
	carts    *cart.Service
	store    cart.Persister
	shipping *shipping.Catalog
	coupons  coupon.Validator
	orders   OrderCreator
	payments PaymentStarter
	logger   *logrus.Logger
	ttl      time.Duration
}

func NewService(d Deps) *Service {
	if d.TTL <= 0 {
		d.TTL = 24 * time.Hour
	}
	return &Service{
		carts:    d.Carts,
		store:    d.Store,
		shipping: d.Shipping,
		coupons:  d.Coupons,
		orders:   d.Orders,
		payments: d.Payments,
		logger:   d.Logger,
		ttl:      d.TTL,
	}
}

func LastOrderKey(sessionID string) string { return "last_order:" + sessionID }
func attemptKey(sessionID string) string   { return "checkout_attempt:" + sessionID }

// Submit valide le formulaire, applique le code promo et crée la commande.
// idempotencyKey peut être vide : une clé est alors dérivée de la tentative en cours.
func (s *Service) Submit(ctx context.Context, sessionID, idempotencyKey string, req Request) (*Result, error) {
	log := s.logger.WithField("session_id", sessionID)

	c := s.carts.Load(ctx, sessionID)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := ValidateCustomer(req.Customer); err != nil {
		return nil, err
	}
	customer := NormalizeCustomer(req.Customer)

	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	switch method {
	case "":
		method = models.PaymentCashOnDelivery
	case models.PaymentCashOnDelivery, models.PaymentCard:
	default:
		return nil, &ValidationError{Fields: map[string]string{"paymentMethod": "Mode de paiement inconnu"}}
	}

	opt := s.shipping.Default()
	if id := strings.TrimSpace(req.ShippingMethod); id != "" {
		var err error
		if opt, err = s.shipping.Lookup(id); err != nil {
			return nil, err
		}
	}

	subtotal := c.TotalPrice()
	var applied *models.CouponValidation
	discount, couponCode := 0.0, ""
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		v, err := s.coupons.Validate(ctx, code, subtotal)
		if err != nil {
			log.WithError(err).Warn("⚠️ Validation du code promo impossible, aucune remise")
			v = models.CouponValidation{Code: strings.ToUpper(code), ErrorMessage: coupon.MessageInvalid}
		}
		applied = &v
		if v.Valid {
			discount, couponCode = v.Discount, v.Code
		}
	}

	orderReq := BuildOrder(c.Lines(), customer, opt, discount, method, couponCode)

	if idempotencyKey == "" {
		idempotencyKey = s.deriveKey(ctx, sessionID, orderReq)
	}

	resp, err := s.orders.CreateOrder(ctx, idempotencyKey, orderReq)
	if err != nil {
		log.WithError(err).Error("❌ Création de la commande échouée")
		return nil, submitError(err)
	}
	if resp == nil || resp.TrackingCode == "" {
		return nil, &SubmitError{Status: 502, Message: MessageSubmitFailed, Err: errors.New("réponse sans code de suivi")}
	}

	result := &Result{
		TrackingCode: resp.TrackingCode,
		Order:        resp.Order,
		Payment:      orderReq.Payment,
		Shipping:     orderReq.Shipping,
		Coupon:       applied,
		Replayed:     resp.Replayed,
	}

	s.saveLastOrder(ctx, sessionID, models.LastOrder{
		TrackingCode: resp.TrackingCode,
		Customer:     customer,
		Shipping:     orderReq.Shipping,
		Items:        orderReq.Items,
		Payment:      orderReq.Payment,
		CreatedAt:    time.Now().UTC(),
	})
	s.carts.Clear(ctx, sessionID)
	if err := s.store.Delete(ctx, attemptKey(sessionID)); err != nil {
		log.WithError(err).Warn("⚠️ Jeton de tentative non supprimé")
	}

	if method == models.PaymentCard && s.payments != nil {
		secret, err := s.payments.StartPayment(ctx, resp.TrackingCode, orderReq.Payment.Total)
		if err != nil {
			log.WithError(err).WithField("tracking_code", resp.TrackingCode).Error("❌ Initialisation du paiement carte échouée")
			result.PaymentError = "Le paiement par carte est indisponible, vous réglerez à la livraison"
		} else {
			result.ClientSecret = secret
		}
	}

	log.WithFields(logrus.Fields{
		"tracking_code": resp.TrackingCode,
		"total":         orderReq.Payment.Total,
		"replayed":      resp.Replayed,
	}).Info("✅ Commande passée")
	return result, nil
}

// LastOrder retourne le récapitulatif de la dernière commande de la session, ou nil.
func (s *Service) LastOrder(ctx context.Context, sessionID string) (*models.LastOrder, error) {
	data, err := s.store.Load(ctx, LastOrderKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("lecture de la dernière commande: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var last models.LastOrder
	if err := json.Unmarshal(data, &last); err != nil {
		return nil, fmt.Errorf("dernière commande illisible: %w", err)
	}
	return &last, nil
}

func (s *Service) saveLastOrder(ctx context.Context, sessionID string, last models.LastOrder) {
	data, err := json.Marshal(last)
	if err != nil {
		s.logger.WithError(err).Error("❌ Sérialisation de la dernière commande échouée")
		return
	}
	if err := s.store.Save(ctx, LastOrderKey(sessionID), data, s.ttl); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("❌ Sauvegarde de la dernière commande échouée")
	}
}

// deriveKey combine le jeton de tentative de la session et le contenu de la commande :
// renvoyer la même commande après une erreur réseau rejoue la première création.
func (s *Service) deriveKey(ctx context.Context, sessionID string, req models.OrderRequest) string {
	token := ""
	data, err := s.store.Load(ctx, attemptKey(sessionID))
	if err != nil {
		s.logger.WithError(err).Warn("⚠️ Jeton de tentative illisible")
	}
	if len(data) > 0 {
		token = string(data)
	} else {
		token = uuid.NewString()
		if err := s.store.Save(ctx, attemptKey(sessionID), []byte(token), s.ttl); err != nil {
			s.logger.WithError(err).Warn("⚠️ Jeton de tentative non sauvegardé")
		}
	}

	payload, _ := json.Marshal(req)
	return uuid.NewSHA1(uuid.NameSpaceOID, append([]byte(token+":"), payload...)).String()
}

func submitError(err error) *SubmitError {
	var pub publicError
	if errors.As(err, &pub) {
		return &SubmitError{Status: pub.HTTPStatus(), Message: pub.PublicMessage(), Err: err}
	}
	return &SubmitError{Status: 502, Message: MessageSubmitFailed, Err: err}
}
