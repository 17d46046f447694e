// Package payment gère le paiement carte optionnel via Stripe.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"maeva_back_end/internal/money"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

const EventPaymentSucceeded = "payment_intent.succeeded"

var ErrInvalidSignature = errors.New("signature Stripe invalide")

type Service struct {
	webhookSecret string
	currency      string
	logger        *logrus.Logger
}

// NewService configure la clé secrète Stripe du processus.
func NewService(secretKey, webhookSecret, currency string, logger *logrus.Logger) *Service {
	stripe.Key = secretKey
	return &Service{
		webhookSecret: webhookSecret,
		currency:      strings.ToLower(currency),
		logger:        logger,
	}
}

// StartPayment crée un PaymentIntent pour la commande et retourne son client secret.
func (s *Service) StartPayment(ctx context.Context, trackingCode string, amount float64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("montant invalide: %.2f", amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(money.Cents(amount)),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"tracking_code": trackingCode,
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("création du PaymentIntent: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tracking_code":  trackingCode,
		"payment_intent": intent.ID,
		"amount":         amount,
	}).Info("💳 PaymentIntent créé")
	return intent.ClientSecret, nil
}

// WebhookEvent est la partie utile d'un événement Stripe.
type WebhookEvent struct {
	Type         string
	IntentID     string
	TrackingCode string
}

// ParseWebhook vérifie la signature (si un secret est configuré) et décode l'événement.
func (s *Service) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	var event stripe.Event

	if s.webhookSecret == "" {
		s.logger.Warn("⚠️ Pas de STRIPE_WEBHOOK_SECRET, signature non vérifiée")
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("JSON invalide: %w", err)
		}
	} else {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	out := &WebhookEvent{Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("décodage PaymentIntent: %w", err)
	}
	out.IntentID = pi.ID
	out.TrackingCode = pi.Metadata["tracking_code"]
	return out, nil
}
