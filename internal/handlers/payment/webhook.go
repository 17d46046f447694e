package payment

import (
	"context"
	"errors"
	"io"
	"net/http"

	"maeva_back_end/internal/orders"
	paysvc "maeva_back_end/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxWebhookBody = 65536

// PaymentConfirmer confirme une commande après encaissement.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, trackingCode, intentID string) error
}

type Handler struct {
	payments *paysvc.Service
	orders   PaymentConfirmer
	logger   *logrus.Logger
}

func NewHandler(payments *paysvc.Service, confirmer PaymentConfirmer, logger *logrus.Logger) *Handler {
	return &Handler{payments: payments, orders: confirmer, logger: logger}
}

// StripeWebhook traite les événements Stripe (signature vérifiée quand un secret est configuré).
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Requête trop volumineuse"})
		return
	}

	event, err := h.payments.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		status := http.StatusBadRequest
		h.logger.WithError(err).Warn("❌ Webhook Stripe rejeté")
		if errors.Is(err, paysvc.ErrInvalidSignature) {
			c.JSON(status, gin.H{"error": "Signature invalide"})
			return
		}
		c.JSON(status, gin.H{"error": "Événement invalide"})
		return
	}

	log := h.logger.WithFields(logrus.Fields{"type": event.Type, "payment_intent": event.IntentID})
	if event.Type != paysvc.EventPaymentSucceeded {
		log.Debug("événement Stripe ignoré")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if event.TrackingCode == "" {
		log.Warn("⚠️ PaymentIntent sans code de suivi")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	err = h.orders.ConfirmPayment(c.Request.Context(), event.TrackingCode, event.IntentID)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		// Rien à réessayer côté Stripe.
		log.WithField("tracking_code", event.TrackingCode).Warn("⚠️ Paiement reçu pour une commande inconnue")
	case err != nil:
		log.WithError(err).Error("❌ Confirmation du paiement échouée")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la confirmation"})
		return
	default:
		log.WithField("tracking_code", event.TrackingCode).Info("✅ Paiement confirmé")
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
