package checkout

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	checkoutsvc "maeva_back_end/internal/checkout"
	"maeva_back_end/internal/coupon"
	"maeva_back_end/internal/middleware"
	"maeva_back_end/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	checkout *checkoutsvc.Service
	shipping *shipping.Catalog
	coupons  coupon.Validator
	logger   *logrus.Logger
}

func NewHandler(checkout *checkoutsvc.Service, shipping *shipping.Catalog, coupons coupon.Validator, logger *logrus.Logger) *Handler {
	return &Handler{checkout: checkout, shipping: shipping, coupons: coupons, logger: logger}
}

// Checkout crée la commande à partir du panier de la session.
func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutsvc.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	result, err := h.checkout.Submit(c.Request.Context(), middleware.SessionID(c), key, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var validation *checkoutsvc.ValidationError
	var submit *checkoutsvc.SubmitError

	switch {
	case errors.Is(err, checkoutsvc.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Votre panier est vide"})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Veuillez corriger le formulaire", "fields": validation.Fields})
	case errors.Is(err, shipping.ErrUnknownOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mode de livraison inconnu"})
	case errors.As(err, &submit):
		c.JSON(submit.Status, gin.H{"error": submit.Message})
	default:
		h.logger.WithError(err).Error("❌ Erreur checkout inattendue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": checkoutsvc.MessageSubmitFailed})
	}
}

// LastOrder retourne le récapitulatif lu par la page de confirmation.
func (h *Handler) LastOrder(c *gin.Context) {
	last, err := h.checkout.LastOrder(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.logger.WithError(err).Warn("⚠️ Dernière commande illisible")
	}
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune commande récente"})
		return
	}
	c.JSON(http.StatusOK, last)
}

// ShippingOptions retourne la liste fixe des modes de livraison.
func (h *Handler) ShippingOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"options": h.shipping.Options(),
		"default": h.shipping.Default().ID,
	})
}

// ValidateCoupon vérifie un code promo ; un code invalide reste une réponse 200.
func (h *Handler) ValidateCoupon(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code promo requis"})
		return
	}

	subtotal := 0.0
	if raw := c.Query("subtotal"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sous-total invalide"})
			return
		}
		subtotal = v
	}

	v, err := h.coupons.Validate(c.Request.Context(), code, subtotal)
	if err != nil {
		h.logger.WithError(err).Warn("⚠️ Service de codes promo indisponible")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Validation du code promo indisponible"})
		return
	}
	c.JSON(http.StatusOK, v)
}
