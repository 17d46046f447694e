package order

import (
	"errors"
	"net/http"
	"strings"

	"maeva_back_end/internal/models"
	"maeva_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

type Handler struct {
	orders *orders.Service
	logger *logrus.Logger
}

func NewHandler(svc *orders.Service, logger *logrus.Logger) *Handler {
	return &Handler{orders: svc, logger: logger}
}

// CreateOrder est l'endpoint de création appelé par le checkout (ou un client distant).
func (h *Handler) CreateOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.OrderResponse{Error: "Requête de commande invalide"})
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	resp, err := h.orders.CreateOrder(c.Request.Context(), key, req)
	if err != nil {
		var reqErr *orders.RequestError
		switch {
		case errors.As(err, &reqErr):
			c.JSON(http.StatusBadRequest, models.OrderResponse{Error: reqErr.Message})
		case errors.Is(err, orders.ErrKeyReused):
			c.JSON(http.StatusUnprocessableEntity, models.OrderResponse{Error: orders.ErrKeyReused.PublicMessage()})
		case errors.Is(err, orders.ErrInProgress):
			c.JSON(http.StatusConflict, models.OrderResponse{Error: "Commande déjà en cours de création, réessayez dans un instant"})
		default:
			h.logger.WithError(err).Error("❌ Création de commande échouée")
			c.JSON(http.StatusInternalServerError, models.OrderResponse{Error: "Impossible d'enregistrer la commande"})
		}
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// TrackOrder retourne la commande et sa frise de suivi.
func (h *Handler) TrackOrder(c *gin.Context) {
	res, err := h.orders.Track(c.Request.Context(), c.Param("code"))
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune commande ne correspond à ce code de suivi"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("❌ Lecture de la commande échouée")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du suivi de la commande"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateStatus (admin) fait avancer le statut d'une commande.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut requis"})
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("code"), strings.ToLower(strings.TrimSpace(req.Status)))
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.WithError(err).Error("❌ Mise à jour du statut échouée")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du statut"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Statut mis à jour", "order": o})
	}
}
