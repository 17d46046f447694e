package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"

	cartsvc "maeva_back_end/internal/cart"
	"maeva_back_end/internal/catalog"
	"maeva_back_end/internal/middleware"
	"maeva_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProductLookup fournit la fiche produit qui fait foi pour le prix d'une ligne.
type ProductLookup interface {
	Product(ctx context.Context, id string) (*models.Product, error)
}

type Handler struct {
	carts       *cartsvc.Service
	products    ProductLookup
	maxQuantity int
	subscriber  Subscriber
	origins     []string
	logger      *logrus.Logger
}

// NewHandler ; subscriber peut être nil (pas de synchronisation temps réel sans Redis).
func NewHandler(carts *cartsvc.Service, products ProductLookup, maxQuantity int, subscriber Subscriber, origins []string, logger *logrus.Logger) *Handler {
	return &Handler{
		carts:       carts,
		products:    products,
		maxQuantity: maxQuantity,
		subscriber:  subscriber,
		origins:     origins,
		logger:      logger,
	}
}

// Le nom, le prix et l'image éventuellement envoyés par le client sont ignorés.
type addItemRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type selectorRequest struct {
	ProductID string  `json:"productId"`
	LineID    string  `json:"lineId"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
	Quantity  int     `json:"quantity"`
}

func (r selectorRequest) selector() cartsvc.Selector {
	return cartsvc.Selector{
		LineID:    strings.TrimSpace(r.LineID),
		ProductID: strings.TrimSpace(r.ProductID),
		Color:     r.Color,
		Size:      r.Size,
	}
}

func (h *Handler) quantityError(c *gin.Context, err error) {
	if errors.Is(err, cartsvc.ErrInvalidQuantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide", "details": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// GetCart retourne le panier de la session avec ses totaux.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.carts.Get(c.Request.Context(), middleware.SessionID(c)))
}

// AddItem ajoute une ligne ou incrémente la ligne de même variante.
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId requis"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := cartsvc.ValidateQuantity(req.Quantity, h.maxQuantity); err != nil {
		h.quantityError(c, err)
		return
	}

	p, err := h.products.Product(c.Request.Context(), productID)
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("product_id", productID).Error("❌ Lecture du produit impossible")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalogue indisponible"})
		return
	}

	line := models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  req.Quantity,
	}
	if len(p.ImageURLs) > 0 {
		line.ImageURL = p.ImageURLs[0]
	}
	c.JSON(http.StatusOK, h.carts.AddItem(c.Request.Context(), middleware.SessionID(c), line))
}

// UpdateItem fixe la quantité des lignes désignées.
func (h *Handler) UpdateItem(c *gin.Context) {
	var req selectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.ProductID == "" && req.LineID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId ou lineId requis"})
		return
	}
	if err := cartsvc.ValidateQuantity(req.Quantity, h.maxQuantity); err != nil {
		h.quantityError(c, err)
		return
	}

	snapshot, n := h.carts.UpdateQuantity(c.Request.Context(), middleware.SessionID(c), req.selector(), req.Quantity)
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable dans le panier"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// RemoveItem retire les lignes désignées.
func (h *Handler) RemoveItem(c *gin.Context) {
	var req selectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.ProductID == "" && req.LineID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId ou lineId requis"})
		return
	}

	snapshot, n := h.carts.RemoveItem(c.Request.Context(), middleware.SessionID(c), req.selector())
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable dans le panier"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ClearCart vide le panier de la session.
func (h *Handler) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.carts.Clear(c.Request.Context(), middleware.SessionID(c)))
}
