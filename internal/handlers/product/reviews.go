package product

import (
	"net/http"
	"strings"

	"maeva_back_end/internal/catalog"

	"github.com/gin-gonic/gin"
)

// GetReviews retourne les avis d'un produit et leur note moyenne.
func (h *Handler) GetReviews(c *gin.Context) {
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId requis"})
		return
	}

	reviews, rating, err := h.catalog.Reviews(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, err, "Produit introuvable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "rating": rating})
}

// CreateReview ajoute un avis sur un produit
func (h *Handler) CreateReview(c *gin.Context) {
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId requis"})
		return
	}

	var in catalog.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	review, err := h.catalog.AddReview(c.Request.Context(), productID, in)
	if err != nil {
		h.writeError(c, err, "Produit introuvable")
		return
	}
	c.JSON(http.StatusCreated, review)
}
