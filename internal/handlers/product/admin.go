package product

import (
	"net/http"

	"maeva_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateProduct (admin)
func (h *Handler) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	created, err := h.catalog.CreateProduct(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProduct (admin) remplace les champs éditables du produit.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	updated, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.writeError(c, err, "Produit introuvable")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, "Produit introuvable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// UploadProductImage (admin) reçoit le champ multipart "image" et l'envoie sur MinIO.
func (h *Handler) UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop volumineuse (10 Mo max)"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier illisible"})
		return
	}
	defer f.Close()

	p, err := h.catalog.UploadProductImage(c.Request.Context(), c.Param("id"), file.Filename, f, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(c, err, "Produit introuvable")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateCollection(c *gin.Context) {
	var col models.Collection
	if err := c.ShouldBindJSON(&col); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	created, err := h.catalog.CreateCollection(c.Request.Context(), col)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateCollection(c *gin.Context) {
	var col models.Collection
	if err := c.ShouldBindJSON(&col); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	updated, err := h.catalog.UpdateCollection(c.Request.Context(), c.Param("id"), col)
	if err != nil {
		h.writeError(c, err, "Collection introuvable")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCollection(c *gin.Context) {
	if err := h.catalog.DeleteCollection(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, "Collection introuvable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection supprimée"})
}
