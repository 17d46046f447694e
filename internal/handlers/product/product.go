package product

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"maeva_back_end/internal/catalog"
	"maeva_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxImageSize = 10 << 20

type Handler struct {
	catalog *catalog.Service
	logger  *logrus.Logger
}

func NewHandler(svc *catalog.Service, logger *logrus.Logger) *Handler {
	return &Handler{catalog: svc, logger: logger}
}

func (h *Handler) writeError(c *gin.Context, err error, notFound string) {
	var input *catalog.InputError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.As(err, &input):
		c.JSON(http.StatusBadRequest, gin.H{"error": input.Message})
	case errors.Is(err, catalog.ErrImagesUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stockage d'images indisponible"})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("❌ Erreur catalogue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
	}
}

func parseQuery(c *gin.Context) (models.ProductQuery, error) {
	q := models.ProductQuery{
		ID:       strings.TrimSpace(c.Query("id")),
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Exclude:  catalog.ParseIDList(c.Query("exclude")),
	}
	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, &catalog.InputError{Message: "Paramètre featured invalide"}
		}
		q.Featured = &v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return q, &catalog.InputError{Message: "Paramètre limit invalide"}
		}
		q.Limit = v
	}
	return q, nil
}

// GetProducts retourne un produit (?id=) ou la liste filtrée.
func (h *Handler) GetProducts(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		h.writeError(c, err, "")
		return
	}

	if q.ID != "" {
		p, err := h.catalog.Product(c.Request.Context(), q.ID)
		if err != nil {
			h.writeError(c, err, "Produit introuvable")
			return
		}
		c.JSON(http.StatusOK, p)
		return
	}

	products, err := h.catalog.Products(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetCollections retourne toutes les collections, ou une seule avec ?id= (id ou slug).
func (h *Handler) GetCollections(c *gin.Context) {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		col, err := h.catalog.Collection(c.Request.Context(), id)
		if err != nil {
			h.writeError(c, err, "Collection introuvable")
			return
		}
		c.JSON(http.StatusOK, col)
		return
	}

	cols, err := h.catalog.Collections(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, cols)
}

// GetBlog retourne les articles, ou un seul avec ?slug=.
func (h *Handler) GetBlog(c *gin.Context) {
	if slug := strings.TrimSpace(c.Query("slug")); slug != "" {
		post, err := h.catalog.BlogPost(c.Request.Context(), slug)
		if err != nil {
			h.writeError(c, err, "Article introuvable")
			return
		}
		c.JSON(http.StatusOK, post)
		return
	}

	posts, err := h.catalog.BlogPosts(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, posts)
}
