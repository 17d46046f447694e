package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"maeva_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const TokenTTL = 12 * time.Hour

type Handler struct {
	jwtSecret    string
	email        string
	passwordHash string
	logger       *logrus.Logger
}

// NewHandler ; passwordHash est un hash Argon2id (voir cmd/hashpassword).
func NewHandler(jwtSecret, email, passwordHash string, logger *logrus.Logger) *Handler {
	return &Handler{
		jwtSecret:    jwtSecret,
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		logger:       logger,
	}
}

// Login vérifie les identifiants du back-office et retourne un JWT.
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	if h.email == "" || h.passwordHash == "" || h.jwtSecret == "" {
		h.logger.Error("❌ Connexion admin impossible : ADMIN_EMAIL, ADMIN_PASSWORD_HASH ou JWT_SECRET manquant")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Administration non configurée"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(h.email)) == 1

	passwordOK, err := utils.VerifyPassword(input.Password, h.passwordHash)
	if err != nil {
		h.logger.WithError(err).Error("❌ ADMIN_PASSWORD_HASH invalide")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if !emailOK || !passwordOK {
		h.logger.WithField("ip", c.ClientIP()).Warn("⚠️ Tentative de connexion admin échouée")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	token, err := utils.GenerateAdminJWT(h.jwtSecret, h.email, TokenTTL)
	if err != nil {
		h.logger.WithError(err).Error("❌ Génération du JWT échouée")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	h.logger.WithField("email", h.email).Info("✅ Connexion admin")
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(TokenTTL.Seconds()),
	})
}
