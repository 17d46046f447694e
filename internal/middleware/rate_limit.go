package middleware

import (
	"fmt"
	"net/http"
	"time"

	"maeva_back_end/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	CartMaxRequests   = 20
	SearchMaxRequests = 30
	LoginMaxAttempts  = 5

	CartWindow    = time.Minute
	SearchWindow  = time.Minute
	LoginCooldown = 15 * time.Minute
)

// Limit décrit une fenêtre fixe de rate limit.
type Limit struct {
	Name    string
	Max     int64
	Window  time.Duration
	Message string
	Key     func(c *gin.Context) string
}

// RateLimit compte les requêtes par clé ; si le compteur est indisponible la requête passe.
func RateLimit(counter cache.Counter, limit Limit, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := limit.Name + ":" + limit.Key(c)

		n, err := counter.Incr(c.Request.Context(), key, limit.Window)
		if err != nil {
			logger.WithError(err).WithField("limit", limit.Name).Warn("⚠️ Rate limit indisponible")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit.Max))
		if n > limit.Max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       limit.Message,
				"retry_after": int(limit.Window.Seconds()),
			})
			return
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limit.Max-n))
		c.Next()
	}
}

func clientIP(c *gin.Context) string { return c.ClientIP() }

// sessionOrIP retombe sur l'IP quand la session n'est pas encore posée.
func sessionOrIP(c *gin.Context) string {
	if sid := SessionID(c); sid != "" {
		return sid
	}
	return c.ClientIP()
}

// CartRateLimit limite les modifications du panier (anti-spam)
func CartRateLimit(counter cache.Counter, logger *logrus.Logger) gin.HandlerFunc {
	return RateLimit(counter, Limit{
		Name:    "cart_requests",
		Max:     CartMaxRequests,
		Window:  CartWindow,
		Message: "Trop de modifications du panier. Ralentissez un peu",
		Key:     sessionOrIP,
	}, logger)
}

// SearchRateLimit limite les recherches par IP
func SearchRateLimit(counter cache.Counter, logger *logrus.Logger) gin.HandlerFunc {
	return RateLimit(counter, Limit{
		Name:    "search_requests",
		Max:     SearchMaxRequests,
		Window:  SearchWindow,
		Message: "Trop de recherches. Réessayez dans 1 minute",
		Key:     clientIP,
	}, logger)
}

// LoginRateLimit limite les tentatives de connexion admin par IP
func LoginRateLimit(counter cache.Counter, logger *logrus.Logger) gin.HandlerFunc {
	return RateLimit(counter, Limit{
		Name:    "login_attempts",
		Max:     LoginMaxAttempts,
		Window:  LoginCooldown,
		Message: fmt.Sprintf("Trop de tentatives. Réessayez dans %d minutes", int(LoginCooldown.Minutes())),
		Key:     clientIP,
	}, logger)
}
