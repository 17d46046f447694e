package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookieName = "maeva_session"
	sessionIDKey      = "session_id"
)

// NewSessionStore crée le cookie store signé portant l'identifiant de panier anonyme.
func NewSessionStore(secret string, secure bool, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session garantit un identifiant de session anonyme à chaque requête.
func Session(store sessions.Store, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Un cookie illisible (secret changé) donne une nouvelle session.
		session, err := store.Get(c.Request, SessionCookieName)
		if err != nil {
			logger.WithError(err).Debug("cookie de session invalide, nouvelle session")
		}

		sid, _ := session.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			session.Values[sessionIDKey] = sid
			if err := session.Save(c.Request, c.Writer); err != nil {
				logger.WithError(err).Error("❌ Impossible d'enregistrer la session")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session indisponible"})
				return
			}
		}

		SetSessionID(c, sid)
		c.Next()
	}
}

// SetSessionID attache l'identifiant de session au contexte de la requête.
func SetSessionID(c *gin.Context, sid string) {
	c.Set(sessionIDKey, sid)
}

// SessionID retourne l'identifiant posé par Session, ou "".
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
