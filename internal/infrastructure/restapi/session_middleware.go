package restapi

import (
	"net/http"

	"basebridge/internal/app/port"
	"basebridge/internal/app/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionIDValue = "sid"
	containerKey   = "basebridge.container"
)

// SessionBinder ties a browser to its SessionContainer. The cookie only
// carries the session ID; state lives in the session manager.
type SessionBinder struct {
	store      sessions.Store
	cookieName string
	manager    *service.SessionManager
	logger     port.Logger
}

// NewCookieStore creates the signed cookie store for the session ID.
func NewCookieStore(secret string, maxAgeSeconds int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// NewSessionBinder creates a SessionBinder.
func NewSessionBinder(store sessions.Store, cookieName string, manager *service.SessionManager, l port.Logger) *SessionBinder {
	return &SessionBinder{
		store:      store,
		cookieName: cookieName,
		manager:    manager,
		logger:     l.With("component", "SessionBinder"),
	}
}

// Middleware loads the caller's container, mounting a new one when the
// cookie is missing, invalid or points at an expired session.
func (b *SessionBinder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := b.store.Get(c.Request, b.cookieName)
		if err != nil {
			// A new session is still returned for undecodable cookies.
			b.logger.Debug("Discarding session cookie", "error", err)
		}

		id, _ := sess.Values[sessionIDValue].(string)
		container, ok := b.manager.Get(id)
		if !ok {
			container = b.manager.Mount(c.Request.Context())
			sess.Values[sessionIDValue] = container.ID()
		}
		// Re-saved on every request so the cookie expiry follows the store TTL.
		if err := sess.Save(c.Request, c.Writer); err != nil {
			b.logger.Error("Failed to save session cookie", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(containerKey, container)
		c.Next()
	}
}

func containerFrom(c *gin.Context) *service.SessionContainer {
	return c.MustGet(containerKey).(*service.SessionContainer)
}
