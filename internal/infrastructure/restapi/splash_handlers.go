package restapi

import (
	"net/http"
	"time"

	"basebridge/internal/app/port"
	"basebridge/internal/app/splash"
	"basebridge/internal/infrastructure/web/views"

	"github.com/gin-gonic/gin"
)

const splashNextPath = "/splash/next"

// SplashHandler serves the splash screen and its redirect timer.
type SplashHandler struct {
	delay  time.Duration
	target string
	logger port.Logger
}

// NewSplashHandler creates a SplashHandler redirecting to target after delay.
func NewSplashHandler(delay time.Duration, target string, l port.Logger) *SplashHandler {
	return &SplashHandler{
		delay:  delay,
		target: target,
		logger: l.With("component", "SplashHandler"),
	}
}

// Index renders the splash screen.
func (h *SplashHandler) Index(c *gin.Context) {
	render(c, http.StatusOK, views.Splash(splashNextPath, h.target, h.delay))
}

// Next holds the request open until the redirect timer fires. If the client
// goes away first the timer is unmounted and nothing is sent.
func (h *SplashHandler) Next(c *gin.Context) {
	r := splash.NewRedirector(h.delay, func() {
		h.logger.Debug("Splash timer fired", "target", h.target)
	})
	r.Mount()

	select {
	case <-r.Done():
	case <-c.Request.Context().Done():
		cancelled := r.Unmount()
		h.logger.Debug("Splash left before redirect", "cancelled", cancelled)
		c.Abort()
		return
	}

	if c.GetHeader("HX-Request") == "" {
		c.Redirect(http.StatusSeeOther, h.target)
		return
	}
	c.Header("HX-Redirect", h.target)
	c.Status(http.StatusOK)
}
