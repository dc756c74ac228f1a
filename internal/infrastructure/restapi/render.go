package restapi

import (
	"github.com/gin-gonic/gin"
	g "maragu.dev/gomponents"
)

// render writes a gomponents node as an HTML response.
func render(c *gin.Context, status int, n g.Node) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := n.Render(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
