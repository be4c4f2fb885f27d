package widget

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed widget.js
var script []byte

// Serve returns the embeddable chat-bubble script. Third-party sites load
// it with a script tag carrying data-nuvio-tenant.
func Serve(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
}
