package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Все ответы API заворачиваются в единый конверт
// {success, error?, <resource>?...}. Хендлеры не пишут в JSON напрямую.

// Success merges the payload keys into {"success": true} and writes 200.
func Success(c *gin.Context, payload gin.H) {
	h := gin.H{"success": true}
	for k, v := range payload {
		h[k] = v
	}
	c.JSON(http.StatusOK, h)
}

// HTTPError writes {"success": false, "error": msg} with the given status.
func HTTPError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "error": msg})
}

func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg)
}

func UnauthorizedError(c *gin.Context) {
	HTTPError(c, http.StatusUnauthorized, MsgUnauthorized)
}

func ForbiddenError(c *gin.Context) {
	HTTPError(c, http.StatusForbidden, MsgForbidden)
}

func NotFoundError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusNotFound, msg)
}

// Error reports an unexpected failure. The detail goes to the server log at
// the call site; the client only ever sees the generic message.
func Error(c *gin.Context, msg string) {
	HTTPError(c, http.StatusInternalServerError, msg)
}
