package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/projectbureau/bureau-backend/internal/resputil"
)

// uriID parses the :id path parameter. On failure it has already written
// the 400 response.
func uriID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		resputil.BadRequestError(c, "Некорректный идентификатор")
		return 0, false
	}
	return uint(id), true
}

// emptyToNil normalizes the two client encodings of "absent": a missing
// field stays nil, an empty string becomes NULL on write.
func emptyToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
