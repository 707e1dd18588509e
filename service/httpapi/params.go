package httpapi

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// idParam parses the :id path segment. Non-numeric ids do not match any resource.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func (s *server) bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		s.writeError(c, fmt.Errorf("%w: %s", errMalformedRequest, err))
		return false
	}

	return true
}
