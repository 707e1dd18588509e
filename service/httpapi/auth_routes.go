package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *server) login(c *gin.Context) {
	var payload loginPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	pair, err := s.auth.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResource{Access: pair.Access, Refresh: pair.Refresh})
}

func (s *server) refresh(c *gin.Context) {
	var payload refreshPayload
	if !s.bindJSON(c, &payload) {
		return
	}

	access, err := s.auth.Refresh(c.Request.Context(), payload.Refresh)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, accessResource{Access: access})
}
