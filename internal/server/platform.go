package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListPlatforms(c *gin.Context) {
	platforms, err := s.registry.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": platforms})
}
