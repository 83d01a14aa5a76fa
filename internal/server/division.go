package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	divisiondomain "github.com/smallpress/folio/internal/division/domain"
)

func (s *Server) CalculateDivision(c *gin.Context) {
	var req divisiondomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.divisionSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
