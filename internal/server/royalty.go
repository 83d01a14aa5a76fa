package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	royaltydomain "github.com/smallpress/folio/internal/royalty/domain"
)

type setAuthorShareRequest struct {
	Percentage *float64 `json:"percentage"`
}

func (s *Server) SetAuthorShare(c *gin.Context) {
	var req setAuthorShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Percentage == nil {
		AbortWithError(c, newValidationError("percentage", "missing_percentage", "missing percentage"))
		return
	}

	resp, err := s.royaltySvc.SetAuthorShare(c.Request.Context(), royaltydomain.SetAuthorShareRequest{
		TitleID:    strings.TrimSpace(c.Param("id")),
		AuthorID:   strings.TrimSpace(c.Param("authorId")),
		Percentage: *req.Percentage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRoyalties(c *gin.Context) {
	resp, err := s.royaltySvc.View(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRoyaltyAmounts(c *gin.Context) {
	resp, err := s.royaltySvc.Amounts(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
