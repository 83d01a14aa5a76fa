package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/smallpress/folio/internal/pricing/domain"
)

type upsertPricingEntry struct {
	PlatformName string   `json:"platformName"`
	MRP          *float64 `json:"mrp"`
	SalesPrice   *float64 `json:"salesPrice"`
}

type upsertPricingRequest struct {
	Entries         []upsertPricingEntry `json:"entries"`
	PrintCost       *float64             `json:"printCost"`
	CustomPrintCost *float64             `json:"customPrintCost"`
}

func (s *Server) UpsertPricing(c *gin.Context) {
	var req upsertPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entries := make([]pricingdomain.UpsertEntryRequest, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, pricingdomain.UpsertEntryRequest{
			PlatformName: strings.TrimSpace(e.PlatformName),
			MRP:          e.MRP,
			SalesPrice:   e.SalesPrice,
		})
	}

	err := s.pricingSvc.Upsert(c.Request.Context(), pricingdomain.UpsertPricingRequest{
		TitleID:         strings.TrimSpace(c.Param("id")),
		Entries:         entries,
		PrintCost:       req.PrintCost,
		CustomPrintCost: req.CustomPrintCost,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}
