package server

import (
	"net/http"
	"strings"

	featuredomain "github.com/commonshq/samiti/internal/feature/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) SetFeature(c *gin.Context) {
	var req featuredomain.SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Code = strings.TrimSpace(req.Code)

	resp, err := s.featureSvc.Set(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFeatures(c *gin.Context) {
	resp, err := s.featureSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
