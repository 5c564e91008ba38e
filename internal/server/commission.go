package server

import (
	"net/http"
	"strings"
	"time"

	commissiondomain "github.com/commonshq/samiti/internal/commission/domain"
	"github.com/gin-gonic/gin"
)

type tierInput struct {
	Enabled     bool    `json:"enabled"`
	PaymentDate string  `json:"payment_date"`
	Percent     float64 `json:"percent"`
}

type upsertCommissionSettingsRequest struct {
	Early    tierInput `json:"early"`
	Standard tierInput `json:"standard"`
	Extra    tierInput `json:"extra"`
}

func (t tierInput) toDomain() (commissiondomain.TierInput, error) {
	in := commissiondomain.TierInput{
		Enabled: t.Enabled,
		Percent: t.Percent,
	}
	if raw := strings.TrimSpace(t.PaymentDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return commissiondomain.TierInput{}, commissiondomain.ErrInvalidTierDate
		}
		in.PaymentDate = &parsed
	}
	return in, nil
}

func (s *Server) UpsertCommissionSettings(c *gin.Context) {
	var req upsertCommissionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	early, err := req.Early.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	standard, err := req.Standard.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	extra, err := req.Extra.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.commissionSvc.UpsertSettings(c.Request.Context(), commissiondomain.UpsertSettingsRequest{
		EventID:  c.Param("id"),
		Early:    early,
		Standard: standard,
		Extra:    extra,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommissionSettings(c *gin.Context) {
	resp, err := s.commissionSvc.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SyncCommission(c *gin.Context) {
	resp, err := s.commissionSvc.Sync(c.Request.Context(), commissiondomain.SyncRequest{
		EventID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CleanupCommission(c *gin.Context) {
	resp, err := s.commissionSvc.Cleanup(c.Request.Context(), commissiondomain.CleanupRequest{
		EventID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissionEarned(c *gin.Context) {
	resp, err := s.commissionSvc.ListEarned(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CommissionSummary(c *gin.Context) {
	resp, err := s.commissionSvc.SummaryByLevel1(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
