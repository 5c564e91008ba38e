package server

import (
	"net/http"
	"strings"
	"time"

	campaigndomain "github.com/commonshq/samiti/internal/campaign/domain"
	"github.com/gin-gonic/gin"
)

type createCampaignRequest struct {
	Name            string `json:"name"`
	AmountDue       int64  `json:"amount_due"`
	DueDate         string `json:"due_date"`
	MessageTemplate string `json:"message_template"`
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var dueDate *time.Time
	if raw := strings.TrimSpace(req.DueDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		dueDate = &parsed
	}

	resp, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		Name:            strings.TrimSpace(req.Name),
		AmountDue:       req.AmountDue,
		DueDate:         dueDate,
		MessageTemplate: strings.TrimSpace(req.MessageTemplate),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCampaign(c *gin.Context) {
	resp, err := s.campaignSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCampaigns(c *gin.Context) {
	resp, err := s.campaignSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CloseCampaign(c *gin.Context) {
	resp, err := s.campaignSvc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordCampaignEntryRequest struct {
	MemberID      string `json:"member_id"`
	AmountPaid    int64  `json:"amount_paid"`
	PaymentMethod string `json:"payment_method"`
	PaidAt        string `json:"paid_at"`
}

func (s *Server) RecordCampaignEntry(c *gin.Context) {
	var req recordCampaignEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.RecordEntry(c.Request.Context(), campaigndomain.RecordEntryRequest{
		CampaignID:    c.Param("id"),
		MemberID:      req.MemberID,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		PaidAt:        paidAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCampaignEntries(c *gin.Context) {
	resp, err := s.campaignSvc.ListEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CampaignSummary(c *gin.Context) {
	resp, err := s.campaignSvc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CampaignReminders(c *gin.Context) {
	resp, err := s.campaignSvc.ReminderLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
