package server

import (
	"net/http"
	"strings"

	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/gin-gonic/gin"
)

type createEventRequest struct {
	Name              string `json:"name"`
	TotalBooks        int    `json:"total_books"`
	TicketsPerBook    int    `json:"tickets_per_book"`
	PricePerTicket    int64  `json:"price_per_ticket"`
	FirstTicketNumber int64  `json:"first_ticket_number"`
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.Create(c.Request.Context(), eventdomain.CreateEventRequest{
		Name:              strings.TrimSpace(req.Name),
		TotalBooks:        req.TotalBooks,
		TicketsPerBook:    req.TicketsPerBook,
		PricePerTicket:    req.PricePerTicket,
		FirstTicketNumber: req.FirstTicketNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEvents(c *gin.Context) {
	resp, err := s.eventSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEvent(c *gin.Context) {
	resp, err := s.eventSvc.GetByID(c.Request.Context(), eventdomain.GetEventRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CloseEvent(c *gin.Context) {
	resp, err := s.eventSvc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PreviewBooks(c *gin.Context) {
	resp, err := s.eventSvc.PreviewBooks(c.Request.Context(), eventdomain.PreviewBooksRequest{EventID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GenerateBooks(c *gin.Context) {
	resp, err := s.eventSvc.GenerateBooks(c.Request.Context(), eventdomain.GenerateBooksRequest{EventID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBooks(c *gin.Context) {
	resp, err := s.eventSvc.ListBooks(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
