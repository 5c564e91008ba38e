package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	"github.com/commonshq/samiti/internal/providers/pdf"
	"github.com/gin-gonic/gin"
)

type recordPaymentRequest struct {
	DistributionID string `json:"distribution_id"`
	AmountPaid     int64  `json:"amount_paid"`
	PaymentMethod  string `json:"payment_method"`
	PaymentDate    string `json:"payment_date"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidPaymentDate)
		return
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordPaymentRequest{
		DistributionID: req.DistributionID,
		AmountPaid:     req.AmountPaid,
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		PaymentDate:    paymentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type bulkSettleRequest struct {
	EventID       string         `json:"event_id"`
	LevelValues   map[int]string `json:"level_values"`
	PaymentMethod string         `json:"payment_method"`
	PaymentDate   string         `json:"payment_date"`
}

func (s *Server) BulkSettle(c *gin.Context) {
	var req bulkSettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidPaymentDate)
		return
	}

	resp, err := s.paymentSvc.BulkSettle(c.Request.Context(), paymentdomain.BulkSettleRequest{
		EventID:       req.EventID,
		LevelValues:   req.LevelValues,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		PaymentDate:   paymentDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePayment(c *gin.Context) {
	err := s.paymentSvc.Delete(c.Request.Context(), paymentdomain.DeletePaymentRequest{
		PaymentID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListPayments(c *gin.Context) {
	resp, err := s.paymentSvc.ListByDistribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PaymentStatus(c *gin.Context) {
	resp, err := s.paymentSvc.StatusFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PaymentReceipt(c *gin.Context) {
	info, err := s.paymentSvc.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateReceipt(c.Request.Context(), receiptData(s.cfg.AppName, info))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+info.Collection.ID.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func receiptData(communityName string, info paymentdomain.ReceiptInfo) pdf.ReceiptData {
	return pdf.ReceiptData{
		CommunityName: communityName,
		EventName:     info.EventName,
		ReceiptNumber: info.Collection.ID.String(),
		BookNumber:    strconv.Itoa(info.BookNumber),
		TicketRange:   strconv.FormatInt(info.TicketStart, 10) + "-" + strconv.FormatInt(info.TicketEnd, 10),
		LocationPath:  info.LocationPath,
		PaidBy:        info.ContactName,
		CollectedBy:   info.Collection.CollectedBy.String(),
		AmountPaid:    strconv.FormatInt(info.Collection.AmountPaid, 10),
		PaymentMethod: info.Collection.PaymentMethod,
		PaymentDate:   info.Collection.PaymentDate.Format("2006-01-02"),
		TotalPaid:     strconv.FormatInt(info.Status.TotalPaid, 10),
		Outstanding:   strconv.FormatInt(info.Status.Outstanding, 10),
		Status:        string(info.Status.State),
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
