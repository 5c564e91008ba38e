package server

import (
	"errors"
	"net/http"
	"strings"

	campaigndomain "github.com/commonshq/samiti/internal/campaign/domain"
	commissiondomain "github.com/commonshq/samiti/internal/commission/domain"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	memberdomain "github.com/commonshq/samiti/internal/member/domain"
	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	reportdomain "github.com/commonshq/samiti/internal/report/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// conflictErrors are domain states the caller must resolve, not retry.
var conflictErrors = []error{
	eventdomain.ErrBooksAlreadyGenerated,
	eventdomain.ErrEventClosed,
	distdomain.ErrAlreadyAssigned,
	campaigndomain.ErrCampaignClosed,
	memberdomain.ErrDuplicateField,
}

var notFoundErrors = []error{
	eventdomain.ErrNotFound,
	distdomain.ErrNotFound,
	paymentdomain.ErrNotFound,
	commissiondomain.ErrNotFound,
	memberdomain.ErrNotFound,
	campaigndomain.ErrNotFound,
	reportdomain.ErrNotFound,
	gorm.ErrRecordNotFound,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	case errors.Is(err, ErrForbidden), errors.Is(err, paymentdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "forbidden"}
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, errorPayload{Type: "not_found", Message: "resource not found"}
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
}

// Validation sentinels across the feature modules share the invalid_
// naming convention, which keeps this classifier a prefix check.
func isValidationError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "invalid_") ||
		strings.HasPrefix(msg, "required_") ||
		strings.HasPrefix(msg, "unknown_")
}
