package domain

import (
	"context"
	"errors"
	"time"
)

type RecordPaymentRequest struct {
	DistributionID string
	AmountPaid     int64
	PaymentMethod  string
	PaymentDate    time.Time
}

type BulkSettleRequest struct {
	EventID       string
	LevelValues   map[int]string
	PaymentMethod string
	PaymentDate   time.Time
}

type BulkSettleResponse struct {
	DistributionsSettled int   `json:"distributions_settled"`
	AmountCollected      int64 `json:"amount_collected"`
}

type DeletePaymentRequest struct {
	PaymentID string
}

// ReceiptInfo carries everything a printable receipt needs for one
// collection.
type ReceiptInfo struct {
	Collection   Collection `json:"collection"`
	Status       Status     `json:"status"`
	EventName    string     `json:"event_name"`
	BookNumber   int        `json:"book_number"`
	TicketStart  int64      `json:"ticket_start"`
	TicketEnd    int64      `json:"ticket_end"`
	LocationPath string     `json:"location_path"`
	ContactName  string     `json:"contact_name"`
}

type Service interface {
	Record(ctx context.Context, req RecordPaymentRequest) (Collection, error)
	StatusFor(ctx context.Context, distributionID string) (Status, error)
	ListByDistribution(ctx context.Context, distributionID string) ([]Collection, error)
	BulkSettle(ctx context.Context, req BulkSettleRequest) (BulkSettleResponse, error)
	Delete(ctx context.Context, req DeletePaymentRequest) error
	Receipt(ctx context.Context, paymentID string) (ReceiptInfo, error)
}

var (
	ErrInvalidCommunity   = errors.New("invalid_community")
	ErrInvalidUser        = errors.New("invalid_user")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidMethod      = errors.New("invalid_payment_method")
	ErrInvalidPaymentDate = errors.New("invalid_payment_date")
	ErrNotFound           = errors.New("not_found")
	ErrForbidden          = errors.New("forbidden")
)
