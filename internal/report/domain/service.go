package domain

import (
	"context"
	"errors"
	"time"
)

// Row is one spreadsheet line for a distributed book. It carries both
// directions of the round trip: export flattens a distribution into it,
// import reads it back and reconciles the differences.
type Row struct {
	LevelValues    [3]string
	MemberName     string
	ContactPhone   string
	BookNumber     int
	TicketStart    int64
	TicketEnd      int64
	ExpectedAmount int64
	AmountPaid     int64
	Outstanding    int64
	Status         string
	PaymentDates   []time.Time
	PaymentMethods []string
	Returned       bool
}

type ExportRequest struct {
	EventID string
}

type ImportRequest struct {
	EventID string
	Data    []byte
}

type ImportResponse struct {
	RowsProcessed    int `json:"rows_processed"`
	PaymentsRecorded int `json:"payments_recorded"`
	ReturnsUpdated   int `json:"returns_updated"`
	RowsSkipped      int `json:"rows_skipped"`
}

type Service interface {
	Export(ctx context.Context, req ExportRequest) ([]byte, error)
	Import(ctx context.Context, req ImportRequest) (ImportResponse, error)
}

var (
	ErrInvalidCommunity = errors.New("invalid_community")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidWorkbook  = errors.New("invalid_workbook")
	ErrNotFound         = errors.New("not_found")
)
