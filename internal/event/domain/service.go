package domain

import (
	"context"
	"errors"
)

type CreateEventRequest struct {
	Name              string
	TotalBooks        int
	TicketsPerBook    int
	PricePerTicket    int64
	FirstTicketNumber int64
}

type GetEventRequest struct {
	ID string
}

type PreviewBooksRequest struct {
	EventID string
}

type GenerateBooksRequest struct {
	EventID string
}

type GenerateBooksResponse struct {
	Event               Event  `json:"event"`
	BooksCreated        int    `json:"books_created"`
	TotalExpectedAmount int64  `json:"total_expected_amount"`
	Books               []Book `json:"books"`
}

type PreviewBooksResponse struct {
	Ranges              []BookRange `json:"ranges"`
	TotalExpectedAmount int64       `json:"total_expected_amount"`
}

type Service interface {
	Create(ctx context.Context, req CreateEventRequest) (Event, error)
	GetByID(ctx context.Context, req GetEventRequest) (Event, error)
	List(ctx context.Context) ([]Event, error)
	PreviewBooks(ctx context.Context, req PreviewBooksRequest) (PreviewBooksResponse, error)
	GenerateBooks(ctx context.Context, req GenerateBooksRequest) (GenerateBooksResponse, error)
	ListBooks(ctx context.Context, eventID string) ([]Book, error)
	Close(ctx context.Context, id string) (Event, error)
}

var (
	ErrInvalidCommunity         = errors.New("invalid_community")
	ErrInvalidName              = errors.New("invalid_name")
	ErrInvalidTotalBooks        = errors.New("invalid_total_books")
	ErrInvalidTicketsPerBook    = errors.New("invalid_tickets_per_book")
	ErrInvalidPricePerTicket    = errors.New("invalid_price_per_ticket")
	ErrInvalidFirstTicketNumber = errors.New("invalid_first_ticket_number")
	ErrInvalidID                = errors.New("invalid_id")
	ErrNotFound                 = errors.New("not_found")
	ErrBooksAlreadyGenerated    = errors.New("books_already_generated")
	ErrEventClosed              = errors.New("event_closed")
)
