package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type EventStatus string

const (
	EventStatusDraft  EventStatus = "draft"
	EventStatusActive EventStatus = "active"
	EventStatusClosed EventStatus = "closed"
)

type BookStatus string

const (
	BookStatusAvailable   BookStatus = "available"
	BookStatusDistributed BookStatus = "distributed"
	BookStatusCollected   BookStatus = "collected"
)

type Event struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CommunityID snowflake.ID `gorm:"column:community_id;not null;index" json:"community_id"`
	Name        string       `gorm:"not null" json:"name"`
	Slug        string       `gorm:"not null" json:"slug"`
	Status      EventStatus  `gorm:"type:text;not null;default:draft" json:"status"`

	TotalBooks        int   `gorm:"not null" json:"total_books"`
	TicketsPerBook    int   `gorm:"not null" json:"tickets_per_book"`
	PricePerTicket    int64 `gorm:"not null" json:"price_per_ticket"`
	FirstTicketNumber int64 `gorm:"not null" json:"first_ticket_number"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Event) TableName() string { return "lottery_events" }

// ExpectedAmountPerBook is the amount a fully sold book collects.
func (e Event) ExpectedAmountPerBook() int64 {
	return int64(e.TicketsPerBook) * e.PricePerTicket
}

// TotalExpectedAmount is the amount the whole event collects when every
// book is fully paid.
func (e Event) TotalExpectedAmount() int64 {
	return int64(e.TotalBooks) * e.ExpectedAmountPerBook()
}

type Book struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID           snowflake.ID `gorm:"column:event_id;not null;index" json:"event_id"`
	BookNumber        int          `gorm:"not null" json:"book_number"`
	StartTicketNumber int64        `gorm:"not null" json:"start_ticket_number"`
	EndTicketNumber   int64        `gorm:"not null" json:"end_ticket_number"`
	Status            BookStatus   `gorm:"type:text;not null;default:available" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Book) TableName() string { return "lottery_books" }

// BookRange describes the computed ticket span for one book before any
// record is persisted.
type BookRange struct {
	BookNumber        int   `json:"book_number"`
	StartTicketNumber int64 `json:"start_ticket_number"`
	EndTicketNumber   int64 `json:"end_ticket_number"`
}
