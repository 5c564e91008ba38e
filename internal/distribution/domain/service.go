package domain

import (
	"context"
	"errors"
)

// AssignOutcome tags whether an assignment created a new distribution or
// updated the existing one for the book.
type AssignOutcome string

const (
	OutcomeCreated AssignOutcome = "created"
	OutcomeUpdated AssignOutcome = "updated"
)

type CreateLevelRequest struct {
	EventID     string
	LevelNumber int
	Name        string
	Values      []string
}

type LevelWithValues struct {
	Level  Level    `json:"level"`
	Values []string `json:"values"`
}

type SegmentInput struct {
	LevelNumber int
	Value       string
}

type AssignRequest struct {
	EventID      string
	BookNumber   int
	Segments     []SegmentInput
	MemberID     string
	ContactName  string
	ContactPhone string
	IsExtraBook  bool
}

type AssignResponse struct {
	Outcome      AssignOutcome `json:"outcome"`
	Distribution Distribution  `json:"distribution"`
	Path         string        `json:"path"`
}

type SetReturnedRequest struct {
	DistributionID string
	Returned       bool
}

type Service interface {
	CreateLevel(ctx context.Context, req CreateLevelRequest) (LevelWithValues, error)
	ListLevels(ctx context.Context, eventID string) ([]LevelWithValues, error)
	Assign(ctx context.Context, req AssignRequest) (AssignResponse, error)
	SetReturned(ctx context.Context, req SetReturnedRequest) (Distribution, error)
	GetByBook(ctx context.Context, eventID string, bookNumber int) (Distribution, error)
	ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]Distribution, error)
}

var (
	ErrInvalidCommunity   = errors.New("invalid_community")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidLevelNumber = errors.New("invalid_level_number")
	ErrInvalidLevelName   = errors.New("invalid_level_name")
	ErrInvalidSegment     = errors.New("invalid_segment")
	ErrInvalidBookNumber  = errors.New("invalid_book_number")
	ErrAlreadyAssigned    = errors.New("book_already_assigned")
	ErrNotFound           = errors.New("not_found")
)
