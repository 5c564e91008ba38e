package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const previewBookCount = 5

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("event.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEventRequest) (domain.Event, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.Event{}, domain.ErrInvalidCommunity
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Event{}, domain.ErrInvalidName
	}
	if err := validateAllocation(req.TotalBooks, req.TicketsPerBook, req.PricePerTicket, req.FirstTicketNumber); err != nil {
		return domain.Event{}, err
	}

	now := time.Now().UTC()
	event := domain.Event{
		ID:                s.genID.Generate(),
		CommunityID:       communityID,
		Name:              name,
		Slug:              slug.Make(name),
		Status:            domain.EventStatusDraft,
		TotalBooks:        req.TotalBooks,
		TicketsPerBook:    req.TicketsPerBook,
		PricePerTicket:    req.PricePerTicket,
		FirstTicketNumber: req.FirstTicketNumber,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEventRequest) (domain.Event, error) {
	event, err := s.findEvent(ctx, s.db, req.ID)
	if err != nil {
		return domain.Event{}, err
	}
	return *event, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Event, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	items, err := s.repo.List(ctx, s.db, communityID)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		events = append(events, *item)
	}
	return events, nil
}

// PreviewBooks computes the first few ticket ranges without persisting,
// so an operator can sanity-check the numbering before committing.
func (s *Service) PreviewBooks(ctx context.Context, req domain.PreviewBooksRequest) (domain.PreviewBooksResponse, error) {
	event, err := s.findEvent(ctx, s.db, req.EventID)
	if err != nil {
		return domain.PreviewBooksResponse{}, err
	}

	limit := previewBookCount
	if event.TotalBooks < limit {
		limit = event.TotalBooks
	}

	return domain.PreviewBooksResponse{
		Ranges:              ticketRanges(*event, limit),
		TotalExpectedAmount: event.TotalExpectedAmount(),
	}, nil
}

// GenerateBooks materializes every book for a draft event and activates it.
// Re-running on an already active event is rejected: regeneration would
// duplicate book numbers.
func (s *Service) GenerateBooks(ctx context.Context, req domain.GenerateBooksRequest) (domain.GenerateBooksResponse, error) {
	event, err := s.findEvent(ctx, s.db, req.EventID)
	if err != nil {
		return domain.GenerateBooksResponse{}, err
	}
	if event.Status == domain.EventStatusClosed {
		return domain.GenerateBooksResponse{}, domain.ErrEventClosed
	}
	if event.Status != domain.EventStatusDraft {
		return domain.GenerateBooksResponse{}, domain.ErrBooksAlreadyGenerated
	}

	now := time.Now().UTC()
	ranges := ticketRanges(*event, event.TotalBooks)
	books := make([]*domain.Book, 0, len(ranges))
	for _, r := range ranges {
		books = append(books, &domain.Book{
			ID:                s.genID.Generate(),
			EventID:           event.ID,
			BookNumber:        r.BookNumber,
			StartTicketNumber: r.StartTicketNumber,
			EndTicketNumber:   r.EndTicketNumber,
			Status:            domain.BookStatusAvailable,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.CountBooks(ctx, tx, event.ID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrBooksAlreadyGenerated
		}
		if err := s.repo.InsertBooks(ctx, tx, books); err != nil {
			return err
		}
		event.Status = domain.EventStatusActive
		event.UpdatedAt = now
		return s.repo.UpdateStatus(ctx, tx, event)
	})
	if err != nil {
		return domain.GenerateBooksResponse{}, err
	}

	created := make([]domain.Book, 0, len(books))
	for _, b := range books {
		created = append(created, *b)
	}

	return domain.GenerateBooksResponse{
		Event:               *event,
		BooksCreated:        len(created),
		TotalExpectedAmount: event.TotalExpectedAmount(),
		Books:               created,
	}, nil
}

func (s *Service) ListBooks(ctx context.Context, eventID string) ([]domain.Book, error) {
	event, err := s.findEvent(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListBooks(ctx, s.db, event.ID)
	if err != nil {
		return nil, err
	}

	books := make([]domain.Book, 0, len(items))
	for _, item := range items {
		books = append(books, *item)
	}
	return books, nil
}

func (s *Service) Close(ctx context.Context, id string) (domain.Event, error) {
	event, err := s.findEvent(ctx, s.db, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event.Status == domain.EventStatusClosed {
		return *event, nil
	}

	event.Status = domain.EventStatusClosed
	event.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, event); err != nil {
		return domain.Event{}, err
	}
	return *event, nil
}

func (s *Service) findEvent(ctx context.Context, db *gorm.DB, rawID string) (*domain.Event, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	event, err := s.repo.FindByID(ctx, db, communityID, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

// ticketRanges derives contiguous, non-overlapping ticket spans:
// book k starts at first_ticket + (k-1)*tickets_per_book.
func ticketRanges(event domain.Event, count int) []domain.BookRange {
	ranges := make([]domain.BookRange, 0, count)
	for k := 1; k <= count; k++ {
		start := event.FirstTicketNumber + int64(k-1)*int64(event.TicketsPerBook)
		ranges = append(ranges, domain.BookRange{
			BookNumber:        k,
			StartTicketNumber: start,
			EndTicketNumber:   start + int64(event.TicketsPerBook) - 1,
		})
	}
	return ranges
}

func validateAllocation(totalBooks, ticketsPerBook int, pricePerTicket, firstTicketNumber int64) error {
	if totalBooks < 1 {
		return domain.ErrInvalidTotalBooks
	}
	if ticketsPerBook < 1 {
		return domain.ErrInvalidTicketsPerBook
	}
	if pricePerTicket <= 0 {
		return domain.ErrInvalidPricePerTicket
	}
	if firstTicketNumber < 1 {
		return domain.ErrInvalidFirstTicketNumber
	}
	return nil
}
