package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/event/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO lottery_events (id, community_id, name, slug, status, total_books, tickets_per_book, price_per_ticket, first_ticket_number, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.CommunityID,
		event.Name,
		event.Slug,
		event.Status,
		event.TotalBooks,
		event.TicketsPerBook,
		event.PricePerTicket,
		event.FirstTicketNumber,
		event.CreatedAt,
		event.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*domain.Event, error) {
	var events []*domain.Event
	err := db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at desc, id desc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`UPDATE lottery_events SET status = ?, updated_at = ? WHERE id = ?`,
		event.Status,
		event.UpdatedAt,
		event.ID,
	).Error
}

func (r *repo) InsertBooks(ctx context.Context, db *gorm.DB, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(books, 200).Error
}

func (r *repo) ListBooks(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.Book, error) {
	var books []*domain.Book
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("book_number asc").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repo) FindBookByNumber(ctx context.Context, db *gorm.DB, eventID snowflake.ID, bookNumber int) (*domain.Book, error) {
	var book domain.Book
	err := db.WithContext(ctx).
		Where("event_id = ? AND book_number = ?", eventID, bookNumber).
		First(&book).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r *repo) FindBook(ctx context.Context, db *gorm.DB, bookID snowflake.ID) (*domain.Book, error) {
	var book domain.Book
	err := db.WithContext(ctx).Where("id = ?", bookID).First(&book).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r *repo) CountBooks(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

func (r *repo) UpdateBookStatus(ctx context.Context, db *gorm.DB, bookID snowflake.ID, status domain.BookStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE lottery_books SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status,
		bookID,
	).Error
}
