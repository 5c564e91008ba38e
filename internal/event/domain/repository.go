package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*Event, error)
	List(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*Event, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, event *Event) error

	InsertBooks(ctx context.Context, db *gorm.DB, books []*Book) error
	ListBooks(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*Book, error)
	FindBookByNumber(ctx context.Context, db *gorm.DB, eventID snowflake.ID, bookNumber int) (*Book, error)
	FindBook(ctx context.Context, db *gorm.DB, bookID snowflake.ID) (*Book, error)
	CountBooks(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error)
	UpdateBookStatus(ctx context.Context, db *gorm.DB, bookID snowflake.ID, status BookStatus) error
}
