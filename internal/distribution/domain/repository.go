package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows distributions of an event by level values,
// keyed by level number.
type ListFilter struct {
	LevelValues map[int]string
}

type Repository interface {
	InsertLevel(ctx context.Context, db *gorm.DB, level *Level) error
	ListLevels(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*Level, error)
	InsertLevelValue(ctx context.Context, db *gorm.DB, value *LevelValue) error
	ListLevelValues(ctx context.Context, db *gorm.DB, levelID snowflake.ID) ([]*LevelValue, error)

	Insert(ctx context.Context, db *gorm.DB, dist *Distribution) error
	Update(ctx context.Context, db *gorm.DB, dist *Distribution) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Distribution, error)
	FindByBook(ctx context.Context, db *gorm.DB, bookID snowflake.ID) (*Distribution, error)
	ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID, filter ListFilter) ([]*Distribution, error)

	ReplaceSegments(ctx context.Context, db *gorm.DB, distributionID snowflake.ID, segments []Segment) error
	LoadSegments(ctx context.Context, db *gorm.DB, dist *Distribution) error
}
