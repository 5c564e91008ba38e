package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertSettings(ctx context.Context, db *gorm.DB, settings *Settings) error
	FindSettings(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (*Settings, error)

	InsertEarned(ctx context.Context, db *gorm.DB, earned *Earned) error
	ListEarned(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*Earned, error)
	// EarnedDistributionIDs returns the set of distributions that already
	// have at least one commission row for the event.
	EarnedDistributionIDs(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (map[snowflake.ID]bool, error)
	// DeleteDuplicates collapses each (distribution, type) group to its
	// lowest-id row and reports how many rows were removed.
	DeleteDuplicates(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error)
}
