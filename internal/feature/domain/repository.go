package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, feature *Feature) error
	FindByCode(ctx context.Context, db *gorm.DB, communityID snowflake.ID, code string) (*Feature, error)
	List(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*Feature, error)
}
