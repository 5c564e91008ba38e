package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	// Search matches name, phone or email, case-insensitive substring.
	Search string
}

type Repository interface {
	InsertFieldDef(ctx context.Context, db *gorm.DB, def *FieldDef) error
	ListFieldDefs(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*FieldDef, error)
	FindFieldDef(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*FieldDef, error)
	DeleteFieldDef(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) error

	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	Update(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*Member, error)
	List(ctx context.Context, db *gorm.DB, communityID snowflake.ID, filter ListFilter) ([]*Member, error)
	Delete(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) error

	ReplaceValues(ctx context.Context, db *gorm.DB, memberID snowflake.ID, values []FieldValue) error
	LoadValues(ctx context.Context, db *gorm.DB, memberIDs []snowflake.ID) (map[snowflake.ID][]FieldValue, error)
}
