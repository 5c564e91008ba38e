package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*Campaign, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status CampaignStatus) error

	FindEntry(ctx context.Context, db *gorm.DB, campaignID, memberID snowflake.ID) (*Entry, error)
	InsertEntry(ctx context.Context, db *gorm.DB, entry *Entry) error
	UpdateEntry(ctx context.Context, db *gorm.DB, entry *Entry) error
	ListEntries(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]*Entry, error)
}
