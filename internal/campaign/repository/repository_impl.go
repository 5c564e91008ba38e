package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/campaign/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (id, community_id, name, slug, amount_due, due_date, message_template, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.CommunityID,
		campaign.Name,
		campaign.Slug,
		campaign.AmountDue,
		campaign.DueDate,
		campaign.MessageTemplate,
		campaign.Status,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&campaign).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	err := db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.CampaignStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	).Error
}

func (r *repo) FindEntry(ctx context.Context, db *gorm.DB, campaignID, memberID snowflake.ID) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).
		Where("campaign_id = ? AND member_id = ?", campaignID, memberID).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) InsertEntry(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaign_entries (id, campaign_id, member_id, amount_paid, payment_method, paid_at, recorded_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CampaignID,
		entry.MemberID,
		entry.AmountPaid,
		entry.PaymentMethod,
		entry.PaidAt,
		entry.RecordedBy,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) UpdateEntry(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaign_entries SET amount_paid = ?, payment_method = ?, paid_at = ?, recorded_by = ?, updated_at = ?
		 WHERE id = ?`,
		entry.AmountPaid,
		entry.PaymentMethod,
		entry.PaidAt,
		entry.RecordedBy,
		entry.UpdatedAt,
		entry.ID,
	).Error
}

func (r *repo) ListEntries(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	err := db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
