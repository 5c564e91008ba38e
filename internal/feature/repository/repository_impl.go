package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/feature/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, feature *domain.Feature) error {
	existing, err := r.FindByCode(ctx, db, feature.CommunityID, feature.Code)
	if err != nil {
		return err
	}
	if existing == nil {
		return db.WithContext(ctx).Create(feature).Error
	}

	feature.ID = existing.ID
	feature.CreatedAt = existing.CreatedAt
	return db.WithContext(ctx).
		Model(&domain.Feature{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"name":       feature.Name,
			"enabled":    feature.Enabled,
			"metadata":   feature.Metadata,
			"updated_at": feature.UpdatedAt,
		}).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, communityID snowflake.ID, code string) (*domain.Feature, error) {
	var feature domain.Feature
	err := db.WithContext(ctx).
		Where("community_id = ? AND code = ?", communityID, code).
		First(&feature).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &feature, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*domain.Feature, error) {
	var features []*domain.Feature
	err := db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("code asc").
		Find(&features).Error
	if err != nil {
		return nil, err
	}
	return features, nil
}
