package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertSettings(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	existing, err := r.FindSettings(ctx, db, settings.EventID)
	if err != nil {
		return err
	}
	if existing == nil {
		return db.WithContext(ctx).Create(settings).Error
	}

	settings.ID = existing.ID
	return db.WithContext(ctx).
		Model(&domain.Settings{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"early_enabled":         settings.EarlyEnabled,
			"early_payment_date":    settings.EarlyPaymentDate,
			"early_percent":         settings.EarlyPercent,
			"standard_enabled":      settings.StandardEnabled,
			"standard_payment_date": settings.StandardPaymentDate,
			"standard_percent":      settings.StandardPercent,
			"extra_enabled":         settings.ExtraEnabled,
			"extra_percent":         settings.ExtraPercent,
			"updated_at":            settings.UpdatedAt,
		}).Error
}

func (r *repo) FindSettings(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (*domain.Settings, error) {
	var settings domain.Settings
	err := db.WithContext(ctx).Where("event_id = ?", eventID).First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) InsertEarned(ctx context.Context, db *gorm.DB, earned *domain.Earned) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO commission_earned (id, event_id, distribution_id, book_id, level_1_value, commission_type, commission_percent, payment_amount, commission_amount, payment_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		earned.ID,
		earned.EventID,
		earned.DistributionID,
		earned.BookID,
		earned.Level1Value,
		earned.CommissionType,
		earned.CommissionPercent,
		earned.PaymentAmount,
		earned.CommissionAmount,
		earned.PaymentDate,
		earned.CreatedAt,
	).Error
}

func (r *repo) ListEarned(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.Earned, error) {
	var earned []*domain.Earned
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("level_1_value asc, id asc").
		Find(&earned).Error
	if err != nil {
		return nil, err
	}
	return earned, nil
}

func (r *repo) EarnedDistributionIDs(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (map[snowflake.ID]bool, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT distribution_id FROM commission_earned
		 WHERE event_id = ? AND distribution_id IS NOT NULL`,
		eventID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *repo) DeleteDuplicates(ctx context.Context, db *gorm.DB, eventID snowflake.ID) (int64, error) {
	// Legacy rows without a distribution reference are left alone.
	result := db.WithContext(ctx).Exec(
		`DELETE FROM commission_earned
		 WHERE event_id = ?
		 AND distribution_id IS NOT NULL
		 AND id NOT IN (
		     SELECT MIN(id) FROM commission_earned
		     WHERE event_id = ? AND distribution_id IS NOT NULL
		     GROUP BY distribution_id, commission_type
		 )`,
		eventID, eventID,
	)
	return result.RowsAffected, result.Error
}
