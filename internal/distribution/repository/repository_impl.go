package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/distribution/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertLevel(ctx context.Context, db *gorm.DB, level *domain.Level) error {
	return db.WithContext(ctx).Create(level).Error
}

func (r *repo) ListLevels(ctx context.Context, db *gorm.DB, eventID snowflake.ID) ([]*domain.Level, error) {
	var levels []*domain.Level
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("level_number asc").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repo) InsertLevelValue(ctx context.Context, db *gorm.DB, value *domain.LevelValue) error {
	return db.WithContext(ctx).Create(value).Error
}

func (r *repo) ListLevelValues(ctx context.Context, db *gorm.DB, levelID snowflake.ID) ([]*domain.LevelValue, error) {
	var values []*domain.LevelValue
	err := db.WithContext(ctx).
		Where("level_id = ?", levelID).
		Order("value asc").
		Find(&values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, dist *domain.Distribution) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO book_distributions (id, book_id, member_id, contact_name, contact_phone, is_extra_book, is_returned, distributed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dist.ID,
		dist.BookID,
		dist.MemberID,
		dist.ContactName,
		dist.ContactPhone,
		dist.IsExtraBook,
		dist.IsReturned,
		dist.DistributedAt,
		dist.CreatedAt,
		dist.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, dist *domain.Distribution) error {
	return db.WithContext(ctx).Exec(
		`UPDATE book_distributions
		 SET member_id = ?, contact_name = ?, contact_phone = ?, is_extra_book = ?, is_returned = ?, updated_at = ?
		 WHERE id = ?`,
		dist.MemberID,
		dist.ContactName,
		dist.ContactPhone,
		dist.IsExtraBook,
		dist.IsReturned,
		dist.UpdatedAt,
		dist.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Distribution, error) {
	var dist domain.Distribution
	err := db.WithContext(ctx).Where("id = ?", id).First(&dist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := r.LoadSegments(ctx, db, &dist); err != nil {
		return nil, err
	}
	return &dist, nil
}

func (r *repo) FindByBook(ctx context.Context, db *gorm.DB, bookID snowflake.ID) (*domain.Distribution, error) {
	var dist domain.Distribution
	err := db.WithContext(ctx).Where("book_id = ?", bookID).First(&dist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := r.LoadSegments(ctx, db, &dist); err != nil {
		return nil, err
	}
	return &dist, nil
}

func (r *repo) ListByEvent(ctx context.Context, db *gorm.DB, eventID snowflake.ID, filter domain.ListFilter) ([]*domain.Distribution, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Distribution{}).
		Joins("JOIN lottery_books ON lottery_books.id = book_distributions.book_id").
		Where("lottery_books.event_id = ?", eventID)

	for levelNumber, value := range filter.LevelValues {
		stmt = stmt.Where(
			`EXISTS (SELECT 1 FROM distribution_segments seg
			 WHERE seg.distribution_id = book_distributions.id
			 AND seg.level_number = ? AND seg.value = ?)`,
			levelNumber, value,
		)
	}

	var dists []*domain.Distribution
	err := stmt.
		Select("book_distributions.*").
		Order("lottery_books.book_number asc").
		Find(&dists).Error
	if err != nil {
		return nil, err
	}

	for _, dist := range dists {
		if err := r.LoadSegments(ctx, db, dist); err != nil {
			return nil, err
		}
	}
	return dists, nil
}

func (r *repo) ReplaceSegments(ctx context.Context, db *gorm.DB, distributionID snowflake.ID, segments []domain.Segment) error {
	if err := db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Delete(&domain.Segment{}).Error; err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&segments).Error
}

func (r *repo) LoadSegments(ctx context.Context, db *gorm.DB, dist *domain.Distribution) error {
	var segments []domain.Segment
	err := db.WithContext(ctx).
		Where("distribution_id = ?", dist.ID).
		Order("level_number asc").
		Find(&segments).Error
	if err != nil {
		return err
	}
	dist.Segments = segments
	return nil
}
