package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/member/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertFieldDef(ctx context.Context, db *gorm.DB, def *domain.FieldDef) error {
	return db.WithContext(ctx).Create(def).Error
}

func (r *repo) ListFieldDefs(ctx context.Context, db *gorm.DB, communityID snowflake.ID) ([]*domain.FieldDef, error) {
	var defs []*domain.FieldDef
	err := db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("position asc, id asc").
		Find(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *repo) FindFieldDef(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*domain.FieldDef, error) {
	var def domain.FieldDef
	err := db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&def).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *repo) DeleteFieldDef(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		Delete(&domain.FieldDef{}).Error
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO members (id, community_id, full_name, phone, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.CommunityID,
		member.FullName,
		member.Phone,
		member.Email,
		member.CreatedAt,
		member.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Exec(
		`UPDATE members SET full_name = ?, phone = ?, email = ?, updated_at = ?
		 WHERE id = ? AND community_id = ?`,
		member.FullName,
		member.Phone,
		member.Email,
		member.UpdatedAt,
		member.ID,
		member.CommunityID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, communityID snowflake.ID, filter domain.ListFilter) ([]*domain.Member, error) {
	query := db.WithContext(ctx).Where("community_id = ?", communityID)
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var members []*domain.Member
	if err := query.Order("full_name asc, id asc").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, communityID, id snowflake.ID) error {
	err := db.WithContext(ctx).
		Where("member_id = ?", id).
		Delete(&domain.FieldValue{}).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("community_id = ? AND id = ?", communityID, id).
		Delete(&domain.Member{}).Error
}

func (r *repo) ReplaceValues(ctx context.Context, db *gorm.DB, memberID snowflake.ID, values []domain.FieldValue) error {
	err := db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Delete(&domain.FieldValue{}).Error
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&values).Error
}

func (r *repo) LoadValues(ctx context.Context, db *gorm.DB, memberIDs []snowflake.ID) (map[snowflake.ID][]domain.FieldValue, error) {
	out := make(map[snowflake.ID][]domain.FieldValue, len(memberIDs))
	if len(memberIDs) == 0 {
		return out, nil
	}

	var values []domain.FieldValue
	err := db.WithContext(ctx).
		Where("member_id IN ?", memberIDs).
		Find(&values).Error
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		out[v.MemberID] = append(out[v.MemberID], v)
	}
	return out, nil
}
