package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_collections (id, distribution_id, amount_paid, payment_method, payment_date, collected_by, collected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		collection.ID,
		collection.DistributionID,
		collection.AmountPaid,
		collection.PaymentMethod,
		collection.PaymentDate,
		collection.CollectedBy,
		collection.CollectedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Collection, error) {
	var collection domain.Collection
	err := db.WithContext(ctx).Where("id = ?", id).First(&collection).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM payment_collections WHERE id = ?`, id).Error
}

func (r *repo) ListByDistribution(ctx context.Context, db *gorm.DB, distributionID snowflake.ID) ([]*domain.Collection, error) {
	var collections []*domain.Collection
	err := db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("payment_date asc, id asc").
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *repo) TotalsFor(ctx context.Context, db *gorm.DB, distributionID snowflake.ID) (domain.Totals, error) {
	totals, err := r.TotalsForMany(ctx, db, []snowflake.ID{distributionID})
	if err != nil {
		return domain.Totals{}, err
	}
	if t, ok := totals[distributionID]; ok {
		return t, nil
	}
	return domain.Totals{DistributionID: distributionID}, nil
}

func (r *repo) TotalsForMany(ctx context.Context, db *gorm.DB, distributionIDs []snowflake.ID) (map[snowflake.ID]domain.Totals, error) {
	out := make(map[snowflake.ID]domain.Totals, len(distributionIDs))
	if len(distributionIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		DistributionID snowflake.ID
		TotalPaid      int64
		LastDate       *time.Time
	}
	err := db.WithContext(ctx).Raw(
		`SELECT distribution_id, COALESCE(SUM(amount_paid), 0) AS total_paid, MAX(payment_date) AS last_date
		 FROM payment_collections
		 WHERE distribution_id IN ?
		 GROUP BY distribution_id`,
		distributionIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.DistributionID] = domain.Totals{
			DistributionID:  row.DistributionID,
			TotalPaid:       row.TotalPaid,
			LastPaymentDate: row.LastDate,
		}
	}
	return out, nil
}
