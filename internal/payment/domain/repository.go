package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Totals is one aggregation row: paid sum and latest payment date per
// distribution.
type Totals struct {
	DistributionID  snowflake.ID
	TotalPaid       int64
	LastPaymentDate *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, collection *Collection) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Collection, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ListByDistribution(ctx context.Context, db *gorm.DB, distributionID snowflake.ID) ([]*Collection, error)
	TotalsFor(ctx context.Context, db *gorm.DB, distributionID snowflake.ID) (Totals, error)
	TotalsForMany(ctx context.Context, db *gorm.DB, distributionIDs []snowflake.ID) (map[snowflake.ID]Totals, error)
}
