package domain

import (
	"context"
	"errors"
	"time"
)

type TierInput struct {
	Enabled     bool
	PaymentDate *time.Time
	Percent     float64
}

type UpsertSettingsRequest struct {
	EventID  string
	Early    TierInput
	Standard TierInput
	Extra    TierInput
}

type SyncRequest struct {
	EventID string
}

type SyncResponse struct {
	RowsInserted         int `json:"rows_inserted"`
	DistributionsSkipped int `json:"distributions_skipped"`
}

type CleanupRequest struct {
	EventID string
}

type CleanupResponse struct {
	RowsDeleted int64 `json:"rows_deleted"`
}

// LevelSummary aggregates earned commission per top-level distributor.
type LevelSummary struct {
	Level1Value      string `json:"level_1_value"`
	Books            int    `json:"books"`
	CommissionAmount int64  `json:"commission_amount"`
}

type Service interface {
	UpsertSettings(ctx context.Context, req UpsertSettingsRequest) (Settings, error)
	GetSettings(ctx context.Context, eventID string) (Settings, error)
	Sync(ctx context.Context, req SyncRequest) (SyncResponse, error)
	Cleanup(ctx context.Context, req CleanupRequest) (CleanupResponse, error)
	ListEarned(ctx context.Context, eventID string) ([]Earned, error)
	SummaryByLevel1(ctx context.Context, eventID string) ([]LevelSummary, error)
}

var (
	ErrInvalidCommunity = errors.New("invalid_community")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPercent   = errors.New("invalid_percent")
	ErrInvalidTierDate  = errors.New("invalid_tier_date")
	ErrNotFound         = errors.New("not_found")
)
