package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/commission/domain"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/observability/logger"
	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	DistRepo    distdomain.Repository
	EventRepo   eventdomain.Repository
	PaymentRepo paymentdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	distRepo    distdomain.Repository
	eventRepo   eventdomain.Repository
	paymentRepo paymentdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("commission.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		distRepo:    p.DistRepo,
		eventRepo:   p.EventRepo,
		paymentRepo: p.PaymentRepo,
	}
}

func (s *Service) UpsertSettings(ctx context.Context, req domain.UpsertSettingsRequest) (domain.Settings, error) {
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return domain.Settings{}, err
	}

	for _, tier := range []domain.TierInput{req.Early, req.Standard, req.Extra} {
		if tier.Enabled && (tier.Percent <= 0 || tier.Percent > 100) {
			return domain.Settings{}, domain.ErrInvalidPercent
		}
	}
	if req.Early.Enabled && req.Early.PaymentDate == nil {
		return domain.Settings{}, domain.ErrInvalidTierDate
	}
	if req.Standard.Enabled && req.Standard.PaymentDate == nil {
		return domain.Settings{}, domain.ErrInvalidTierDate
	}

	settings := domain.Settings{
		ID:                  s.genID.Generate(),
		EventID:             event.ID,
		EarlyEnabled:        req.Early.Enabled,
		EarlyPaymentDate:    req.Early.PaymentDate,
		EarlyPercent:        req.Early.Percent,
		StandardEnabled:     req.Standard.Enabled,
		StandardPaymentDate: req.Standard.PaymentDate,
		StandardPercent:     req.Standard.Percent,
		ExtraEnabled:        req.Extra.Enabled,
		ExtraPercent:        req.Extra.Percent,
		UpdatedAt:           time.Now().UTC(),
	}

	if err := s.repo.UpsertSettings(ctx, s.db, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (s *Service) GetSettings(ctx context.Context, eventID string) (domain.Settings, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return domain.Settings{}, err
	}

	settings, err := s.repo.FindSettings(ctx, s.db, event.ID)
	if err != nil {
		return domain.Settings{}, err
	}
	if settings == nil {
		return domain.Settings{}, domain.ErrNotFound
	}
	return *settings, nil
}

// Sync backfills commission rows for fully paid distributions that have
// none yet. The whole pass is one transaction: a failure part-way leaves
// nothing behind.
func (s *Service) Sync(ctx context.Context, req domain.SyncRequest) (domain.SyncResponse, error) {
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return domain.SyncResponse{}, err
	}

	settings, err := s.repo.FindSettings(ctx, s.db, event.ID)
	if err != nil {
		return domain.SyncResponse{}, err
	}
	if settings == nil {
		// No tiers configured: nothing can be eligible.
		return domain.SyncResponse{}, nil
	}

	dists, err := s.distRepo.ListByEvent(ctx, s.db, event.ID, distdomain.ListFilter{})
	if err != nil {
		return domain.SyncResponse{}, err
	}

	ids := make([]snowflake.ID, 0, len(dists))
	for _, dist := range dists {
		ids = append(ids, dist.ID)
	}

	expected := event.ExpectedAmountPerBook()
	now := time.Now().UTC()

	var resp domain.SyncResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		totals, err := s.paymentRepo.TotalsForMany(ctx, tx, ids)
		if err != nil {
			return err
		}
		already, err := s.repo.EarnedDistributionIDs(ctx, tx, event.ID)
		if err != nil {
			return err
		}

		for _, dist := range dists {
			t := totals[dist.ID]
			if paymentdomain.DeriveState(t.TotalPaid, expected) != paymentdomain.StateFullyPaid {
				continue
			}
			if already[dist.ID] {
				continue
			}
			if t.LastPaymentDate == nil {
				continue
			}

			level1 := dist.LevelOneValue()
			if strings.TrimSpace(level1) == "" {
				resp.DistributionsSkipped++
				continue
			}

			eligibilities := domain.Evaluate(*settings, dist.IsExtraBook, *t.LastPaymentDate)
			if len(eligibilities) == 0 {
				resp.DistributionsSkipped++
				continue
			}

			distID := dist.ID
			bookID := dist.BookID
			for _, el := range eligibilities {
				earned := domain.Earned{
					ID:                s.genID.Generate(),
					EventID:           event.ID,
					DistributionID:    &distID,
					BookID:            &bookID,
					Level1Value:       level1,
					CommissionType:    el.Type,
					CommissionPercent: el.Percent,
					PaymentAmount:     expected,
					CommissionAmount:  domain.Amount(expected, el.Percent),
					PaymentDate:       *t.LastPaymentDate,
					CreatedAt:         now,
				}
				if err := s.repo.InsertEarned(ctx, tx, &earned); err != nil {
					return err
				}
				resp.RowsInserted++
			}
		}
		return nil
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("commission sync failed", zap.Error(err))
		return domain.SyncResponse{}, err
	}
	return resp, nil
}

// Cleanup is the repair tool for the historical double-insert bug: each
// (distribution, type) group keeps its lowest-id row.
func (s *Service) Cleanup(ctx context.Context, req domain.CleanupRequest) (domain.CleanupResponse, error) {
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return domain.CleanupResponse{}, err
	}

	var deleted int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err = s.repo.DeleteDuplicates(ctx, tx, event.ID)
		return err
	})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("commission cleanup failed", zap.Error(err))
		return domain.CleanupResponse{}, err
	}
	return domain.CleanupResponse{RowsDeleted: deleted}, nil
}

func (s *Service) ListEarned(ctx context.Context, eventID string) ([]domain.Earned, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListEarned(ctx, s.db, event.ID)
	if err != nil {
		return nil, err
	}

	earned := make([]domain.Earned, 0, len(items))
	for _, item := range items {
		earned = append(earned, *item)
	}
	return earned, nil
}

func (s *Service) SummaryByLevel1(ctx context.Context, eventID string) ([]domain.LevelSummary, error) {
	earned, err := s.ListEarned(ctx, eventID)
	if err != nil {
		return nil, err
	}

	byLevel := make(map[string]*domain.LevelSummary)
	seenBooks := make(map[string]map[snowflake.ID]bool)
	for _, row := range earned {
		summary, ok := byLevel[row.Level1Value]
		if !ok {
			summary = &domain.LevelSummary{Level1Value: row.Level1Value}
			byLevel[row.Level1Value] = summary
			seenBooks[row.Level1Value] = make(map[snowflake.ID]bool)
		}
		if row.BookID != nil && !seenBooks[row.Level1Value][*row.BookID] {
			seenBooks[row.Level1Value][*row.BookID] = true
			summary.Books++
		}
		summary.CommissionAmount += row.CommissionAmount
	}

	out := make([]domain.LevelSummary, 0, len(byLevel))
	for _, summary := range byLevel {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level1Value < out[j].Level1Value })
	return out, nil
}

func (s *Service) findEvent(ctx context.Context, rawID string) (*eventdomain.Event, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, communityID, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return event, nil
}
