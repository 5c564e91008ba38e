package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/distribution/domain"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/commonshq/samiti/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	EventRepo eventdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	eventRepo eventdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("distribution.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		eventRepo: p.EventRepo,
	}
}

func (s *Service) CreateLevel(ctx context.Context, req domain.CreateLevelRequest) (domain.LevelWithValues, error) {
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return domain.LevelWithValues{}, err
	}

	if req.LevelNumber < 1 || req.LevelNumber > domain.MaxLevels {
		return domain.LevelWithValues{}, domain.ErrInvalidLevelNumber
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.LevelWithValues{}, domain.ErrInvalidLevelName
	}

	level := domain.Level{
		ID:          s.genID.Generate(),
		EventID:     event.ID,
		LevelNumber: req.LevelNumber,
		Name:        name,
	}

	values := make([]string, 0, len(req.Values))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertLevel(ctx, tx, &level); err != nil {
			return err
		}
		for _, raw := range req.Values {
			value := strings.TrimSpace(raw)
			if value == "" {
				continue
			}
			if err := s.repo.InsertLevelValue(ctx, tx, &domain.LevelValue{
				ID:      s.genID.Generate(),
				LevelID: level.ID,
				Value:   value,
			}); err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return domain.LevelWithValues{}, err
	}

	return domain.LevelWithValues{Level: level, Values: values}, nil
}

func (s *Service) ListLevels(ctx context.Context, eventID string) ([]domain.LevelWithValues, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	levels, err := s.repo.ListLevels(ctx, s.db, event.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LevelWithValues, 0, len(levels))
	for _, level := range levels {
		values, err := s.repo.ListLevelValues(ctx, s.db, level.ID)
		if err != nil {
			return nil, err
		}
		item := domain.LevelWithValues{Level: *level}
		for _, v := range values {
			item.Values = append(item.Values, v.Value)
		}
		out = append(out, item)
	}
	return out, nil
}

// Assign is upsert-by-book: the first call creates the distribution, later
// calls rewrite the location path, contact and extra flag on the same row.
func (s *Service) Assign(ctx context.Context, req domain.AssignRequest) (domain.AssignResponse, error) {
	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return domain.AssignResponse{}, err
	}

	book, err := s.eventRepo.FindBookByNumber(ctx, s.db, event.ID, req.BookNumber)
	if err != nil {
		return domain.AssignResponse{}, err
	}
	if book == nil {
		return domain.AssignResponse{}, domain.ErrInvalidBookNumber
	}

	segments, err := normalizeSegments(req.Segments)
	if err != nil {
		return domain.AssignResponse{}, err
	}

	var memberID *snowflake.ID
	if raw := strings.TrimSpace(req.MemberID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			return domain.AssignResponse{}, domain.ErrInvalidID
		}
		memberID = &parsed
	}

	now := time.Now().UTC()
	outcome := domain.OutcomeUpdated
	var dist *domain.Distribution

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByBook(ctx, tx, book.ID)
		if err != nil {
			return err
		}

		if existing == nil {
			outcome = domain.OutcomeCreated
			dist = &domain.Distribution{
				ID:            s.genID.Generate(),
				BookID:        book.ID,
				MemberID:      memberID,
				ContactName:   strings.TrimSpace(req.ContactName),
				ContactPhone:  strings.TrimSpace(req.ContactPhone),
				IsExtraBook:   req.IsExtraBook,
				DistributedAt: now,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.Insert(ctx, tx, dist); err != nil {
				// Two operators assigning the same book can race past the
				// FindByBook check.
				if db.IsDuplicateKeyErr(err) {
					return domain.ErrAlreadyAssigned
				}
				return err
			}
		} else {
			dist = existing
			dist.MemberID = memberID
			dist.ContactName = strings.TrimSpace(req.ContactName)
			dist.ContactPhone = strings.TrimSpace(req.ContactPhone)
			dist.IsExtraBook = req.IsExtraBook
			dist.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, dist); err != nil {
				return err
			}
		}

		rows := make([]domain.Segment, 0, len(segments))
		for _, seg := range segments {
			rows = append(rows, domain.Segment{
				ID:             s.genID.Generate(),
				DistributionID: dist.ID,
				LevelNumber:    seg.LevelNumber,
				Value:          seg.Value,
			})
		}
		if err := s.repo.ReplaceSegments(ctx, tx, dist.ID, rows); err != nil {
			return err
		}
		dist.Segments = rows

		return s.eventRepo.UpdateBookStatus(ctx, tx, book.ID, eventdomain.BookStatusDistributed)
	})
	if err != nil {
		return domain.AssignResponse{}, err
	}

	return domain.AssignResponse{
		Outcome:      outcome,
		Distribution: *dist,
		Path:         dist.Path(),
	}, nil
}

// SetReturned toggles the operator-facing return flag. It is deliberately
// independent of payment state: a book may come back while still owing money.
func (s *Service) SetReturned(ctx context.Context, req domain.SetReturnedRequest) (domain.Distribution, error) {
	dist, err := s.findScoped(ctx, req.DistributionID)
	if err != nil {
		return domain.Distribution{}, err
	}

	dist.IsReturned = req.Returned
	dist.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, dist); err != nil {
		return domain.Distribution{}, err
	}
	return *dist, nil
}

func (s *Service) GetByBook(ctx context.Context, eventID string, bookNumber int) (domain.Distribution, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return domain.Distribution{}, err
	}

	book, err := s.eventRepo.FindBookByNumber(ctx, s.db, event.ID, bookNumber)
	if err != nil {
		return domain.Distribution{}, err
	}
	if book == nil {
		return domain.Distribution{}, domain.ErrInvalidBookNumber
	}

	dist, err := s.repo.FindByBook(ctx, s.db, book.ID)
	if err != nil {
		return domain.Distribution{}, err
	}
	if dist == nil {
		return domain.Distribution{}, domain.ErrNotFound
	}
	return *dist, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID string, filter domain.ListFilter) ([]domain.Distribution, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByEvent(ctx, s.db, event.ID, filter)
	if err != nil {
		return nil, err
	}

	dists := make([]domain.Distribution, 0, len(items))
	for _, item := range items {
		dists = append(dists, *item)
	}
	return dists, nil
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

// findScoped resolves a distribution and checks it belongs to the caller's
// community via its book's event.
func (s *Service) findScoped(ctx context.Context, rawID string) (*domain.Distribution, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	dist, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		return nil, domain.ErrNotFound
	}

	book, err := s.eventRepo.FindBook(ctx, s.db, dist.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}
	event, err := s.eventRepo.FindByID(ctx, s.db, communityID, book.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return dist, nil
}

func normalizeSegments(inputs []domain.SegmentInput) ([]domain.SegmentInput, error) {
	if len(inputs) == 0 || len(inputs) > domain.MaxLevels {
		return nil, domain.ErrInvalidSegment
	}

	seen := make(map[int]bool, len(inputs))
	out := make([]domain.SegmentInput, 0, len(inputs))
	for _, in := range inputs {
		if in.LevelNumber < 1 || in.LevelNumber > domain.MaxLevels || seen[in.LevelNumber] {
			return nil, domain.ErrInvalidSegment
		}
		value := strings.TrimSpace(in.Value)
		if value == "" {
			return nil, domain.ErrInvalidSegment
		}
		seen[in.LevelNumber] = true
		out = append(out, domain.SegmentInput{LevelNumber: in.LevelNumber, Value: value})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].LevelNumber < out[j].LevelNumber })
	return out, nil
}
