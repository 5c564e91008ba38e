package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/feature/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("feature.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Set(ctx context.Context, req domain.SetRequest) (domain.Feature, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.Feature{}, domain.ErrInvalidCommunity
	}

	code := strings.TrimSpace(strings.ToLower(req.Code))
	if code == "" {
		return domain.Feature{}, domain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = code
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	feature := domain.Feature{
		ID:          s.genID.Generate(),
		CommunityID: communityID,
		Code:        code,
		Name:        name,
		Enabled:     req.Enabled,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, s.db, &feature); err != nil {
		return domain.Feature{}, err
	}
	return feature, nil
}

func (s *Service) IsEnabled(ctx context.Context, code string) (bool, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return false, domain.ErrInvalidCommunity
	}

	feature, err := s.repo.FindByCode(ctx, s.db, communityID, strings.TrimSpace(strings.ToLower(code)))
	if err != nil {
		return false, err
	}
	if feature == nil {
		return true, nil
	}
	return feature.Enabled, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Feature, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	items, err := s.repo.List(ctx, s.db, communityID)
	if err != nil {
		return nil, err
	}

	features := make([]domain.Feature, 0, len(items))
	for _, item := range items {
		features = append(features, *item)
	}
	return features, nil
}
