package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/config"
	"github.com/commonshq/samiti/internal/member/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/nyaruka/phonenumbers"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Config,
		db:    p.DB,
		log:   p.Log.Named("member.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateFieldDef(ctx context.Context, req domain.CreateFieldDefRequest) (domain.FieldDef, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.FieldDef{}, domain.ErrInvalidCommunity
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.FieldDef{}, domain.ErrInvalidName
	}

	switch req.FieldType {
	case domain.FieldTypeText, domain.FieldTypeNumber, domain.FieldTypeDate:
		if len(req.Options) > 0 {
			return domain.FieldDef{}, domain.ErrInvalidOptions
		}
	case domain.FieldTypeSelect:
		if len(req.Options) == 0 {
			return domain.FieldDef{}, domain.ErrInvalidOptions
		}
	default:
		return domain.FieldDef{}, domain.ErrInvalidFieldType
	}

	existing, err := s.repo.ListFieldDefs(ctx, s.db, communityID)
	if err != nil {
		return domain.FieldDef{}, err
	}
	for _, def := range existing {
		if strings.EqualFold(def.Name, name) {
			return domain.FieldDef{}, domain.ErrDuplicateField
		}
	}

	def := domain.FieldDef{
		ID:          s.genID.Generate(),
		CommunityID: communityID,
		Name:        name,
		FieldType:   req.FieldType,
		Options:     req.Options,
		Required:    req.Required,
		Position:    req.Position,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.InsertFieldDef(ctx, s.db, &def); err != nil {
		return domain.FieldDef{}, err
	}
	return def, nil
}

func (s *Service) ListFieldDefs(ctx context.Context) ([]domain.FieldDef, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	items, err := s.repo.ListFieldDefs(ctx, s.db, communityID)
	if err != nil {
		return nil, err
	}

	defs := make([]domain.FieldDef, 0, len(items))
	for _, item := range items {
		defs = append(defs, *item)
	}
	return defs, nil
}

func (s *Service) DeleteFieldDef(ctx context.Context, rawID string) error {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.ErrInvalidCommunity
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	def, err := s.repo.FindFieldDef(ctx, s.db, communityID, id)
	if err != nil {
		return err
	}
	if def == nil {
		return domain.ErrNotFound
	}
	return s.repo.DeleteFieldDef(ctx, s.db, communityID, id)
}

func (s *Service) Create(ctx context.Context, req domain.CreateMemberRequest) (domain.Member, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.Member{}, domain.ErrInvalidCommunity
	}

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return domain.Member{}, domain.ErrInvalidName
	}

	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return domain.Member{}, err
	}

	defs, err := s.repo.ListFieldDefs(ctx, s.db, communityID)
	if err != nil {
		return domain.Member{}, err
	}
	values, err := s.validateAttributes(defs, req.Attributes)
	if err != nil {
		return domain.Member{}, err
	}

	now := time.Now().UTC()
	member := domain.Member{
		ID:          s.genID.Generate(),
		CommunityID: communityID,
		FullName:    name,
		Phone:       phone,
		Email:       strings.TrimSpace(req.Email),
		CreatedAt:   now,
		UpdatedAt:   now,
		Attributes:  attributeBag(defs, values),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &member); err != nil {
			return err
		}
		return s.replaceValues(ctx, tx, member.ID, values)
	})
	if err != nil {
		return domain.Member{}, err
	}
	return member, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateMemberRequest) (domain.Member, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.Member{}, domain.ErrInvalidCommunity
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Member{}, err
	}

	member, err := s.repo.FindByID(ctx, s.db, communityID, id)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return domain.Member{}, domain.ErrInvalidName
	}

	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return domain.Member{}, err
	}

	defs, err := s.repo.ListFieldDefs(ctx, s.db, communityID)
	if err != nil {
		return domain.Member{}, err
	}
	values, err := s.validateAttributes(defs, req.Attributes)
	if err != nil {
		return domain.Member{}, err
	}

	member.FullName = name
	member.Phone = phone
	member.Email = strings.TrimSpace(req.Email)
	member.UpdatedAt = time.Now().UTC()
	member.Attributes = attributeBag(defs, values)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, member); err != nil {
			return err
		}
		return s.replaceValues(ctx, tx, member.ID, values)
	})
	if err != nil {
		return domain.Member{}, err
	}
	return *member, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Member, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.Member{}, domain.ErrInvalidCommunity
	}

	id, err := parseID(rawID)
	if err != nil {
		return domain.Member{}, err
	}

	member, err := s.repo.FindByID(ctx, s.db, communityID, id)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrNotFound
	}

	if err := s.loadAttributes(ctx, communityID, []*domain.Member{member}); err != nil {
		return domain.Member{}, err
	}
	return *member, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Member, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	items, err := s.repo.List(ctx, s.db, communityID, filter)
	if err != nil {
		return nil, err
	}
	if err := s.loadAttributes(ctx, communityID, items); err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(items))
	for _, item := range items {
		members = append(members, *item)
	}
	return members, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.ErrInvalidCommunity
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	member, err := s.repo.FindByID(ctx, s.db, communityID, id)
	if err != nil {
		return err
	}
	if member == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, communityID, id)
	})
}

// validateAttributes checks the bag against the community's definitions
// and returns the rows to persist. Blank values on optional fields are
// dropped rather than stored.
func (s *Service) validateAttributes(defs []*domain.FieldDef, attrs map[string]string) ([]domain.FieldValue, error) {
	byName := make(map[string]*domain.FieldDef, len(defs))
	for _, def := range defs {
		byName[strings.ToLower(def.Name)] = def
	}

	for name := range attrs {
		if _, ok := byName[strings.ToLower(name)]; !ok {
			return nil, domain.ErrUnknownAttribute
		}
	}

	var values []domain.FieldValue
	for _, def := range defs {
		raw := ""
		for name, v := range attrs {
			if strings.EqualFold(name, def.Name) {
				raw = strings.TrimSpace(v)
				break
			}
		}

		if raw == "" {
			if def.Required {
				return nil, domain.ErrRequiredAttribute
			}
			continue
		}

		switch def.FieldType {
		case domain.FieldTypeNumber:
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return nil, domain.ErrInvalidAttribute
			}
		case domain.FieldTypeDate:
			if _, err := time.Parse("2006-01-02", raw); err != nil {
				return nil, domain.ErrInvalidAttribute
			}
		case domain.FieldTypeSelect:
			found := false
			for _, opt := range def.Options {
				if opt == raw {
					found = true
					break
				}
			}
			if !found {
				return nil, domain.ErrInvalidAttribute
			}
		}

		values = append(values, domain.FieldValue{
			ID:         s.genID.Generate(),
			FieldDefID: def.ID,
			Value:      raw,
		})
	}
	return values, nil
}

func (s *Service) replaceValues(ctx context.Context, tx *gorm.DB, memberID snowflake.ID, values []domain.FieldValue) error {
	for i := range values {
		values[i].MemberID = memberID
	}
	return s.repo.ReplaceValues(ctx, tx, memberID, values)
}

func (s *Service) loadAttributes(ctx context.Context, communityID snowflake.ID, members []*domain.Member) error {
	if len(members) == 0 {
		return nil
	}

	defs, err := s.repo.ListFieldDefs(ctx, s.db, communityID)
	if err != nil {
		return err
	}
	defByID := make(map[snowflake.ID]*domain.FieldDef, len(defs))
	for _, def := range defs {
		defByID[def.ID] = def
	}

	ids := make([]snowflake.ID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	valuesByMember, err := s.repo.LoadValues(ctx, s.db, ids)
	if err != nil {
		return err
	}

	for _, m := range members {
		m.Attributes = make(map[string]string)
		for _, v := range valuesByMember[m.ID] {
			if def, ok := defByID[v.FieldDefID]; ok {
				m.Attributes[def.Name] = v.Value
			}
		}
	}
	return nil
}

func attributeBag(defs []*domain.FieldDef, values []domain.FieldValue) map[string]string {
	defByID := make(map[snowflake.ID]*domain.FieldDef, len(defs))
	for _, def := range defs {
		defByID[def.ID] = def
	}

	bag := make(map[string]string, len(values))
	for _, v := range values {
		if def, ok := defByID[v.FieldDefID]; ok {
			bag[def.Name] = v.Value
		}
	}
	return bag
}

// normalizePhone stores phones in E.164 so WhatsApp links and search
// behave the same no matter how the number was typed.
func (s *Service) normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, s.cfg.DefaultCountry)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", domain.ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
