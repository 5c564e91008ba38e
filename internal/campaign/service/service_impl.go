package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/campaign/domain"
	"github.com/commonshq/samiti/internal/config"
	memberdomain "github.com/commonshq/samiti/internal/member/domain"
	"github.com/commonshq/samiti/internal/observability/logger"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/commonshq/samiti/pkg/whatsapp"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultTemplate is used when a campaign has no message of its own.
// Placeholders: {name}, {campaign}, {amount}, {due_date}.
const defaultTemplate = "Hello {name}, a payment of {amount} for {campaign} is pending. Please pay by {due_date}."

type Params struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	MemberRepo memberdomain.Repository
}

type Service struct {
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	memberRepo memberdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:        p.Config,
		db:         p.DB,
		log:        p.Log.Named("campaign.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		memberRepo: p.MemberRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.Campaign{}, domain.ErrInvalidCommunity
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Campaign{}, domain.ErrInvalidName
	}
	if req.AmountDue <= 0 {
		return domain.Campaign{}, domain.ErrInvalidAmount
	}

	template := strings.TrimSpace(req.MessageTemplate)
	if template == "" {
		template = defaultTemplate
	}

	now := time.Now().UTC()
	campaign := domain.Campaign{
		ID:              s.genID.Generate(),
		CommunityID:     communityID,
		Name:            name,
		Slug:            slug.Make(name),
		AmountDue:       req.AmountDue,
		DueDate:         req.DueDate,
		MessageTemplate: template,
		Status:          domain.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Campaign, error) {
	campaign, err := s.findScoped(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Campaign, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	items, err := s.repo.List(ctx, s.db, communityID)
	if err != nil {
		return nil, err
	}

	campaigns := make([]domain.Campaign, 0, len(items))
	for _, item := range items {
		campaigns = append(campaigns, *item)
	}
	return campaigns, nil
}

func (s *Service) Close(ctx context.Context, id string) (domain.Campaign, error) {
	campaign, err := s.findScoped(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	if err := s.repo.UpdateStatus(ctx, s.db, campaign.ID, domain.StatusClosed); err != nil {
		return domain.Campaign{}, err
	}
	campaign.Status = domain.StatusClosed
	return *campaign, nil
}

// RecordEntry upserts a member's payment for the campaign: one entry per
// member, repeated payments accumulate.
func (s *Service) RecordEntry(ctx context.Context, req domain.RecordEntryRequest) (domain.Entry, error) {
	campaign, err := s.findScoped(ctx, req.CampaignID)
	if err != nil {
		return domain.Entry{}, err
	}
	if campaign.Status == domain.StatusClosed {
		return domain.Entry{}, domain.ErrCampaignClosed
	}

	if req.AmountPaid <= 0 {
		return domain.Entry{}, domain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return domain.Entry{}, domain.ErrInvalidMethod
	}
	if req.PaidAt.IsZero() {
		return domain.Entry{}, domain.ErrInvalidPaidAt
	}

	memberID, err := snowflake.ParseString(strings.TrimSpace(req.MemberID))
	if err != nil || memberID == 0 {
		return domain.Entry{}, domain.ErrInvalidID
	}
	member, err := s.memberRepo.FindByID(ctx, s.db, campaign.CommunityID, memberID)
	if err != nil {
		return domain.Entry{}, err
	}
	if member == nil {
		return domain.Entry{}, domain.ErrNotFound
	}

	var recordedBy *snowflake.ID
	if userID, ok := tenantctx.UserIDFromContext(ctx); ok && userID != 0 {
		recordedBy = &userID
	}

	paidAt := req.PaidAt.UTC()
	now := time.Now().UTC()

	var out domain.Entry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindEntry(ctx, tx, campaign.ID, memberID)
		if err != nil {
			return err
		}

		if entry == nil {
			entry = &domain.Entry{
				ID:            s.genID.Generate(),
				CampaignID:    campaign.ID,
				MemberID:      memberID,
				AmountPaid:    req.AmountPaid,
				PaymentMethod: method,
				PaidAt:        &paidAt,
				RecordedBy:    recordedBy,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.InsertEntry(ctx, tx, entry); err != nil {
				return err
			}
			out = *entry
			return nil
		}

		entry.AmountPaid += req.AmountPaid
		entry.PaymentMethod = method
		entry.PaidAt = &paidAt
		entry.RecordedBy = recordedBy
		entry.UpdatedAt = now
		if err := s.repo.UpdateEntry(ctx, tx, entry); err != nil {
			return err
		}
		out = *entry
		return nil
	})
	if err != nil {
		return domain.Entry{}, err
	}
	return out, nil
}

func (s *Service) ListEntries(ctx context.Context, campaignID string) ([]domain.Entry, error) {
	campaign, err := s.findScoped(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListEntries(ctx, s.db, campaign.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, *item)
	}
	return entries, nil
}

func (s *Service) Summary(ctx context.Context, campaignID string) (domain.CampaignSummary, error) {
	campaign, err := s.findScoped(ctx, campaignID)
	if err != nil {
		return domain.CampaignSummary{}, err
	}

	members, err := s.memberRepo.List(ctx, s.db, campaign.CommunityID, memberdomain.ListFilter{})
	if err != nil {
		return domain.CampaignSummary{}, err
	}
	entries, err := s.repo.ListEntries(ctx, s.db, campaign.ID)
	if err != nil {
		return domain.CampaignSummary{}, err
	}

	summary := domain.CampaignSummary{
		Campaign:       *campaign,
		MembersTotal:   len(members),
		AmountExpected: campaign.AmountDue * int64(len(members)),
	}
	for _, entry := range entries {
		summary.AmountPaid += entry.AmountPaid
		if entry.Settled(campaign.AmountDue) {
			summary.MembersSettled++
		}
	}
	return summary, nil
}

// ReminderLinks builds one WhatsApp deep link per member who still owes
// money. Members without a usable phone number are counted, not failed.
func (s *Service) ReminderLinks(ctx context.Context, campaignID string) (domain.ReminderResponse, error) {
	campaign, err := s.findScoped(ctx, campaignID)
	if err != nil {
		return domain.ReminderResponse{}, err
	}

	members, err := s.memberRepo.List(ctx, s.db, campaign.CommunityID, memberdomain.ListFilter{})
	if err != nil {
		return domain.ReminderResponse{}, err
	}
	entries, err := s.repo.ListEntries(ctx, s.db, campaign.ID)
	if err != nil {
		return domain.ReminderResponse{}, err
	}
	paidByMember := make(map[snowflake.ID]int64, len(entries))
	for _, entry := range entries {
		paidByMember[entry.MemberID] = entry.AmountPaid
	}

	var resp domain.ReminderResponse
	for _, member := range members {
		outstanding := campaign.AmountDue - paidByMember[member.ID]
		if outstanding <= 0 {
			continue
		}

		message := renderTemplate(campaign.MessageTemplate, member.FullName, *campaign, outstanding)
		link, err := whatsapp.Link(member.Phone, s.cfg.DefaultCountry, message)
		if err != nil {
			resp.MembersSkipped++
			continue
		}

		resp.Links = append(resp.Links, domain.ReminderLink{
			MemberID:    member.ID,
			MemberName:  member.FullName,
			Phone:       member.Phone,
			Outstanding: outstanding,
			Link:        link,
		})
	}

	logger.WithContext(ctx, s.log).Info("reminder links built",
		zap.String("campaign", campaign.Slug),
		zap.Int("links", len(resp.Links)),
		zap.Int("skipped", resp.MembersSkipped),
	)
	return resp, nil
}

func renderTemplate(template, memberName string, campaign domain.Campaign, outstanding int64) string {
	dueDate := ""
	if campaign.DueDate != nil {
		dueDate = campaign.DueDate.Format("2006-01-02")
	}

	r := strings.NewReplacer(
		"{name}", memberName,
		"{campaign}", campaign.Name,
		"{amount}", strconv.FormatInt(outstanding, 10),
		"{due_date}", dueDate,
	)
	return r.Replace(template)
}

func (s *Service) findScoped(ctx context.Context, rawID string) (*domain.Campaign, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	campaign, err := s.repo.FindByID(ctx, s.db, communityID, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, domain.ErrNotFound
	}
	return campaign, nil
}
