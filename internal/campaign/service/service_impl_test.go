package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/campaign/domain"
	"github.com/commonshq/samiti/internal/campaign/repository"
	"github.com/commonshq/samiti/internal/config"
	memberdomain "github.com/commonshq/samiti/internal/member/domain"
	memberrepository "github.com/commonshq/samiti/internal/member/repository"
	memberservice "github.com/commonshq/samiti/internal/member/service"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	members memberdomain.Service
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:campsvc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&memberdomain.FieldDef{}, &memberdomain.Member{}, &memberdomain.FieldValue{},
		&domain.Campaign{}, &domain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{DefaultCountry: "IN"}
	memberRepo := memberrepository.Provide()
	members := memberservice.New(memberservice.Params{
		Config: cfg, DB: db, Log: zap.NewNop(), GenID: node, Repo: memberRepo,
	})
	svc := New(Params{
		Config: cfg, DB: db, Log: zap.NewNop(), GenID: node,
		Repo: repository.Provide(), MemberRepo: memberRepo,
	})

	ctx := tenantctx.WithCommunityID(context.Background(), int64(node.Generate()))
	ctx = tenantctx.WithUserID(ctx, int64(node.Generate()))

	return &fixture{svc: svc, members: members, ctx: ctx}
}

func (f *fixture) addMember(t *testing.T, name, phone string) memberdomain.Member {
	t.Helper()
	member, err := f.members.Create(f.ctx, memberdomain.CreateMemberRequest{FullName: name, Phone: phone})
	require.NoError(t, err)
	return member
}

func (f *fixture) createCampaign(t *testing.T) domain.Campaign {
	t.Helper()
	due := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	campaign, err := f.svc.Create(f.ctx, domain.CreateCampaignRequest{
		Name:      "Annual Maintenance 2025",
		AmountDue: 600,
		DueDate:   &due,
	})
	require.NoError(t, err)
	return campaign
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateCampaignRequest{Name: " ", AmountDue: 600})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(f.ctx, domain.CreateCampaignRequest{Name: "Fund", AmountDue: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	campaign := f.createCampaign(t)
	assert.Equal(t, "annual-maintenance-2025", campaign.Slug)
	assert.Equal(t, domain.StatusActive, campaign.Status)
	assert.NotEmpty(t, campaign.MessageTemplate)
}

func TestRecordEntryAccumulates(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t)
	member := f.addMember(t, "Asha Patil", "9876543210")

	entry, err := f.svc.RecordEntry(f.ctx, domain.RecordEntryRequest{
		CampaignID: campaign.ID.String(), MemberID: member.ID.String(),
		AmountPaid: 200, PaymentMethod: "cash", PaidAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), entry.AmountPaid)
	assert.False(t, entry.Settled(campaign.AmountDue))

	entry, err = f.svc.RecordEntry(f.ctx, domain.RecordEntryRequest{
		CampaignID: campaign.ID.String(), MemberID: member.ID.String(),
		AmountPaid: 400, PaymentMethod: "upi", PaidAt: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600), entry.AmountPaid)
	assert.True(t, entry.Settled(campaign.AmountDue))

	entries, err := f.svc.ListEntries(f.ctx, campaign.ID.String())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordEntryRejectsClosedCampaign(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t)
	member := f.addMember(t, "Asha Patil", "9876543210")

	_, err := f.svc.Close(f.ctx, campaign.ID.String())
	require.NoError(t, err)

	_, err = f.svc.RecordEntry(f.ctx, domain.RecordEntryRequest{
		CampaignID: campaign.ID.String(), MemberID: member.ID.String(),
		AmountPaid: 600, PaymentMethod: "cash", PaidAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrCampaignClosed)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t)
	asha := f.addMember(t, "Asha Patil", "9876543210")
	f.addMember(t, "Ravi Kumar", "9876500000")

	_, err := f.svc.RecordEntry(f.ctx, domain.RecordEntryRequest{
		CampaignID: campaign.ID.String(), MemberID: asha.ID.String(),
		AmountPaid: 600, PaymentMethod: "cash", PaidAt: time.Now(),
	})
	require.NoError(t, err)

	summary, err := f.svc.Summary(f.ctx, campaign.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.MembersTotal)
	assert.Equal(t, 1, summary.MembersSettled)
	assert.Equal(t, int64(1200), summary.AmountExpected)
	assert.Equal(t, int64(600), summary.AmountPaid)
}

func TestReminderLinksSkipSettledAndBadPhones(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t)
	asha := f.addMember(t, "Asha Patil", "9876543210")
	f.addMember(t, "Ravi Kumar", "9876500000")
	f.addMember(t, "No Phone", "")

	_, err := f.svc.RecordEntry(f.ctx, domain.RecordEntryRequest{
		CampaignID: campaign.ID.String(), MemberID: asha.ID.String(),
		AmountPaid: 600, PaymentMethod: "cash", PaidAt: time.Now(),
	})
	require.NoError(t, err)

	resp, err := f.svc.ReminderLinks(f.ctx, campaign.ID.String())
	require.NoError(t, err)
	require.Len(t, resp.Links, 1)
	assert.Equal(t, 1, resp.MembersSkipped)

	link := resp.Links[0]
	assert.Equal(t, "Ravi Kumar", link.MemberName)
	assert.Equal(t, int64(600), link.Outstanding)
	assert.True(t, strings.HasPrefix(link.Link, "https://wa.me/919876500000?text="), link.Link)
	assert.Contains(t, link.Link, "Ravi+Kumar")
	assert.Contains(t, link.Link, "600")
	assert.Contains(t, link.Link, "2025-04-30")
}

func TestCommunityScoping(t *testing.T) {
	f := newFixture(t)
	campaign := f.createCampaign(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	otherCtx := tenantctx.WithCommunityID(context.Background(), int64(node.Generate()))

	_, err = f.svc.GetByID(otherCtx, campaign.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
