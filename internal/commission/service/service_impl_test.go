package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/authorization"
	"github.com/commonshq/samiti/internal/commission/domain"
	"github.com/commonshq/samiti/internal/commission/repository"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	distrepository "github.com/commonshq/samiti/internal/distribution/repository"
	distservice "github.com/commonshq/samiti/internal/distribution/service"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	eventrepository "github.com/commonshq/samiti/internal/event/repository"
	eventservice "github.com/commonshq/samiti/internal/event/service"
	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	paymentrepository "github.com/commonshq/samiti/internal/payment/repository"
	paymentservice "github.com/commonshq/samiti/internal/payment/service"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type allowAllAuthz struct{}

func (allowAllAuthz) Enforce(ctx context.Context, userID, communityID snowflake.ID, object, action string) (bool, error) {
	return true, nil
}

func (allowAllAuthz) AssignRole(ctx context.Context, userID, communityID snowflake.ID, role string) error {
	return nil
}

func (allowAllAuthz) RolesFor(ctx context.Context, userID, communityID snowflake.ID) ([]string, error) {
	return nil, nil
}

var _ authorization.Service = allowAllAuthz{}

type fixture struct {
	svc      domain.Service
	events   eventdomain.Service
	dists    distdomain.Service
	payments paymentdomain.Service
	db       *gorm.DB
	node     *snowflake.Node
	ctx      context.Context
	eventID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:commsvc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&eventdomain.Event{}, &eventdomain.Book{},
		&distdomain.Distribution{}, &distdomain.Segment{},
		&paymentdomain.Collection{},
		&domain.Settings{}, &domain.Earned{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	eventRepo := eventrepository.Provide()
	distRepo := distrepository.Provide()
	paymentRepo := paymentrepository.Provide()

	events := eventservice.New(eventservice.Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: eventRepo})
	dists := distservice.New(distservice.Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: distRepo, EventRepo: eventRepo})
	payments := paymentservice.New(paymentservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node,
		Repo: paymentRepo, DistRepo: distRepo, EventRepo: eventRepo, AuthzSvc: allowAllAuthz{},
	})
	svc := New(Params{
		DB: db, Log: zap.NewNop(), GenID: node,
		Repo: repository.Provide(), DistRepo: distRepo, EventRepo: eventRepo, PaymentRepo: paymentRepo,
	})

	communityID := node.Generate()
	ctx := tenantctx.WithCommunityID(context.Background(), int64(communityID))
	ctx = tenantctx.WithUserID(ctx, int64(node.Generate()))

	event, err := events.Create(ctx, eventdomain.CreateEventRequest{
		Name:              "Diwali Draw",
		TotalBooks:        5,
		TicketsPerBook:    10,
		PricePerTicket:    100,
		FirstTicketNumber: 1,
	})
	require.NoError(t, err)
	_, err = events.GenerateBooks(ctx, eventdomain.GenerateBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	return &fixture{
		svc: svc, events: events, dists: dists, payments: payments,
		db: db, node: node, ctx: ctx, eventID: event.ID.String(),
	}
}

func (f *fixture) assign(t *testing.T, bookNumber int, wing string, extra bool) distdomain.Distribution {
	t.Helper()
	resp, err := f.dists.Assign(f.ctx, distdomain.AssignRequest{
		EventID:     f.eventID,
		BookNumber:  bookNumber,
		IsExtraBook: extra,
		Segments: []distdomain.SegmentInput{
			{LevelNumber: 1, Value: wing},
		},
	})
	require.NoError(t, err)
	return resp.Distribution
}

func (f *fixture) payFull(t *testing.T, dist distdomain.Distribution, paymentDate time.Time) {
	t.Helper()
	_, err := f.payments.Record(f.ctx, paymentdomain.RecordPaymentRequest{
		DistributionID: dist.ID.String(),
		AmountPaid:     1000,
		PaymentMethod:  "cash",
		PaymentDate:    paymentDate,
	})
	require.NoError(t, err)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	v := date(y, m, d)
	return &v
}

func (f *fixture) configureTiers(t *testing.T) {
	t.Helper()
	_, err := f.svc.UpsertSettings(f.ctx, domain.UpsertSettingsRequest{
		EventID:  f.eventID,
		Early:    domain.TierInput{Enabled: true, PaymentDate: datePtr(2025, 5, 15), Percent: 10},
		Standard: domain.TierInput{Enabled: true, PaymentDate: datePtr(2025, 6, 30), Percent: 5},
		Extra:    domain.TierInput{Enabled: true, Percent: 3},
	})
	require.NoError(t, err)
}

func TestUpsertSettingsValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpsertSettings(f.ctx, domain.UpsertSettingsRequest{
		EventID: f.eventID,
		Early:   domain.TierInput{Enabled: true, PaymentDate: datePtr(2025, 5, 15), Percent: 120},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPercent)

	_, err = f.svc.UpsertSettings(f.ctx, domain.UpsertSettingsRequest{
		EventID:  f.eventID,
		Standard: domain.TierInput{Enabled: true, Percent: 5},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTierDate)

	_, err = f.svc.UpsertSettings(f.ctx, domain.UpsertSettingsRequest{EventID: "junk"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpsertSettingsReplacesExisting(t *testing.T) {
	f := newFixture(t)
	f.configureTiers(t)

	_, err := f.svc.UpsertSettings(f.ctx, domain.UpsertSettingsRequest{
		EventID: f.eventID,
		Early:   domain.TierInput{Enabled: true, PaymentDate: datePtr(2025, 5, 20), Percent: 12},
	})
	require.NoError(t, err)

	settings, err := f.svc.GetSettings(f.ctx, f.eventID)
	require.NoError(t, err)
	assert.True(t, settings.EarlyEnabled)
	assert.Equal(t, 12.0, settings.EarlyPercent)
	assert.False(t, settings.StandardEnabled)
	assert.False(t, settings.ExtraEnabled)

	var count int64
	require.NoError(t, f.db.Model(&domain.Settings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSyncTiersAndAmounts(t *testing.T) {
	f := newFixture(t)
	f.configureTiers(t)

	earlyExtra := f.assign(t, 1, "A", true)
	standard := f.assign(t, 2, "A", false)
	late := f.assign(t, 3, "B", false)
	partial := f.assign(t, 4, "B", false)

	f.payFull(t, earlyExtra, date(2025, 5, 10))
	f.payFull(t, standard, date(2025, 6, 1))
	f.payFull(t, late, date(2025, 7, 15))
	_, err := f.payments.Record(f.ctx, paymentdomain.RecordPaymentRequest{
		DistributionID: partial.ID.String(),
		AmountPaid:     400,
		PaymentMethod:  "cash",
		PaymentDate:    date(2025, 5, 1),
	})
	require.NoError(t, err)

	resp, err := f.svc.Sync(f.ctx, domain.SyncRequest{EventID: f.eventID})
	require.NoError(t, err)

	// Book 1 earns extra_books plus early; book 2 earns standard only.
	// Book 3 was settled past both thresholds and book 4 is not fully paid.
	assert.Equal(t, 3, resp.RowsInserted)
	assert.Equal(t, 1, resp.DistributionsSkipped)

	earned, err := f.svc.ListEarned(f.ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, earned, 3)

	byType := map[domain.CommissionType]domain.Earned{}
	for _, row := range earned {
		byType[row.CommissionType] = row
	}

	early, ok := byType[domain.TypeEarly]
	require.True(t, ok)
	assert.Equal(t, earlyExtra.ID, *early.DistributionID)
	assert.Equal(t, "A", early.Level1Value)
	assert.Equal(t, int64(1000), early.PaymentAmount)
	assert.Equal(t, int64(100), early.CommissionAmount)

	extra, ok := byType[domain.TypeExtraBooks]
	require.True(t, ok)
	assert.Equal(t, earlyExtra.ID, *extra.DistributionID)
	assert.Equal(t, int64(30), extra.CommissionAmount)

	std, ok := byType[domain.TypeStandard]
	require.True(t, ok)
	assert.Equal(t, standard.ID, *std.DistributionID)
	assert.Equal(t, int64(50), std.CommissionAmount)
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.configureTiers(t)

	dist := f.assign(t, 1, "A", false)
	f.payFull(t, dist, date(2025, 5, 1))

	first, err := f.svc.Sync(f.ctx, domain.SyncRequest{EventID: f.eventID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.RowsInserted)

	second, err := f.svc.Sync(f.ctx, domain.SyncRequest{EventID: f.eventID})
	require.NoError(t, err)
	assert.Equal(t, 0, second.RowsInserted)

	earned, err := f.svc.ListEarned(f.ctx, f.eventID)
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestSyncSkipsBlankLevelOne(t *testing.T) {
	f := newFixture(t)
	f.configureTiers(t)

	dist := f.assign(t, 1, "A", false)
	f.payFull(t, dist, date(2025, 5, 1))
	require.NoError(t, f.db.Model(&distdomain.Segment{}).
		Where("distribution_id = ?", dist.ID).
		Update("value", "  ").Error)

	resp, err := f.svc.Sync(f.ctx, domain.SyncRequest{EventID: f.eventID})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RowsInserted)
	assert.Equal(t, 1, resp.DistributionsSkipped)
}

func TestCleanupKeepsLowestID(t *testing.T) {
	f := newFixture(t)
	f.configureTiers(t)

	dist := f.assign(t, 1, "A", false)
	f.payFull(t, dist, date(2025, 5, 1))

	_, err := f.svc.Sync(f.ctx, domain.SyncRequest{EventID: f.eventID})
	require.NoError(t, err)

	earned, err := f.svc.ListEarned(f.ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	keeper := earned[0]

	// Replay the historical double-insert.
	dup := keeper
	dup.ID = f.node.Generate()
	require.NoError(t, f.db.Create(&dup).Error)
	dup2 := keeper
	dup2.ID = f.node.Generate()
	require.NoError(t, f.db.Create(&dup2).Error)

	resp, err := f.svc.Cleanup(f.ctx, domain.CleanupRequest{EventID: f.eventID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RowsDeleted)

	earned, err = f.svc.ListEarned(f.ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, keeper.ID, earned[0].ID)

	again, err := f.svc.Cleanup(f.ctx, domain.CleanupRequest{EventID: f.eventID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.RowsDeleted)
}

func TestSummaryByLevel1(t *testing.T) {
	f := newFixture(t)
	f.configureTiers(t)

	a1 := f.assign(t, 1, "A", false)
	a2 := f.assign(t, 2, "A", false)
	b1 := f.assign(t, 3, "B", true)

	f.payFull(t, a1, date(2025, 5, 1))
	f.payFull(t, a2, date(2025, 6, 1))
	f.payFull(t, b1, date(2025, 5, 2))

	_, err := f.svc.Sync(f.ctx, domain.SyncRequest{EventID: f.eventID})
	require.NoError(t, err)

	summary, err := f.svc.SummaryByLevel1(f.ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, "A", summary[0].Level1Value)
	assert.Equal(t, 2, summary[0].Books)
	assert.Equal(t, int64(150), summary[0].CommissionAmount)

	// One extra book still counts once even though it earned two tiers.
	assert.Equal(t, "B", summary[1].Level1Value)
	assert.Equal(t, 1, summary[1].Books)
	assert.Equal(t, int64(130), summary[1].CommissionAmount)
}
