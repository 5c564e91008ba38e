package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/authorization"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	distrepository "github.com/commonshq/samiti/internal/distribution/repository"
	distservice "github.com/commonshq/samiti/internal/distribution/service"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	eventrepository "github.com/commonshq/samiti/internal/event/repository"
	eventservice "github.com/commonshq/samiti/internal/event/service"
	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	paymentrepository "github.com/commonshq/samiti/internal/payment/repository"
	paymentservice "github.com/commonshq/samiti/internal/payment/service"
	"github.com/commonshq/samiti/internal/report/domain"
	"github.com/commonshq/samiti/internal/report/parser"
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
	ctx      context.Context
	eventID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:reportsvc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&eventdomain.Event{}, &eventdomain.Book{},
		&distdomain.Level{}, &distdomain.LevelValue{},
		&distdomain.Distribution{}, &distdomain.Segment{},
		&paymentdomain.Collection{},
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
		DB: db, Log: zap.NewNop(),
		Events: events, Dists: dists, Payments: payments, PaymentRepo: paymentRepo,
	})

	communityID := node.Generate()
	ctx := tenantctx.WithCommunityID(context.Background(), int64(communityID))
	ctx = tenantctx.WithUserID(ctx, int64(node.Generate()))

	event, err := events.Create(ctx, eventdomain.CreateEventRequest{
		Name:              "Ganesh Utsav Draw",
		TotalBooks:        3,
		TicketsPerBook:    10,
		PricePerTicket:    100,
		FirstTicketNumber: 1,
	})
	require.NoError(t, err)
	_, err = events.GenerateBooks(ctx, eventdomain.GenerateBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	_, err = dists.CreateLevel(ctx, distdomain.CreateLevelRequest{
		EventID: event.ID.String(), LevelNumber: 1, Name: "Wing", Values: []string{"A", "B"},
	})
	require.NoError(t, err)

	return &fixture{
		svc: svc, events: events, dists: dists, payments: payments,
		db: db, ctx: ctx, eventID: event.ID.String(),
	}
}

func (f *fixture) assign(t *testing.T, bookNumber int, wing, contact string) distdomain.Distribution {
	t.Helper()
	resp, err := f.dists.Assign(f.ctx, distdomain.AssignRequest{
		EventID:     f.eventID,
		BookNumber:  bookNumber,
		ContactName: contact,
		Segments: []distdomain.SegmentInput{
			{LevelNumber: 1, Value: wing},
		},
	})
	require.NoError(t, err)
	return resp.Distribution
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func collectionCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&paymentdomain.Collection{}).Count(&n).Error)
	return n
}

func TestExportRowsAndAnchors(t *testing.T) {
	f := newFixture(t)

	d1 := f.assign(t, 1, "A", "Asha Patil")
	f.assign(t, 2, "B", "Ravi Kumar")

	_, err := f.payments.Record(f.ctx, paymentdomain.RecordPaymentRequest{
		DistributionID: d1.ID.String(), AmountPaid: 400, PaymentMethod: "cash", PaymentDate: date(2025, 3, 10),
	})
	require.NoError(t, err)

	data, err := f.svc.Export(f.ctx, domain.ExportRequest{EventID: f.eventID})
	require.NoError(t, err)

	rows, err := parser.ParseWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "A", first.LevelValues[0])
	assert.Equal(t, "Asha Patil", first.MemberName)
	assert.Equal(t, 1, first.BookNumber)
	assert.Equal(t, int64(1), first.TicketStart)
	assert.Equal(t, int64(10), first.TicketEnd)
	assert.Equal(t, int64(1000), first.ExpectedAmount)
	assert.Equal(t, int64(400), first.AmountPaid)
	assert.Equal(t, int64(600), first.Outstanding)
	assert.Equal(t, parser.StatusPartiallyPaid, first.Status)
	assert.Equal(t, []string{"cash"}, first.PaymentMethods)
	assert.False(t, first.Returned)

	second := rows[1]
	assert.Equal(t, parser.StatusUnpaid, second.Status)
	assert.Equal(t, int64(0), second.AmountPaid)
}

func TestReimportUnchangedExportWritesNothing(t *testing.T) {
	f := newFixture(t)

	d1 := f.assign(t, 1, "A", "Asha Patil")
	f.assign(t, 2, "B", "Ravi Kumar")
	_, err := f.payments.Record(f.ctx, paymentdomain.RecordPaymentRequest{
		DistributionID: d1.ID.String(), AmountPaid: 1000, PaymentMethod: "upi", PaymentDate: date(2025, 3, 10),
	})
	require.NoError(t, err)

	data, err := f.svc.Export(f.ctx, domain.ExportRequest{EventID: f.eventID})
	require.NoError(t, err)

	before := collectionCount(t, f.db)
	resp, err := f.svc.Import(f.ctx, domain.ImportRequest{EventID: f.eventID, Data: data})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.RowsProcessed)
	assert.Equal(t, 0, resp.PaymentsRecorded)
	assert.Equal(t, 0, resp.ReturnsUpdated)
	assert.Equal(t, 0, resp.RowsSkipped)
	assert.Equal(t, before, collectionCount(t, f.db))
}

func TestImportRecordsPaymentDifference(t *testing.T) {
	f := newFixture(t)

	d1 := f.assign(t, 1, "A", "Asha Patil")
	_, err := f.payments.Record(f.ctx, paymentdomain.RecordPaymentRequest{
		DistributionID: d1.ID.String(), AmountPaid: 400, PaymentMethod: "cash", PaymentDate: date(2025, 3, 10),
	})
	require.NoError(t, err)

	data, err := f.svc.Export(f.ctx, domain.ExportRequest{EventID: f.eventID})
	require.NoError(t, err)

	// Collector marks the book settled and returned on paper.
	rows, err := parser.ParseWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	rows[0].AmountPaid = 1000
	rows[0].Outstanding = 0
	rows[0].Status = parser.StatusFullyPaid
	rows[0].PaymentDates = append(rows[0].PaymentDates, date(2025, 3, 25))
	rows[0].PaymentMethods = append(rows[0].PaymentMethods, "upi")
	rows[0].Returned = true

	edited, err := parser.BuildWorkbook([]string{"Wing"}, rows)
	require.NoError(t, err)

	resp, err := f.svc.Import(f.ctx, domain.ImportRequest{EventID: f.eventID, Data: edited})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.PaymentsRecorded)
	assert.Equal(t, 1, resp.ReturnsUpdated)

	status, err := f.payments.StatusFor(f.ctx, d1.ID.String())
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StateFullyPaid, status.State)
	assert.Equal(t, int64(1000), status.TotalPaid)

	dist, err := f.dists.GetByBook(f.ctx, f.eventID, 1)
	require.NoError(t, err)
	assert.True(t, dist.IsReturned)

	// A second pass over the same sheet is a no-op.
	again, err := f.svc.Import(f.ctx, domain.ImportRequest{EventID: f.eventID, Data: edited})
	require.NoError(t, err)
	assert.Equal(t, 0, again.PaymentsRecorded)
	assert.Equal(t, 0, again.ReturnsUpdated)
}

func TestImportSkipsUnknownBookNumbers(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 1, "A", "Asha Patil")

	data, err := f.svc.Export(f.ctx, domain.ExportRequest{EventID: f.eventID})
	require.NoError(t, err)

	rows, err := parser.ParseWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	rows[0].BookNumber = 99

	edited, err := parser.BuildWorkbook(nil, rows)
	require.NoError(t, err)

	resp, err := f.svc.Import(f.ctx, domain.ImportRequest{EventID: f.eventID, Data: edited})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RowsSkipped)
	assert.Equal(t, 0, resp.RowsProcessed)
}

func TestImportRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Import(f.ctx, domain.ImportRequest{EventID: f.eventID, Data: []byte("junk")})
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)
}
