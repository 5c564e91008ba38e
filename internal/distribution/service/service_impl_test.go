package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/distribution/domain"
	"github.com/commonshq/samiti/internal/distribution/repository"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	eventrepository "github.com/commonshq/samiti/internal/event/repository"
	eventservice "github.com/commonshq/samiti/internal/event/service"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	events  eventdomain.Service
	db      *gorm.DB
	ctx     context.Context
	eventID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:distsvc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&eventdomain.Event{}, &eventdomain.Book{},
		&domain.Level{}, &domain.LevelValue{},
		&domain.Distribution{}, &domain.Segment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	eventRepo := eventrepository.Provide()
	events := eventservice.New(eventservice.Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: eventRepo})
	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide(), EventRepo: eventRepo})

	ctx := tenantctx.WithCommunityID(context.Background(), int64(node.Generate()))

	event, err := events.Create(ctx, eventdomain.CreateEventRequest{
		Name:              "Society Raffle",
		TotalBooks:        5,
		TicketsPerBook:    10,
		PricePerTicket:    100,
		FirstTicketNumber: 1,
	})
	require.NoError(t, err)
	_, err = events.GenerateBooks(ctx, eventdomain.GenerateBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	return &fixture{svc: svc, events: events, db: db, ctx: ctx, eventID: event.ID.String()}
}

func TestAssignCreatesThenUpdates(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Assign(f.ctx, domain.AssignRequest{
		EventID:    f.eventID,
		BookNumber: 1,
		Segments: []domain.SegmentInput{
			{LevelNumber: 2, Value: "3"},
			{LevelNumber: 1, Value: "A"},
			{LevelNumber: 3, Value: "301"},
		},
		ContactName:  "Asha",
		ContactPhone: "+91 98765 43210",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, resp.Outcome)
	assert.Equal(t, "A > 3 > 301", resp.Path)
	assert.Equal(t, "A", resp.Distribution.LevelOneValue())

	again, err := f.svc.Assign(f.ctx, domain.AssignRequest{
		EventID:    f.eventID,
		BookNumber: 1,
		Segments: []domain.SegmentInput{
			{LevelNumber: 1, Value: "B"},
			{LevelNumber: 2, Value: "1"},
		},
		ContactName: "Ravi",
		IsExtraBook: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeUpdated, again.Outcome)
	assert.Equal(t, resp.Distribution.ID, again.Distribution.ID)
	assert.Equal(t, "B > 1", again.Path)
	assert.True(t, again.Distribution.IsExtraBook)

	var count int64
	require.NoError(t, f.db.Model(&domain.Distribution{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignMarksBookDistributed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Assign(f.ctx, domain.AssignRequest{
		EventID:    f.eventID,
		BookNumber: 2,
		Segments:   []domain.SegmentInput{{LevelNumber: 1, Value: "C"}},
	})
	require.NoError(t, err)

	books, err := f.events.ListBooks(f.ctx, f.eventID)
	require.NoError(t, err)
	assert.Equal(t, eventdomain.BookStatusDistributed, books[1].Status)
	assert.Equal(t, eventdomain.BookStatusAvailable, books[0].Status)
}

func TestAssignSegmentValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name     string
		segments []domain.SegmentInput
	}{
		{"empty", nil},
		{"too deep", []domain.SegmentInput{{LevelNumber: 1, Value: "A"}, {LevelNumber: 2, Value: "B"}, {LevelNumber: 3, Value: "C"}, {LevelNumber: 3, Value: "D"}}},
		{"duplicate level", []domain.SegmentInput{{LevelNumber: 1, Value: "A"}, {LevelNumber: 1, Value: "B"}}},
		{"level out of range", []domain.SegmentInput{{LevelNumber: 4, Value: "A"}}},
		{"blank value", []domain.SegmentInput{{LevelNumber: 1, Value: "  "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Assign(f.ctx, domain.AssignRequest{
				EventID:    f.eventID,
				BookNumber: 1,
				Segments:   tc.segments,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidSegment)
		})
	}
}

func TestAssignUnknownBookNumber(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Assign(f.ctx, domain.AssignRequest{
		EventID:    f.eventID,
		BookNumber: 99,
		Segments:   []domain.SegmentInput{{LevelNumber: 1, Value: "A"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBookNumber)
}

func TestSetReturnedIndependentOfPayments(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Assign(f.ctx, domain.AssignRequest{
		EventID:    f.eventID,
		BookNumber: 3,
		Segments:   []domain.SegmentInput{{LevelNumber: 1, Value: "A"}},
	})
	require.NoError(t, err)

	dist, err := f.svc.SetReturned(f.ctx, domain.SetReturnedRequest{
		DistributionID: resp.Distribution.ID.String(),
		Returned:       true,
	})
	require.NoError(t, err)
	assert.True(t, dist.IsReturned)

	dist, err = f.svc.SetReturned(f.ctx, domain.SetReturnedRequest{
		DistributionID: resp.Distribution.ID.String(),
		Returned:       false,
	})
	require.NoError(t, err)
	assert.False(t, dist.IsReturned)
}

func TestListByEventLevelFilter(t *testing.T) {
	f := newFixture(t)

	for i, wing := range []string{"A", "A", "B"} {
		_, err := f.svc.Assign(f.ctx, domain.AssignRequest{
			EventID:    f.eventID,
			BookNumber: i + 1,
			Segments: []domain.SegmentInput{
				{LevelNumber: 1, Value: wing},
				{LevelNumber: 2, Value: "1"},
			},
		})
		require.NoError(t, err)
	}

	all, err := f.svc.ListByEvent(f.ctx, f.eventID, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	wingA, err := f.svc.ListByEvent(f.ctx, f.eventID, domain.ListFilter{
		LevelValues: map[int]string{1: "A"},
	})
	require.NoError(t, err)
	assert.Len(t, wingA, 2)
	for _, dist := range wingA {
		assert.Equal(t, "A", dist.LevelOneValue())
	}
}

func TestCreateLevelValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateLevel(f.ctx, domain.CreateLevelRequest{EventID: f.eventID, LevelNumber: 0, Name: "Wing"})
	assert.ErrorIs(t, err, domain.ErrInvalidLevelNumber)

	_, err = f.svc.CreateLevel(f.ctx, domain.CreateLevelRequest{EventID: f.eventID, LevelNumber: 4, Name: "Wing"})
	assert.ErrorIs(t, err, domain.ErrInvalidLevelNumber)

	_, err = f.svc.CreateLevel(f.ctx, domain.CreateLevelRequest{EventID: f.eventID, LevelNumber: 1, Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidLevelName)

	level, err := f.svc.CreateLevel(f.ctx, domain.CreateLevelRequest{
		EventID:     f.eventID,
		LevelNumber: 1,
		Name:        "Wing",
		Values:      []string{"A", "B", " ", "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, level.Values)

	listed, err := f.svc.ListLevels(f.ctx, f.eventID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Wing", listed[0].Level.Name)
}
