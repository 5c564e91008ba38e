package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/event/repository"
	"github.com/commonshq/samiti/internal/tenantctx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:eventsvc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Event{}, &domain.Book{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func testContext(node *snowflake.Node) (context.Context, snowflake.ID) {
	communityID := node.Generate()
	ctx := tenantctx.WithCommunityID(context.Background(), int64(communityID))
	return ctx, communityID
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := testContext(node)

	cases := []struct {
		name string
		req  domain.CreateEventRequest
		want error
	}{
		{"missing name", domain.CreateEventRequest{TotalBooks: 1, TicketsPerBook: 1, PricePerTicket: 1, FirstTicketNumber: 1}, domain.ErrInvalidName},
		{"zero books", domain.CreateEventRequest{Name: "Diwali", TotalBooks: 0, TicketsPerBook: 1, PricePerTicket: 1, FirstTicketNumber: 1}, domain.ErrInvalidTotalBooks},
		{"zero tickets", domain.CreateEventRequest{Name: "Diwali", TotalBooks: 1, TicketsPerBook: 0, PricePerTicket: 1, FirstTicketNumber: 1}, domain.ErrInvalidTicketsPerBook},
		{"zero price", domain.CreateEventRequest{Name: "Diwali", TotalBooks: 1, TicketsPerBook: 1, PricePerTicket: 0, FirstTicketNumber: 1}, domain.ErrInvalidPricePerTicket},
		{"zero first ticket", domain.CreateEventRequest{Name: "Diwali", TotalBooks: 1, TicketsPerBook: 1, PricePerTicket: 1, FirstTicketNumber: 0}, domain.ErrInvalidFirstTicketNumber},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := svc.Create(context.Background(), domain.CreateEventRequest{Name: "Diwali", TotalBooks: 1, TicketsPerBook: 1, PricePerTicket: 1, FirstTicketNumber: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidCommunity)
}

func TestGenerateBooksRanges(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := testContext(node)

	event, err := svc.Create(ctx, domain.CreateEventRequest{
		Name:              "Ganesh Utsav Raffle",
		TotalBooks:        3,
		TicketsPerBook:    10,
		PricePerTicket:    100,
		FirstTicketNumber: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusDraft, event.Status)
	assert.Equal(t, "ganesh-utsav-raffle", event.Slug)

	resp, err := svc.GenerateBooks(ctx, domain.GenerateBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.BooksCreated)
	assert.Equal(t, int64(3000), resp.TotalExpectedAmount)
	assert.Equal(t, domain.EventStatusActive, resp.Event.Status)

	wantRanges := [][2]int64{{1, 10}, {11, 20}, {21, 30}}
	require.Len(t, resp.Books, 3)
	for i, book := range resp.Books {
		assert.Equal(t, i+1, book.BookNumber)
		assert.Equal(t, wantRanges[i][0], book.StartTicketNumber)
		assert.Equal(t, wantRanges[i][1], book.EndTicketNumber)
		assert.Equal(t, domain.BookStatusAvailable, book.Status)
	}
}

func TestGenerateBooksContiguity(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := testContext(node)

	event, err := svc.Create(ctx, domain.CreateEventRequest{
		Name:              "Annual Fund",
		TotalBooks:        17,
		TicketsPerBook:    25,
		PricePerTicket:    50,
		FirstTicketNumber: 501,
	})
	require.NoError(t, err)

	resp, err := svc.GenerateBooks(ctx, domain.GenerateBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Books, 17)

	for i, book := range resp.Books {
		wantStart := int64(501) + int64(i)*25
		assert.Equal(t, wantStart, book.StartTicketNumber)
		assert.Equal(t, int64(25), book.EndTicketNumber-book.StartTicketNumber+1)
		if i > 0 {
			assert.Equal(t, resp.Books[i-1].EndTicketNumber+1, book.StartTicketNumber)
		}
	}
	assert.Equal(t, int64(17*25*50), resp.TotalExpectedAmount)
}

func TestGenerateBooksRejectsSecondRun(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := testContext(node)

	event, err := svc.Create(ctx, domain.CreateEventRequest{
		Name:              "Spring Fair",
		TotalBooks:        2,
		TicketsPerBook:    5,
		PricePerTicket:    10,
		FirstTicketNumber: 1,
	})
	require.NoError(t, err)

	_, err = svc.GenerateBooks(ctx, domain.GenerateBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	_, err = svc.GenerateBooks(ctx, domain.GenerateBooksRequest{EventID: event.ID.String()})
	assert.ErrorIs(t, err, domain.ErrBooksAlreadyGenerated)

	books, err := svc.ListBooks(ctx, event.ID.String())
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestPreviewBooksDoesNotPersist(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx, _ := testContext(node)

	event, err := svc.Create(ctx, domain.CreateEventRequest{
		Name:              "Winter Raffle",
		TotalBooks:        100,
		TicketsPerBook:    20,
		PricePerTicket:    100,
		FirstTicketNumber: 1000,
	})
	require.NoError(t, err)

	resp, err := svc.PreviewBooks(ctx, domain.PreviewBooksRequest{EventID: event.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Ranges, 5)
	assert.Equal(t, int64(1000), resp.Ranges[0].StartTicketNumber)
	assert.Equal(t, int64(1019), resp.Ranges[0].EndTicketNumber)
	assert.Equal(t, int64(1080), resp.Ranges[4].StartTicketNumber)
	assert.Equal(t, int64(100*20*100), resp.TotalExpectedAmount)

	var count int64
	require.NoError(t, db.Model(&domain.Book{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEventScopedToCommunity(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx, _ := testContext(node)

	event, err := svc.Create(ctx, domain.CreateEventRequest{
		Name:              "Gated Event",
		TotalBooks:        1,
		TicketsPerBook:    1,
		PricePerTicket:    1,
		FirstTicketNumber: 1,
	})
	require.NoError(t, err)

	otherCtx, _ := testContext(node)
	_, err = svc.GetByID(otherCtx, domain.GetEventRequest{ID: event.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
