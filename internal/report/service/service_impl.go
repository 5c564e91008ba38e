package service

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/observability/logger"
	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	"github.com/commonshq/samiti/internal/report/domain"
	"github.com/commonshq/samiti/internal/report/parser"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Events      eventdomain.Service
	Dists       distdomain.Service
	Payments    paymentdomain.Service
	PaymentRepo paymentdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	events      eventdomain.Service
	dists       distdomain.Service
	payments    paymentdomain.Service
	paymentRepo paymentdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("report.service"),
		events:      p.Events,
		dists:       p.Dists,
		payments:    p.Payments,
		paymentRepo: p.PaymentRepo,
	}
}

func (s *Service) Export(ctx context.Context, req domain.ExportRequest) ([]byte, error) {
	event, err := s.events.GetByID(ctx, eventdomain.GetEventRequest{ID: req.EventID})
	if err != nil {
		return nil, translateErr(err)
	}

	dists, err := s.dists.ListByEvent(ctx, req.EventID, distdomain.ListFilter{})
	if err != nil {
		return nil, translateErr(err)
	}

	books, err := s.events.ListBooks(ctx, req.EventID)
	if err != nil {
		return nil, translateErr(err)
	}
	bookByID := make(map[snowflake.ID]eventdomain.Book, len(books))
	for _, book := range books {
		bookByID[book.ID] = book
	}

	levels, err := s.dists.ListLevels(ctx, req.EventID)
	if err != nil {
		return nil, translateErr(err)
	}
	levelNames := make([]string, 0, len(levels))
	for _, lv := range levels {
		levelNames = append(levelNames, lv.Level.Name)
	}

	expected := event.ExpectedAmountPerBook()
	rows := make([]domain.Row, 0, len(dists))
	for _, dist := range dists {
		book, ok := bookByID[dist.BookID]
		if !ok {
			continue
		}

		collections, err := s.paymentRepo.ListByDistribution(ctx, s.db, dist.ID)
		if err != nil {
			return nil, err
		}
		sort.Slice(collections, func(i, j int) bool {
			return collections[i].PaymentDate.Before(collections[j].PaymentDate)
		})

		var paid int64
		dates := make([]time.Time, 0, len(collections))
		methods := make([]string, 0, len(collections))
		for _, c := range collections {
			paid += c.AmountPaid
			dates = append(dates, c.PaymentDate.UTC())
			methods = append(methods, c.PaymentMethod)
		}

		row := domain.Row{
			MemberName:     dist.ContactName,
			ContactPhone:   dist.ContactPhone,
			BookNumber:     book.BookNumber,
			TicketStart:    book.StartTicketNumber,
			TicketEnd:      book.EndTicketNumber,
			ExpectedAmount: expected,
			AmountPaid:     paid,
			Outstanding:    expected - paid,
			Status:         statusLiteral(paid, expected),
			PaymentDates:   dates,
			PaymentMethods: methods,
			Returned:       dist.IsReturned,
		}
		for _, seg := range dist.Segments {
			if seg.LevelNumber >= 1 && seg.LevelNumber <= 3 {
				row.LevelValues[seg.LevelNumber-1] = seg.Value
			}
		}
		rows = append(rows, row)
	}

	return parser.BuildWorkbook(levelNames, rows)
}

// Import reconciles an uploaded sheet against the ledger. Sheet totals
// above the recorded total become a new payment for the difference; sheet
// totals at or below it are left alone, so re-importing an unchanged
// export writes nothing.
func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (domain.ImportResponse, error) {
	if _, err := s.events.GetByID(ctx, eventdomain.GetEventRequest{ID: req.EventID}); err != nil {
		return domain.ImportResponse{}, translateErr(err)
	}

	rows, err := parser.ParseWorkbook(bytes.NewReader(req.Data))
	if err != nil {
		return domain.ImportResponse{}, err
	}

	var resp domain.ImportResponse
	for _, row := range rows {
		dist, err := s.dists.GetByBook(ctx, req.EventID, row.BookNumber)
		if err != nil {
			if err == distdomain.ErrNotFound || err == distdomain.ErrInvalidBookNumber {
				resp.RowsSkipped++
				continue
			}
			return domain.ImportResponse{}, err
		}

		totals, err := s.paymentRepo.TotalsFor(ctx, s.db, dist.ID)
		if err != nil {
			return domain.ImportResponse{}, err
		}

		if diff := row.AmountPaid - totals.TotalPaid; diff > 0 {
			_, err := s.payments.Record(ctx, paymentdomain.RecordPaymentRequest{
				DistributionID: dist.ID.String(),
				AmountPaid:     diff,
				PaymentMethod:  lastOr(row.PaymentMethods, "cash"),
				PaymentDate:    lastDateOr(row.PaymentDates, time.Now().UTC()),
			})
			if err != nil {
				return domain.ImportResponse{}, err
			}
			resp.PaymentsRecorded++
		}

		if row.Returned != dist.IsReturned {
			_, err := s.dists.SetReturned(ctx, distdomain.SetReturnedRequest{
				DistributionID: dist.ID.String(),
				Returned:       row.Returned,
			})
			if err != nil {
				return domain.ImportResponse{}, err
			}
			resp.ReturnsUpdated++
		}

		resp.RowsProcessed++
	}

	logger.WithContext(ctx, s.log).Info("spreadsheet import reconciled",
		zap.Int("rows_processed", resp.RowsProcessed),
		zap.Int("payments_recorded", resp.PaymentsRecorded),
		zap.Int("returns_updated", resp.ReturnsUpdated),
		zap.Int("rows_skipped", resp.RowsSkipped),
	)
	return resp, nil
}

func statusLiteral(paid, expected int64) string {
	switch paymentdomain.DeriveState(paid, expected) {
	case paymentdomain.StateFullyPaid:
		return parser.StatusFullyPaid
	case paymentdomain.StatePartial:
		return parser.StatusPartiallyPaid
	default:
		return parser.StatusUnpaid
	}
}

func lastOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}

func lastDateOr(values []time.Time, fallback time.Time) time.Time {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}

// translateErr maps the collaborator modules' sentinel errors onto this
// module's so callers see one vocabulary.
func translateErr(err error) error {
	switch err {
	case eventdomain.ErrNotFound, distdomain.ErrNotFound:
		return domain.ErrNotFound
	case eventdomain.ErrInvalidID, distdomain.ErrInvalidID:
		return domain.ErrInvalidID
	case eventdomain.ErrInvalidCommunity, distdomain.ErrInvalidCommunity:
		return domain.ErrInvalidCommunity
	}
	return err
}
