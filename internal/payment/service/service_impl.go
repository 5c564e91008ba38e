package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/authorization"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/payment/domain"
	"github.com/commonshq/samiti/internal/tenantctx"
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
	DistRepo  distdomain.Repository
	EventRepo eventdomain.Repository
	AuthzSvc  authorization.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	distRepo  distdomain.Repository
	eventRepo eventdomain.Repository
	authzSvc  authorization.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		distRepo:  p.DistRepo,
		eventRepo: p.EventRepo,
		authzSvc:  p.AuthzSvc,
	}
}

// scoped bundles a distribution with the event it belongs to, after the
// community check has passed.
type scoped struct {
	dist  *distdomain.Distribution
	book  *eventdomain.Book
	event *eventdomain.Event
}

func (s *Service) Record(ctx context.Context, req domain.RecordPaymentRequest) (domain.Collection, error) {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.Collection{}, domain.ErrInvalidUser
	}

	if req.AmountPaid <= 0 {
		return domain.Collection{}, domain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return domain.Collection{}, domain.ErrInvalidMethod
	}
	if req.PaymentDate.IsZero() {
		return domain.Collection{}, domain.ErrInvalidPaymentDate
	}

	sc, err := s.findScoped(ctx, s.db, req.DistributionID)
	if err != nil {
		return domain.Collection{}, err
	}

	collection := domain.Collection{
		ID:             s.genID.Generate(),
		DistributionID: sc.dist.ID,
		AmountPaid:     req.AmountPaid,
		PaymentMethod:  method,
		PaymentDate:    dateOnly(req.PaymentDate),
		CollectedBy:    userID,
		CollectedAt:    time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &collection); err != nil {
			return err
		}
		return s.refreshBookStatus(ctx, tx, sc)
	})
	if err != nil {
		return domain.Collection{}, err
	}
	return collection, nil
}

func (s *Service) StatusFor(ctx context.Context, distributionID string) (domain.Status, error) {
	sc, err := s.findScoped(ctx, s.db, distributionID)
	if err != nil {
		return domain.Status{}, err
	}
	return s.statusOf(ctx, s.db, sc)
}

func (s *Service) ListByDistribution(ctx context.Context, distributionID string) ([]domain.Collection, error) {
	sc, err := s.findScoped(ctx, s.db, distributionID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByDistribution(ctx, s.db, sc.dist.ID)
	if err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, 0, len(items))
	for _, item := range items {
		collections = append(collections, *item)
	}
	return collections, nil
}

// BulkSettle records one closing payment per outstanding distribution
// matching the level filter, bringing each exactly to its expected amount.
// Partial bulk amounts are not supported.
func (s *Service) BulkSettle(ctx context.Context, req domain.BulkSettleRequest) (domain.BulkSettleResponse, error) {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.BulkSettleResponse{}, domain.ErrInvalidUser
	}

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return domain.BulkSettleResponse{}, domain.ErrInvalidMethod
	}
	if req.PaymentDate.IsZero() {
		return domain.BulkSettleResponse{}, domain.ErrInvalidPaymentDate
	}

	event, err := s.findEvent(ctx, req.EventID)
	if err != nil {
		return domain.BulkSettleResponse{}, err
	}

	dists, err := s.distRepo.ListByEvent(ctx, s.db, event.ID, distdomain.ListFilter{LevelValues: req.LevelValues})
	if err != nil {
		return domain.BulkSettleResponse{}, err
	}

	ids := make([]snowflake.ID, 0, len(dists))
	for _, dist := range dists {
		ids = append(ids, dist.ID)
	}

	expected := event.ExpectedAmountPerBook()
	now := time.Now().UTC()
	paymentDate := dateOnly(req.PaymentDate)

	var resp domain.BulkSettleResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		totals, err := s.repo.TotalsForMany(ctx, tx, ids)
		if err != nil {
			return err
		}

		for _, dist := range dists {
			outstanding := expected - totals[dist.ID].TotalPaid
			if outstanding <= 0 {
				continue
			}

			collection := domain.Collection{
				ID:             s.genID.Generate(),
				DistributionID: dist.ID,
				AmountPaid:     outstanding,
				PaymentMethod:  method,
				PaymentDate:    paymentDate,
				CollectedBy:    userID,
				CollectedAt:    now,
			}
			if err := s.repo.Insert(ctx, tx, &collection); err != nil {
				return err
			}
			if err := s.eventRepo.UpdateBookStatus(ctx, tx, dist.BookID, eventdomain.BookStatusCollected); err != nil {
				return err
			}
			resp.DistributionsSettled++
			resp.AmountCollected += outstanding
		}
		return nil
	})
	if err != nil {
		return domain.BulkSettleResponse{}, err
	}
	return resp, nil
}

// Delete removes a collection row. Only the original collector or a
// community admin may do so. A fully paid distribution is allowed to
// regress; commission rows already earned are left untouched.
func (s *Service) Delete(ctx context.Context, req domain.DeletePaymentRequest) error {
	userID, ok := tenantctx.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return domain.ErrInvalidCommunity
	}

	id, err := snowflake.ParseString(strings.TrimSpace(req.PaymentID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	collection, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if collection == nil {
		return domain.ErrNotFound
	}

	sc, err := s.findScopedByID(ctx, s.db, collection.DistributionID)
	if err != nil {
		return err
	}

	if collection.CollectedBy != userID {
		allowed, err := s.authzSvc.Enforce(ctx, userID, communityID, "payment", "delete")
		if err != nil {
			return err
		}
		if !allowed {
			return domain.ErrForbidden
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, collection.ID); err != nil {
			return err
		}
		return s.refreshBookStatus(ctx, tx, sc)
	})
}

func (s *Service) Receipt(ctx context.Context, paymentID string) (domain.ReceiptInfo, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(paymentID))
	if err != nil || id == 0 {
		return domain.ReceiptInfo{}, domain.ErrInvalidID
	}

	collection, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ReceiptInfo{}, err
	}
	if collection == nil {
		return domain.ReceiptInfo{}, domain.ErrNotFound
	}

	sc, err := s.findScopedByID(ctx, s.db, collection.DistributionID)
	if err != nil {
		return domain.ReceiptInfo{}, err
	}
	if err := s.distRepo.LoadSegments(ctx, s.db, sc.dist); err != nil {
		return domain.ReceiptInfo{}, err
	}

	status, err := s.statusOf(ctx, s.db, sc)
	if err != nil {
		return domain.ReceiptInfo{}, err
	}

	return domain.ReceiptInfo{
		Collection:   *collection,
		Status:       status,
		EventName:    sc.event.Name,
		BookNumber:   sc.book.BookNumber,
		TicketStart:  sc.book.StartTicketNumber,
		TicketEnd:    sc.book.EndTicketNumber,
		LocationPath: sc.dist.Path(),
		ContactName:  sc.dist.ContactName,
	}, nil
}

func (s *Service) statusOf(ctx context.Context, db *gorm.DB, sc *scoped) (domain.Status, error) {
	totals, err := s.repo.TotalsFor(ctx, db, sc.dist.ID)
	if err != nil {
		return domain.Status{}, err
	}

	expected := sc.event.ExpectedAmountPerBook()
	status := domain.Status{
		DistributionID: sc.dist.ID,
		TotalPaid:      totals.TotalPaid,
		ExpectedAmount: expected,
		Outstanding:    expected - totals.TotalPaid,
		State:          domain.DeriveState(totals.TotalPaid, expected),
	}
	if status.State == domain.StateFullyPaid {
		status.FullPaymentDate = totals.LastPaymentDate
	}
	return status, nil
}

// refreshBookStatus keeps the book's collected/distributed marker in step
// with the ledger after a write.
func (s *Service) refreshBookStatus(ctx context.Context, tx *gorm.DB, sc *scoped) error {
	totals, err := s.repo.TotalsFor(ctx, tx, sc.dist.ID)
	if err != nil {
		return err
	}

	target := eventdomain.BookStatusDistributed
	if domain.DeriveState(totals.TotalPaid, sc.event.ExpectedAmountPerBook()) == domain.StateFullyPaid {
		target = eventdomain.BookStatusCollected
	}
	return s.eventRepo.UpdateBookStatus(ctx, tx, sc.book.ID, target)
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

func (s *Service) findScoped(ctx context.Context, db *gorm.DB, rawID string) (*scoped, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.findScopedByID(ctx, db, id)
}

func (s *Service) findScopedByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*scoped, error) {
	communityID, ok := tenantctx.CommunityIDFromContext(ctx)
	if !ok || communityID == 0 {
		return nil, domain.ErrInvalidCommunity
	}

	dist, err := s.distRepo.FindByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		return nil, domain.ErrNotFound
	}

	book, err := s.eventRepo.FindBook(ctx, db, dist.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}

	event, err := s.eventRepo.FindByID(ctx, db, communityID, book.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	return &scoped{dist: dist, book: book, event: event}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
