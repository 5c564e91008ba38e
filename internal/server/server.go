package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commonshq/samiti/internal/authorization"
	"github.com/commonshq/samiti/internal/campaign"
	campaigndomain "github.com/commonshq/samiti/internal/campaign/domain"
	"github.com/commonshq/samiti/internal/commission"
	commissiondomain "github.com/commonshq/samiti/internal/commission/domain"
	"github.com/commonshq/samiti/internal/config"
	"github.com/commonshq/samiti/internal/distribution"
	distdomain "github.com/commonshq/samiti/internal/distribution/domain"
	"github.com/commonshq/samiti/internal/event"
	eventdomain "github.com/commonshq/samiti/internal/event/domain"
	"github.com/commonshq/samiti/internal/feature"
	featuredomain "github.com/commonshq/samiti/internal/feature/domain"
	"github.com/commonshq/samiti/internal/member"
	memberdomain "github.com/commonshq/samiti/internal/member/domain"
	"github.com/commonshq/samiti/internal/migration"
	obslogger "github.com/commonshq/samiti/internal/observability/logger"
	obsmetrics "github.com/commonshq/samiti/internal/observability/metrics"
	"github.com/commonshq/samiti/internal/payment"
	paymentdomain "github.com/commonshq/samiti/internal/payment/domain"
	"github.com/commonshq/samiti/internal/providers/pdf"
	"github.com/commonshq/samiti/internal/report"
	reportdomain "github.com/commonshq/samiti/internal/report/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	migration.Module,
	event.Module,
	distribution.Module,
	payment.Module,
	commission.Module,
	report.Module,
	member.Module,
	campaign.Module,
	feature.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	authzSvc      authorization.Service
	eventSvc      eventdomain.Service
	distSvc       distdomain.Service
	paymentSvc    paymentdomain.Service
	commissionSvc commissiondomain.Service
	reportSvc     reportdomain.Service
	memberSvc     memberdomain.Service
	campaignSvc   campaigndomain.Service
	featureSvc    featuredomain.Service
	pdfProvider   pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	AuthzSvc      authorization.Service
	EventSvc      eventdomain.Service
	DistSvc       distdomain.Service
	PaymentSvc    paymentdomain.Service
	CommissionSvc commissiondomain.Service
	ReportSvc     reportdomain.Service
	MemberSvc     memberdomain.Service
	CampaignSvc   campaigndomain.Service
	FeatureSvc    featuredomain.Service
	PDFProvider   pdf.Provider
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		authzSvc:      p.AuthzSvc,
		eventSvc:      p.EventSvc,
		distSvc:       p.DistSvc,
		paymentSvc:    p.PaymentSvc,
		commissionSvc: p.CommissionSvc,
		reportSvc:     p.ReportSvc,
		memberSvc:     p.MemberSvc,
		campaignSvc:   p.CampaignSvc,
		featureSvc:    p.FeatureSvc,
		pdfProvider:   p.PDFProvider,
	}

	s.registerAPIRoutes()
	return s
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(CommunityContext())

	events := api.Group("/events")
	{
		events.POST("", s.RequirePermission("event", "write"), s.CreateEvent)
		events.GET("", s.ListEvents)
		events.GET("/:id", s.GetEvent)
		events.POST("/:id/close", s.RequirePermission("event", "write"), s.CloseEvent)
		events.GET("/:id/books/preview", s.PreviewBooks)
		events.POST("/:id/books", s.RequirePermission("event", "write"), s.GenerateBooks)
		events.GET("/:id/books", s.ListBooks)

		events.POST("/:id/levels", s.RequirePermission("distribution", "write"), s.CreateLevel)
		events.GET("/:id/levels", s.ListLevels)
		events.GET("/:id/distributions", s.ListDistributions)

		events.GET("/:id/export", s.ExportReport)
		events.POST("/:id/import", s.RequirePermission("report", "import"), s.ImportReport)

		events.PUT("/:id/commission/settings", s.RequirePermission("commission", "write"), s.UpsertCommissionSettings)
		events.GET("/:id/commission/settings", s.GetCommissionSettings)
		events.POST("/:id/commission/sync", s.RequirePermission("commission", "write"), s.SyncCommission)
		events.POST("/:id/commission/cleanup", s.RequirePermission("commission", "write"), s.CleanupCommission)
		events.GET("/:id/commission/earned", s.ListCommissionEarned)
		events.GET("/:id/commission/summary", s.CommissionSummary)
	}

	distributions := api.Group("/distributions")
	{
		distributions.POST("", s.RequirePermission("distribution", "write"), s.AssignBook)
		distributions.POST("/:id/returned", s.RequirePermission("distribution", "write"), s.SetReturned)
		distributions.GET("/:id/payments", s.ListPayments)
		distributions.GET("/:id/status", s.PaymentStatus)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", s.RequirePermission("payment", "write"), s.RecordPayment)
		payments.POST("/bulk-settle", s.RequirePermission("payment", "write"), s.BulkSettle)
		payments.DELETE("/:id", s.RequirePermission("payment", "delete"), s.DeletePayment)
		payments.GET("/:id/receipt", s.PaymentReceipt)
	}

	members := api.Group("/members")
	{
		members.POST("", s.RequirePermission("member", "write"), s.CreateMember)
		members.GET("", s.ListMembers)
		members.GET("/:id", s.GetMember)
		members.PUT("/:id", s.RequirePermission("member", "write"), s.UpdateMember)
		members.DELETE("/:id", s.RequirePermission("member", "write"), s.DeleteMember)
		members.GET("/export", s.ExportMembers)
		members.POST("/import", s.RequirePermission("member", "write"), s.ImportMembers)

		members.POST("/fields", s.RequirePermission("member", "write"), s.CreateMemberField)
		members.GET("/fields", s.ListMemberFields)
		members.DELETE("/fields/:id", s.RequirePermission("member", "write"), s.DeleteMemberField)
	}

	campaigns := api.Group("/campaigns")
	{
		campaigns.POST("", s.RequirePermission("campaign", "write"), s.CreateCampaign)
		campaigns.GET("", s.ListCampaigns)
		campaigns.GET("/:id", s.GetCampaign)
		campaigns.POST("/:id/close", s.RequirePermission("campaign", "write"), s.CloseCampaign)
		campaigns.POST("/:id/entries", s.RequirePermission("payment", "write"), s.RecordCampaignEntry)
		campaigns.GET("/:id/entries", s.ListCampaignEntries)
		campaigns.GET("/:id/summary", s.CampaignSummary)
		campaigns.GET("/:id/reminders", s.CampaignReminders)
	}

	features := api.Group("/features")
	{
		features.PUT("", s.RequirePermission("feature", "write"), s.SetFeature)
		features.GET("", s.ListFeatures)
	}
}
