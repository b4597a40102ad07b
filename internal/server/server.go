package server

import (
	"context"
	"net/http"
	"time"

	billingdomain "github.com/dineops/dineops/internal/billing/domain"
	"github.com/dineops/dineops/internal/config"
	"github.com/dineops/dineops/internal/events"
	kitchendomain "github.com/dineops/dineops/internal/kitchen/domain"
	menudomain "github.com/dineops/dineops/internal/menu/domain"
	obslogger "github.com/dineops/dineops/internal/observability/logger"
	obsmetrics "github.com/dineops/dineops/internal/observability/metrics"
	orderdomain "github.com/dineops/dineops/internal/order/domain"
	"github.com/dineops/dineops/internal/receipt"
	"github.com/dineops/dineops/internal/staff"
	tabledomain "github.com/dineops/dineops/internal/table/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())
	r.Use(StaffContext())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
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
	engine     *gin.Engine
	cfg        config.Config
	menuSvc    menudomain.Service
	tableSvc   tabledomain.Service
	orderSvc   orderdomain.Service
	kitchenSvc kitchendomain.Service
	billingSvc billingdomain.Service
	receipts   receipt.Renderer
	hub        *events.Hub
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	MenuSvc    menudomain.Service
	TableSvc   tabledomain.Service
	OrderSvc   orderdomain.Service
	KitchenSvc kitchendomain.Service
	BillingSvc billingdomain.Service
	Receipts   receipt.Renderer
	Hub        *events.Hub
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		menuSvc:    p.MenuSvc,
		tableSvc:   p.TableSvc,
		orderSvc:   p.OrderSvc,
		kitchenSvc: p.KitchenSvc,
		billingSvc: p.BillingSvc,
		receipts:   p.Receipts,
		hub:        p.Hub,
	}

	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	menu := api.Group("/menu")
	menu.GET("/categories", s.ListCategories)
	menu.GET("/items", s.ListMenuItems)
	menu.GET("/items/:id", s.GetMenuItem)
	menu.POST("/categories", RequireCapability(staff.CapMenuManage), s.CreateCategory)
	menu.POST("/items", RequireCapability(staff.CapMenuManage), s.CreateMenuItem)
	menu.PATCH("/items/:id", RequireCapability(staff.CapMenuManage), s.UpdateMenuItem)

	tables := api.Group("/tables")
	tables.GET("", s.ListTables)
	tables.GET("/:id", s.GetTable)
	tables.POST("", RequireCapability(staff.CapTablesManage), s.CreateTable)
	tables.POST("/:id/status", RequireCapability(staff.CapTablesManage), s.ChangeTableStatus)
	tables.POST("/:id/sessions", RequireCapability(staff.CapOrdersPlace), s.StartSession)

	sessions := api.Group("/sessions")
	sessions.GET("/:id", s.GetSession)
	sessions.GET("/:id/bill", RequireCapability(staff.CapBillingOperate), s.PreviewBill)
	sessions.POST("/:id/cancel", RequireCapability(staff.CapTablesManage), s.CancelSession)
	sessions.POST("/:id/finalize", RequireCapability(staff.CapBillingOperate), s.FinalizeBill)

	orders := api.Group("/orders")
	orders.GET("", s.ListOrders)
	orders.GET("/:id", s.GetOrder)
	orders.POST("", RequireCapability(staff.CapOrdersPlace), s.PlaceOrder)
	orders.POST("/:id/lines", RequireCapability(staff.CapOrdersPlace), s.AddOrderLine)
	orders.DELETE("/:id/lines/:lineID", RequireCapability(staff.CapOrdersPlace), s.RemoveOrderLine)
	orders.POST("/:id/confirm", RequireCapability(staff.CapOrdersManage), s.ConfirmOrder)
	orders.POST("/:id/status", RequireCapability(staff.CapOrdersManage), s.TransitionOrder)

	kitchen := api.Group("/kitchen")
	kitchen.GET("/board", s.KitchenBoard)
	kitchen.POST("/lines/:id/start", RequireCapability(staff.CapKitchenOperate), s.StartLinePreparation)
	kitchen.POST("/lines/:id/ready", RequireCapability(staff.CapKitchenOperate), s.MarkLineReady)
	kitchen.POST("/lines/:id/serve", RequireCapability(staff.CapOrdersManage), s.MarkLineServed)
	kitchen.POST("/lines/:id/cancel", RequireCapability(staff.CapKitchenOperate), s.CancelLine)

	bills := api.Group("/bills")
	bills.GET("/:id", RequireCapability(staff.CapBillingOperate), s.GetBill)
	bills.GET("/:id/receipt.pdf", RequireCapability(staff.CapBillingOperate), s.DownloadReceipt)
	bills.POST("/:id/payments", RequireCapability(staff.CapBillingOperate), s.RecordPayment)

	api.GET("/events", s.StreamEvents)
}
