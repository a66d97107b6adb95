package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billdomain "github.com/techverse/billdesk/internal/bill/domain"
	"github.com/techverse/billdesk/internal/company"
	"github.com/techverse/billdesk/internal/config"
	"github.com/techverse/billdesk/internal/observability/logger"
	"github.com/techverse/billdesk/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServerParam struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	BillSvc    billdomain.Service
	CompanySvc *company.Store
}

// Server owns the HTTP surface. All state lives in the services it
// fronts; handlers only translate between HTTP and the domain.
type Server struct {
	cfg        config.Config
	log        *zap.Logger
	billSvc    billdomain.Service
	companySvc *company.Store
	limiter    *rateLimiter
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		billSvc:    p.BillSvc,
		companySvc: p.CompanySvc,
		limiter:    newRateLimiter(p.Cfg.RateLimit.Limit, p.Cfg.RateLimit.Window),
	}
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{SkipPaths: []string{"/healthz"}}))
	return engine
}

// RegisterRoutes mounts the API. Write endpoints sit behind the rate
// limiter; the whole /api tree behind the optional API key.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)

	api := engine.Group("/api")
	api.Use(s.APIKeyRequired())
	{
		api.GET("/bills", s.ListBills)
		api.POST("/bills", s.RateLimited(), s.CreateBill)
		api.POST("/bills/preview", s.PreviewBill)
		api.DELETE("/bills/:id", s.RateLimited(), s.DeleteBill)
		api.GET("/bills/next-number", s.NextInvoiceNumber)
		api.GET("/bills/export.csv", s.ExportCSV)
		api.GET("/bills/export.xlsx", s.ExportXLSX)

		api.GET("/company", s.GetCompanyInfo)
		api.PUT("/company", s.RateLimited(), s.UpdateCompanyInfo)

		api.GET("/dashboard", s.GetDashboard)
	}
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// APIKeyRequired enforces the static bearer key when one is
// configured. Single-tenant deployments on a trusted network can run
// without one.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(s.cfg.Server.APIKey)
		if key == "" {
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || !constantTimeEqual(parts[1], key) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RateLimited applies a fixed-window per-client limit to mutating
// endpoints.
func (s *Server) RateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// RunHTTP starts the HTTP server under the fx lifecycle with graceful
// shutdown.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, s *Server, log *zap.Logger) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
