package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notifier"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/token"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, tokens *token.Service, bot *notifier.Bot, logger *zap.Logger, accessLog *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(accessLog))
	router.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	s := &Server{router: router, cfg: cfg, logger: logger}
	s.setupRoutes(db, tokens, bot)
	return s
}

func (s *Server) setupRoutes(db *sqlx.DB, tokens *token.Service, bot *notifier.Bot) {
	userRepo := repository.NewUserRepository(db, s.logger)
	productRepo := repository.NewProductRepository(db, s.logger)
	orderRepo := repository.NewOrderRepository(db, s.logger)

	authService := service.NewAuthService(userRepo, tokens, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	productHandler := handler.NewProductHandler(productRepo, s.logger)
	orderHandler := handler.NewOrderHandler(orderRepo, bot, s.logger)
	adminHandler := handler.NewAdminHandler(userRepo, orderRepo, s.logger)

	authenticated := middleware.Authenticate(tokens, s.logger)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// Health check
	s.router.GET("/api/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Backend server is running!"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authentication routes
	auth := s.router.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/verify", authenticated, authHandler.Verify)
	auth.PUT("/profile", authenticated, authHandler.UpdateProfile)

	// Public catalog
	s.router.GET("/api/products", productHandler.ListProducts)
	s.router.GET("/api/products/:id", productHandler.GetProduct)

	// Orders (authenticated)
	orders := s.router.Group("/api/orders", authenticated)
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("/user", orderHandler.ListMyOrders)

	// Admin routes
	admin := s.router.Group("/api/admin", authenticated, adminOnly)
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/orders", adminHandler.ListOrders)
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
