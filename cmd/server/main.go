package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"traderboard/internal/config"
	cronrunner "traderboard/internal/cron"
	"traderboard/internal/db"
	"traderboard/internal/handler"
	"traderboard/internal/identity"
	"traderboard/internal/logger"
	"traderboard/internal/models"
	"traderboard/internal/repository"
	gormrepository "traderboard/internal/repository/gorm"
	"traderboard/internal/service"

	_ "traderboard/docs"
)

func main() {
	cfgPath := os.Getenv("TB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	identityClient := initIdentityClient(cfg.Identity, logger)
	policy := service.NewAllowlistPolicy(cfg.Review.AllowedReviewers)

	submissionSvc := &service.SubmissionService{Repo: store, Logger: logger}
	reviewSvc := &service.ReviewService{Repo: store, Policy: policy, Logger: logger}
	leaderboardSvc := &service.LeaderboardService{
		Repo:            store,
		DefaultPageSize: cfg.Leaderboard.DefaultPageSize,
		MaxPageSize:     cfg.Leaderboard.MaxPageSize,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(identity.SessionMiddleware(identityClient, logger))
	engine.Use(identity.AuditMiddleware(identityClient, logger))

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	submissionHandler := &handler.SubmissionHandler{Submissions: submissionSvc, Logger: logger}
	submissionHandler.Register(engine)
	reviewHandler := &handler.ReviewHandler{
		Submissions: submissionSvc,
		Review:      reviewSvc,
		Policy:      policy,
		Logger:      logger,
	}
	reviewHandler.Register(engine)
	leaderboardHandler := &handler.LeaderboardHandler{
		Leaderboard: leaderboardSvc,
		Identity:    identityClient,
		Logger:      logger,
	}
	leaderboardHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	handler.RegisterDocs(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add(cfg.Cron.QueueWatch, func(ctx context.Context) {
			reportQueueDepth(ctx, store, logger)
		})
		if err != nil {
			logger.Warn("cron register queue watch failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// reportQueueDepth logs the moderation backlog so an idle review queue
// is visible in ops logs, not just in the admin UI.
func reportQueueDepth(ctx context.Context, store repository.Repository, logger *zap.Logger) {
	pending := models.StatusPending
	total, err := store.CountSubmissions(ctx, repository.ListSubmissionsParams{Status: &pending})
	if err != nil {
		logger.Warn("queue watch count failed", zap.Error(err))
		return
	}
	logger.Info("review queue depth", zap.Int64("pending", total))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func initIdentityClient(cfg config.IdentityConfig, logger *zap.Logger) *identity.Client {
	base := strings.TrimSpace(cfg.BaseURL)
	apiKey := strings.TrimSpace(os.Getenv("TB_IDENTITY_API_KEY"))
	if base == "" || apiKey == "" {
		logger.Warn("identity client disabled (no base url or api key)")
		return nil
	}

	client, err := identity.NewClient(base, apiKey, cfg.Timeout, cfg.ProfileCacheSize)
	if err != nil {
		logger.Warn("identity client init failed", zap.Error(err))
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Login(ctx); err != nil {
		logger.Warn("identity login failed (sessions and profiles degraded)", zap.Error(err))
	}
	return client
}
