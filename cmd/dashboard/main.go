package main

import (
	"context"
	"errors"
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

	"ddream/internal/chain"
	"ddream/internal/config"
	cronrunner "ddream/internal/cron"
	"ddream/internal/db"
	"ddream/internal/handler"
	"ddream/internal/logger"
	"ddream/internal/registry"
	"ddream/internal/service"
	"ddream/internal/txbuilder"

	_ "ddream/docs"
)

func main() {
	cfgPath := os.Getenv("DD_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("DD_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		log.Fatal("auto-migrate failed", zap.Error(err))
	}

	chainClient := chain.NewClient(cfg.Chain, log)
	explorer := chain.NewExplorer(cfg.Chain.Explorer)
	signer := chain.NewSignerBridge(cfg.Signer)
	gameRegistry := registry.New(dbConn.Gorm, log)

	gameView := &service.GameViewService{
		Chain:          chainClient,
		Registry:       gameRegistry,
		Explorer:       explorer,
		Logger:         log,
		PageLimit:      cfg.Refresh.PageLimit,
		FeaturedLimit:  cfg.Refresh.FeaturedLimit,
		TVLMemberLimit: cfg.Refresh.TVLMemberLimit,
	}
	stakingView := &service.StakingViewService{
		Chain:           chainClient,
		Logger:          log,
		MemberPageLimit: cfg.Refresh.MemberPageLimit,
	}
	builder := &txbuilder.Builder{
		Chain:  chainClient,
		Exec:   signer,
		Logger: log,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	gamesHandler := &handler.GamesHandler{
		View:     gameView,
		Builder:  builder,
		Registry: gameRegistry,
		Chain:    chainClient,
		Explorer: explorer,
		Logger:   log,
	}
	gamesHandler.Register(engine)
	stakingHandler := &handler.StakingHandler{
		View:     stakingView,
		Builder:  builder,
		Chain:    chainClient,
		Explorer: explorer,
		Logger:   log,
	}
	stakingHandler.Register(engine)
	dashboardHandler := &handler.DashboardHandler{View: gameView, Logger: log}
	dashboardHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add(cfg.Cron.GameRefresh, func(ctx context.Context) {
			if _, err := gameView.Refresh(ctx); err != nil {
				log.Warn("cron game refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			log.Warn("cron register game refresh failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.Stream.Enabled && cfg.Chain.WSURL != "" {
		stream := &chain.EventStream{
			URL:       cfg.Chain.WSURL,
			Contracts: []string{cfg.Chain.Controller},
			Logger:    log,
		}
		go func() {
			err := stream.Run(ctx, func(contract string) {
				if _, err := gameView.Refresh(ctx); err != nil {
					log.Warn("event-driven refresh failed",
						zap.String("contract", contract), zap.Error(err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("chain event stream stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
