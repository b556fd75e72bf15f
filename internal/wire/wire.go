// Package wire 提供依赖装配
package wire

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"storyboard-ai-api/internal/application/credit"
	"storyboard-ai-api/internal/application/storyboard"
	"storyboard-ai-api/internal/config"
	"storyboard-ai-api/internal/infrastructure/image"
	"storyboard-ai-api/internal/infrastructure/llm"
	"storyboard-ai-api/internal/infrastructure/persistence/postgres"
	"storyboard-ai-api/internal/infrastructure/persistence/redis"
	"storyboard-ai-api/internal/interfaces/http/handler"
	"storyboard-ai-api/internal/interfaces/http/router"
	"storyboard-ai-api/pkg/logger"
)

// App 装配完成的应用
type App struct {
	Router *router.Router

	pg    *postgres.Client
	redis *redis.Client
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.Router.Engine()
}

// InitializeApp 装配整个应用，返回清理函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	// 数据层
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		_ = pgClient.Close()
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn(ctx, "failed to close redis client", "error", err)
		}
		if err := pgClient.Close(); err != nil {
			logger.Warn(ctx, "failed to close postgres client", "error", err)
		}
	}

	txMgr := postgres.NewTxManager(pgClient)
	userRepo := postgres.NewUserRepository(pgClient)
	projectRepo := postgres.NewProjectRepository(pgClient)
	usageRepo := postgres.NewUsageRepository(pgClient)

	cache := redis.NewCache(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)

	// 应用层
	ledger := credit.NewLedger(userRepo)
	factory := llm.NewEinoFactory(cfg)
	generator := storyboard.NewGenerator(factory)
	outlineGen := storyboard.NewOutlineGenerator(factory)

	var imageClient *image.Client
	if cfg.Image.Endpoint != "" {
		imageClient = image.NewClient(&cfg.Image)
	}

	// 接口层
	handlers := router.Handlers{
		Health:  handler.NewHealthHandler(pgClient, redisClient),
		Auth:    handler.NewAuthHandler(cfg.Security.JWT, userRepo),
		Project: handler.NewProjectHandler(projectRepo, cache),
		Generation: handler.NewGenerationHandler(
			cfg,
			txMgr,
			projectRepo,
			usageRepo,
			cache,
			ledger,
			generator,
			outlineGen,
			imageClient,
		),
		Credit: handler.NewCreditHandler(ledger, usageRepo),
	}

	app := &App{
		Router: router.New(cfg, handlers, rateLimiter),
		pg:     pgClient,
		redis:  redisClient,
	}
	return app, cleanup, nil
}
