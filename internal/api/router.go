package api

import (
	"context"
	"net/http"
	"time"

	"meal-recommender/internal/api/handlers/health"
	mealHandler "meal-recommender/internal/api/handlers/meal"
	"meal-recommender/internal/api/middleware"
	"meal-recommender/internal/core/ai"
	aiCache "meal-recommender/internal/core/ai/cache"
	"meal-recommender/internal/core/catalog"
	mealService "meal-recommender/internal/core/meal"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)，推薦請求只有文字欄位
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, completionCache *aiCache.Service) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 請求 ID 先掛，日誌才取得到
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制與重複請求防護
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Deduplication(cfg))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("openrouter_enabled", cfg.OpenRouter.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("catalog_dir", cfg.Catalog.Dir),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化服務
	catalogCache := catalog.NewCache(cfg.Catalog.CacheMaxEntries, cfg.Catalog.CacheEvictBuffer)
	loader := catalog.NewLoader(cfg, catalogCache)
	aiService := ai.NewService(cfg, completionCache)
	planner := mealService.NewPlanner()
	recommender := mealService.NewRecommender(cfg, loader, aiService, planner)

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		// 設置配置與目錄快取，供健康檢查讀取
		c.Set("config", cfg)
		c.Set("catalog_cache", catalogCache)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := mealHandler.NewHandler(recommender)

		mealGroup := api.Group("/meals")
		{
			// 依食材推薦餐點
			mealGroup.POST("/recommend", handler.HandleRecommend)

			// 一日與七日餐點計畫
			mealGroup.POST("/plan", handler.HandlePlanDaily)
			mealGroup.POST("/plan/weekly", handler.HandlePlanWeekly)

			// 地區代表菜色
			mealGroup.GET("/regional", handler.HandleRegionalFoods)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("ai_enabled", aiService.Enabled()),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
