package api

import (
	"net/http"
	"time"

	"recipe-browser/internal/api/handlers/browse"
	"recipe-browser/internal/api/handlers/health"
	"recipe-browser/internal/api/middleware"
	"recipe-browser/internal/core/browser"
	"recipe-browser/internal/core/image"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *browser.Service, images *image.Service) *gin.Engine {
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
	router.SetHTMLTemplate(browse.Templates())

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "Location", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAnyOrigin(cfg.Server.AllowOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, svc)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	browseHandler := browse.NewHandler(svc, images, cfg.Session, cfg.App.Debug)

	// 其餘路由套用限流
	limited := router.Group("/")
	if cfg.RateLimit.Enabled {
		limited.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 頁面路由
	limited.GET("/", browseHandler.Index)
	limited.POST("/search", browseHandler.SubmitSearch)
	limited.POST("/facets/:kind/toggle", browseHandler.SubmitToggle)
	limited.POST("/tags/remove", browseHandler.SubmitRemoveTag)
	limited.POST("/reset", browseHandler.SubmitReset)
	limited.GET("/images/:name", browseHandler.Thumbnail)

	// API 路由組
	api := limited.Group("/api/v1")
	{
		api.GET("/recipes", browseHandler.Search)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", browseHandler.CreateSession)
			sessions.GET("/:id", browseHandler.GetSession)
			sessions.DELETE("/:id", browseHandler.DeleteSession)
			sessions.PUT("/:id/query", browseHandler.SetQuery)
			sessions.POST("/:id/facets/:kind/toggle", browseHandler.ToggleFacet)
			sessions.GET("/:id/facets/:kind/options", browseHandler.Options)
			sessions.DELETE("/:id/tags", browseHandler.RemoveTag)
			sessions.POST("/:id/reset", browseHandler.Reset)
			sessions.GET("/:id/export.xlsx", browseHandler.Export)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, common.ErrNotFound.Response(false))
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, common.ErrMethodNotAllowed.Response(false))
	})

	common.LogInfo("Router setup completed successfully",
		zap.Int("recipes", svc.Catalog().Len()),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
