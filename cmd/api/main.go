package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-browser/internal/api"
	"recipe-browser/internal/core/browser"
	"recipe-browser/internal/core/cache"
	"recipe-browser/internal/core/catalog"
	"recipe-browser/internal/core/image"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/core/session"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.LogLevel,
		Dir:     cfg.LogDir,
		Service: cfg.App.Name,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.String("database", common.MaskSecret(cfg.Catalog.DatabaseURL)),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// 載入食譜目錄，任何錯誤都中止啟動
	src, err := catalog.NewSource(cfg.Catalog)
	if err != nil {
		common.LogFatal("Failed to create catalog source", zap.Error(err))
	}
	loadTimeout := cfg.Catalog.Timeout * time.Duration(cfg.Catalog.Retries+1)
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Second
	}
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), loadTimeout)
	recipes, err := catalog.Load(loadCtx, src)
	cancelLoad()
	if closer, ok := src.(io.Closer); ok {
		_ = closer.Close()
	}
	if err != nil {
		common.LogFatal("Failed to load catalog", zap.Error(err))
	}

	// 工作階段儲存
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	// 初始化快取
	results := cache.NewManager[*recipe.Visible]("results", cfg.Cache)
	defer results.Close()
	thumbs := cache.NewManager[[]byte]("thumbnails", cfg.Cache)
	defer thumbs.Close()

	svc := browser.NewService(recipes, store, results)
	images := image.NewService(cfg.Image, thumbs)

	// 設置路由
	router := api.SetupRouter(cfg, svc, images)

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Int("recipes", recipes.Len()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		common.LogError("Failed to start server", zap.Error(err))
		return
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
