package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-browser/internal/core/browser"
	"recipe-browser/internal/core/cache"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   CatalogStatus          `json:"catalog"`
	Sessions  *SessionStatus         `json:"sessions,omitempty"`
	Cache     cache.Stats            `json:"cache"`
}

// CatalogStatus 目錄狀態
type CatalogStatus struct {
	Source  string `json:"source"`
	Recipes int    `json:"recipes"`
	Version string `json:"version"`
}

// SessionStatus 工作階段狀態
type SessionStatus struct {
	Backend string `json:"backend"`
	Active  int    `json:"active"`
}

// Handler 健康檢查處理器
type Handler struct {
	config  *config.Config
	browser *browser.Service
}

// NewHandler 創建健康檢查處理器
func NewHandler(cfg *config.Config, svc *browser.Service) *Handler {
	return &Handler{config: cfg, browser: svc}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	catalog := h.browser.Catalog()

	// 構建響應
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Catalog: CatalogStatus{
			Source:  h.config.Catalog.Source,
			Recipes: catalog.Len(),
			Version: catalog.Version(),
		},
		Cache: h.browser.CacheStats(),
	}

	if n, err := h.browser.Sessions(c.Request.Context()); err != nil {
		common.LogWarn("Failed to count sessions", zap.Error(err))
		response.Status = "degraded"
	} else {
		response.Sessions = &SessionStatus{Backend: h.config.Session.Backend, Active: n}
	}

	// 記錄請求
	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：目錄已載入且工作階段儲存可用
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if _, err := h.browser.Sessions(c.Request.Context()); err != nil {
		common.LogWarn("Session store not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, common.ErrServiceUnavailable.Response(h.config.App.Debug))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"recipes": h.browser.Catalog().Len(),
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
