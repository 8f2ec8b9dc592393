package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HTTPSource 啟動時從遠端 URL 下載目錄
type HTTPSource struct {
	url    string
	client *resty.Client
}

// NewHTTPSource 創建遠端目錄來源，5xx 與連線錯誤會重試
func NewHTTPSource(cfg config.CatalogConfig) *HTTPSource {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json, application/yaml").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &HTTPSource{url: cfg.URL, client: client}
}

func (s *HTTPSource) Name() string { return "http:" + s.url }

func (s *HTTPSource) Load(ctx context.Context) (*recipe.Catalog, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	common.LogDebug("Catalog fetched",
		zap.String("url", s.url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", resp.Time()),
	)

	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch catalog: unexpected status %d", resp.StatusCode())
	}

	format := FormatJSON
	if strings.Contains(resp.Header().Get("Content-Type"), "yaml") {
		format = FormatYAML
	}
	return Decode(resp.Body(), format)
}
