package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat 無法辨識的目錄檔案格式
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Format 目錄資料格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Source 食譜目錄來源，啟動時載入一次
type Source interface {
	Name() string
	Load(ctx context.Context) (*recipe.Catalog, error)
}

// NewSource 依設定建立目錄來源
func NewSource(cfg config.CatalogConfig) (Source, error) {
	switch cfg.Source {
	case config.CatalogEmbedded, "":
		return NewEmbeddedSource(), nil
	case config.CatalogFile:
		return NewFileSource(cfg.Path), nil
	case config.CatalogHTTP:
		return NewHTTPSource(cfg), nil
	case config.CatalogPostgres:
		return NewPostgresSource(cfg)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// Load 從來源載入並驗證目錄，失敗時不回傳部分結果
func Load(ctx context.Context, src Source) (*recipe.Catalog, error) {
	c, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", src.Name(), err)
	}

	common.LogInfo("Catalog loaded",
		zap.String("source", src.Name()),
		zap.Int("recipes", c.Len()),
		zap.String("version", c.Version()),
	)
	return c, nil
}

// FormatFromPath 依副檔名判斷格式
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode 解析食譜陣列並建立目錄
func Decode(data []byte, format Format) (*recipe.Catalog, error) {
	var recipes []recipe.Recipe

	switch format {
	case FormatJSON:
		if err := decodeJSON(data, &recipes); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &recipes); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return recipe.NewCatalog(recipes)
}

// decodeJSON 解析單一 JSON 值，其後不得再有其他資料
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return errors.New("unexpected data after catalog")
	}
	return nil
}
