package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"recipe-browser/internal/core/cache"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 食譜卡片縮圖服務
type Service struct {
	assetsDir    string
	maxSizeBytes int64
	maxWidth     int
	defaultWidth int
	cache        *cache.Manager[[]byte]
}

// NewService 創建新的圖片處理服務，thumbs 可為 nil（不快取）
func NewService(cfg config.ImageConfig, thumbs *cache.Manager[[]byte]) *Service {
	return &Service{
		assetsDir:    cfg.AssetsDir,
		maxSizeBytes: cfg.MaxSizeBytes,
		maxWidth:     cfg.MaxWidth,
		defaultWidth: cfg.DefaultWidth,
		cache:        thumbs,
	}
}

// Thumbnail 產生指定寬度的 JPEG 縮圖；width 為 0 時使用預設寬度，
// 超過上限時取上限，原圖較窄時不放大。
func (s *Service) Thumbnail(ctx context.Context, name string, width int) ([]byte, error) {
	if !validName(name) {
		return nil, common.ErrInvalidImageName
	}

	switch {
	case width == 0:
		width = s.defaultWidth
	case width < 0:
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("negative width %d", width))
	case width > s.maxWidth:
		width = s.maxWidth
	}

	key := name + ":" + strconv.Itoa(width)
	return s.cache.GetOrCompute(ctx, key, func() ([]byte, error) {
		return s.render(name, width)
	})
}

func (s *Service) render(name string, width int) ([]byte, error) {
	path := filepath.Join(s.assetsDir, name)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	// 檢查文件大小
	if s.maxSizeBytes > 0 && info.Size() > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	// 解碼圖片
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	if img.Bounds().Dx() > width {
		img = resize.Resize(uint(width), 0, img, resize.Lanczos3)
	}

	// 將圖片轉換為 JPEG 格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	common.LogDebug("Thumbnail rendered",
		zap.String("image", name),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// validName 只接受資產目錄下的單一檔名
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
