package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipe-browser/internal/core/cache"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	thumbs := cache.NewManager[[]byte]("thumbnails", config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(func() { _ = thumbs.Close() })

	s := NewService(config.ImageConfig{
		AssetsDir:    dir,
		MaxWidth:     200,
		DefaultWidth: 100,
		MaxSizeBytes: 1 << 20,
	}, thumbs)
	return s, dir
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestThumbnailResizes(t *testing.T) {
	s, dir := newTestService(t)
	writePNG(t, dir, "Recette01.png", 400, 200)
	ctx := context.Background()

	data, err := s.Thumbnail(ctx, "Recette01.png", 0)
	require.NoError(t, err)
	img := decodeJPEG(t, data)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	data, err = s.Thumbnail(ctx, "Recette01.png", 5000)
	require.NoError(t, err)
	assert.Equal(t, 200, decodeJPEG(t, data).Bounds().Dx())
}

func TestThumbnailNeverUpscales(t *testing.T) {
	s, dir := newTestService(t)
	writePNG(t, dir, "small.png", 40, 30)

	data, err := s.Thumbnail(context.Background(), "small.png", 150)
	require.NoError(t, err)
	assert.Equal(t, 40, decodeJPEG(t, data).Bounds().Dx())
}

func TestThumbnailIsCached(t *testing.T) {
	s, dir := newTestService(t)
	writePNG(t, dir, "r.png", 300, 300)
	ctx := context.Background()

	first, err := s.Thumbnail(ctx, "r.png", 120)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "r.png")))

	second, err := s.Thumbnail(ctx, "r.png", 120)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, s.cache.GetStats().Hits)
}

func TestThumbnailErrors(t *testing.T) {
	s, dir := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("pas une image"), 0o644))
	ctx := context.Background()

	tests := []struct {
		name  string
		image string
		width int
		want  error
	}{
		{"traversal", "../secret.png", 0, common.ErrInvalidImageName},
		{"nested path", "sub/r.png", 0, common.ErrInvalidImageName},
		{"hidden file", ".env", 0, common.ErrInvalidImageName},
		{"empty name", "", 0, common.ErrInvalidImageName},
		{"missing", "absent.jpg", 0, common.ErrImageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Thumbnail(ctx, tt.image, tt.width)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := s.Thumbnail(ctx, "notes.txt", 0)
	assert.ErrorContains(t, err, "failed to decode image")

	_, err = s.Thumbnail(ctx, "notes.txt", -1)
	var ce *common.CustomError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, common.ErrInvalidImageSize.Code, ce.Code)
}
