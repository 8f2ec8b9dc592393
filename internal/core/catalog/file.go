package catalog

import (
	"context"
	"fmt"
	"os"

	"recipe-browser/internal/core/recipe"
)

// FileSource 從本機 JSON 或 YAML 檔案載入目錄
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Load(ctx context.Context) (*recipe.Catalog, error) {
	format, err := FormatFromPath(s.Path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	return Decode(data, format)
}
