package session

import (
	"context"
	"fmt"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"
)

// Store 瀏覽工作階段的選擇狀態儲存
//
// Load 找不到或已過期時回傳 common.ErrSessionNotFound，
// 回傳的 Selection 是複本，修改後需 Save 才會生效。
type Store interface {
	Load(ctx context.Context, id string) (*recipe.Selection, error)
	Save(ctx context.Context, id string, sel *recipe.Selection) error
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// NewStore 依設定建立工作階段儲存
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case config.SessionMemory, "":
		return NewMemoryStore(cfg), nil
	case config.SessionRedis:
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
