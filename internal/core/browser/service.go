package browser

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"recipe-browser/internal/core/cache"
	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/core/session"
	"recipe-browser/internal/pkg/common"

	"go.uber.org/zap"
)

const lockStripes = 64

// Service 食譜瀏覽控制器：持有目錄、結果快取與工作階段儲存，
// 每個使用者操作都經由 Dispatch 套用到對應的 Selection 並重新計算結果。
type Service struct {
	catalog *recipe.Catalog
	store   session.Store
	results *cache.Manager[*recipe.Visible]
	locks   [lockStripes]sync.Mutex
}

// NewService 創建瀏覽服務，results 可為 nil（不快取）
func NewService(c *recipe.Catalog, store session.Store, results *cache.Manager[*recipe.Visible]) *Service {
	return &Service{
		catalog: c,
		store:   store,
		results: results,
	}
}

// Catalog 目前載入的食譜目錄
func (s *Service) Catalog() *recipe.Catalog {
	return s.catalog
}

// Evaluate 計算 sel 的結果；可見食譜與篩選值走快取，標籤依當下狀態即時產生
func (s *Service) Evaluate(ctx context.Context, sel *recipe.Selection) *recipe.Result {
	key := s.catalog.Version() + ":" + sel.ResultKey()
	visible, _ := s.results.GetOrCompute(ctx, key, func() (*recipe.Visible, error) {
		return recipe.Narrow(s.catalog, sel), nil
	})
	return visible.WithSelection(sel)
}

// Open 建立新的空白工作階段
func (s *Service) Open(ctx context.Context) (string, *recipe.Result, error) {
	id := common.GenerateUUID()
	sel := recipe.NewSelection()

	if err := s.store.Save(ctx, id, sel); err != nil {
		return "", nil, fmt.Errorf("failed to open session: %w", err)
	}

	common.LogDebug("Session opened", zap.String("session_id", id))
	return id, s.Evaluate(ctx, sel), nil
}

// View 讀取工作階段目前的結果
func (s *Service) View(ctx context.Context, id string) (*recipe.Result, error) {
	sel, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, sel), nil
}

// Ensure 讀取工作階段，不存在或已過期時改開新的
func (s *Service) Ensure(ctx context.Context, id string) (string, *recipe.Result, error) {
	if id != "" {
		result, err := s.View(ctx, id)
		if err == nil {
			return id, result, nil
		}
		if !errors.Is(err, common.ErrSessionNotFound) {
			return "", nil, err
		}
	}
	return s.Open(ctx)
}

// Dispatch 套用一個使用者操作並回傳新的結果；同一工作階段的操作依序執行
func (s *Service) Dispatch(ctx context.Context, id string, cmd recipe.Command) (*recipe.Result, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sel, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := cmd.Apply(sel); err != nil {
		return nil, commandError(err)
	}

	if err := s.store.Save(ctx, id, sel); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	result := s.Evaluate(ctx, sel)
	common.LogDebug("Command applied",
		zap.String("session_id", id),
		zap.String("command", cmd.Name()),
		zap.Int("visible", len(result.Recipes)),
	)
	return result, nil
}

// Close 結束工作階段
func (s *Service) Close(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// Sessions 目前存活的工作階段數
func (s *Service) Sessions(ctx context.Context) (int, error) {
	return s.store.Len(ctx)
}

// CacheStats 結果快取統計
func (s *Service) CacheStats() cache.Stats {
	return s.results.GetStats()
}

func (s *Service) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

// commandError 將核心錯誤轉為 API 錯誤
func commandError(err error) error {
	switch {
	case errors.Is(err, recipe.ErrUnknownKind):
		return common.ErrUnknownFacet.Wrap(err)
	case errors.Is(err, recipe.ErrEmptyFacetValue):
		return common.ErrEmptyFacetValue.Wrap(err)
	default:
		return err
	}
}
