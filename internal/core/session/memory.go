package session

import (
	"context"
	"sync"
	"time"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"
	"recipe-browser/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 以行程內記憶體保存工作階段，讀取時延長存活時間
type MemoryStore struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]*memoryEntry
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

type memoryEntry struct {
	sel       *recipe.Selection
	expiresAt time.Time
}

// NewMemoryStore 創建記憶體工作階段儲存並啟動過期清理
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	s := &MemoryStore{
		ttl:     cfg.TTL,
		entries: make(map[string]*memoryEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	if cfg.CleanupInterval > 0 {
		go s.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("Session store initialized",
		zap.String("backend", config.SessionMemory),
		zap.Duration("ttl", cfg.TTL),
	)
	return s
}

// Load 讀取工作階段
func (s *MemoryStore) Load(ctx context.Context, id string) (*recipe.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	now := s.now()
	if now.After(entry.expiresAt) {
		delete(s.entries, id)
		return nil, common.ErrSessionNotFound
	}

	entry.expiresAt = now.Add(s.ttl)
	return entry.sel.Clone(), nil
}

// Save 寫入工作階段
func (s *MemoryStore) Save(ctx context.Context, id string, sel *recipe.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = &memoryEntry{
		sel:       sel.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete 刪除工作階段，不存在時不視為錯誤
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Len 目前保存的工作階段數
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries), nil
}

func (s *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

// cleanup 移除過期的工作階段
func (s *MemoryStore) cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
			count++
		}
	}

	if count > 0 {
		common.LogDebug("Expired sessions removed",
			zap.Int("count", count),
			zap.Int("remaining", len(s.entries)),
		)
	}
	return count
}

// Close 停止清理協程並清空資料
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*memoryEntry)
	return nil
}
