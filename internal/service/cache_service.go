package service

import (
	"sync"
	"time"
)

// CacheService — in-memory кэш с TTL для горячих точек и таблицы лидеров.
type CacheService struct {
	mu       sync.RWMutex
	cache    map[string]*cacheEntry
	done     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// NewCacheService создаёт новый кэш и запускает фоновую очистку.
// Остановить очистку при завершении сервера должен вызов Stop.
func NewCacheService() *CacheService {
	cs := &CacheService{
		cache: make(map[string]*cacheEntry),
		done:  make(chan struct{}),
	}

	go cs.cleanup()

	return cs
}

// Stop останавливает горутину фоновой очистки. Повторные вызовы безопасны.
func (cs *CacheService) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.done)
	})
}

// Get возвращает значение из кэша.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, exists := cs.cache[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		// Не удаляем под RLock, этим займётся cleanup.
		return nil, false
	}

	return entry.data, true
}

// Set сохраняет значение с TTL.
func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete удаляет ключ.
func (cs *CacheService) Delete(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
}

// cleanup периодически удаляет просроченные записи.
func (cs *CacheService) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-cs.done:
			return
		case <-ticker.C:
			now := time.Now()
			cs.mu.Lock()
			for key, entry := range cs.cache {
				if now.After(entry.expiresAt) {
					delete(cs.cache, key)
				}
			}
			cs.mu.Unlock()
		}
	}
}
