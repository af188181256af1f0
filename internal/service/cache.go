// cache.go — кэш списка сессий с TTL и ручной инвалидацией.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "va_session_cache_hits_total",
		Help: "Общее количество попаданий в кэш списка сессий.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "va_session_cache_misses_total",
		Help: "Общее количество промахов кэша списка сессий.",
	})
	cacheInvalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "va_session_cache_invalidations_total",
		Help: "Общее количество инвалидаций кэша списка сессий.",
	})
)

// sessionListKey — единственный ключ кэша.
const sessionListKey = "sessions"

// SessionListCache — кэш списка идентификаторов сессий.
// Запись устаревает через staleAfter или при вызове Invalidate.
// Корректность фильтрации и сортировки от кэша не зависит.
type SessionListCache struct {
	cache *expirable.LRU[string, []string]
}

// NewSessionListCache создаёт кэш с временем жизни staleAfter.
func NewSessionListCache(staleAfter time.Duration) *SessionListCache {
	return &SessionListCache{
		cache: expirable.NewLRU[string, []string](1, nil, staleAfter),
	}
}

// Get возвращает копию закэшированного списка.
// Обновляет Prometheus-метрики hit/miss.
func (c *SessionListCache) Get() ([]string, bool) {
	ids, ok := c.cache.Get(sessionListKey)
	if ok {
		cacheHitsTotal.Inc()
		return slices.Clone(ids), true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set сохраняет копию списка.
func (c *SessionListCache) Set(ids []string) {
	c.cache.Add(sessionListKey, slices.Clone(ids))
}

// Invalidate сбрасывает кэш.
func (c *SessionListCache) Invalidate() {
	cacheInvalidationsTotal.Inc()
	c.cache.Remove(sessionListKey)
}
