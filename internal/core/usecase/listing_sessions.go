package usecase

import (
	"context"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"listing-web/internal/core/port/usecases_port"
	"sync"
	"time"
)

// ListingSessions хранит координаторы загрузки по id сессии посетителя.
// Сессии, к которым не обращались дольше ttl, удаляются фоновой чисткой.
type ListingSessions struct {
	api     port.PropertyAPIPort
	events  port.SearchEventsPort
	metrics port.MetricsPort
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*FetchCoordinator
}

func NewListingSessions(api port.PropertyAPIPort, events port.SearchEventsPort, metrics port.MetricsPort, ttl time.Duration) *ListingSessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ListingSessions{
		api:      api,
		events:   events,
		metrics:  metrics,
		ttl:      ttl,
		sessions: make(map[string]*FetchCoordinator),
	}
}

// Get возвращает координатор сессии, создавая его при первом обращении
func (s *ListingSessions) Get(sessionID string) usecases_port.ListingCoordinator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.sessions[sessionID]; ok {
		return c
	}
	c := NewFetchCoordinator(sessionID, s.api, s.events, s.metrics)
	s.sessions[sessionID] = c
	return c
}

func (s *ListingSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict удаляет сессии, простаивающие дольше ttl на момент now
func (s *ListingSessions) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, c := range s.sessions {
		if now.Sub(c.idleSince()) > s.ttl {
			c.Close()
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor периодически чистит сессии до отмены ctx
func (s *ListingSessions) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "ListingSessionsJanitor"})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Session janitor stopped", nil)
			return
		case now := <-ticker.C:
			if n := s.Evict(now); n > 0 {
				logger.Debug("Expired listing sessions removed", port.Fields{"evicted": n, "active": s.Len()})
			}
		}
	}
}
