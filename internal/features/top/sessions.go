package top

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/guild-top/internal/common"
)

// DefaultSessionTTL — сколько меню живёт без нажатий.
const DefaultSessionTTL = 3 * time.Minute

type session struct {
	ctrl    *Controller
	expires time.Time
}

// Sessions хранит открытые меню по ID. Меню без нажатий дольше TTL
// считается устаревшим.
type Sessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]*session
}

// NewSessions создаёт хранилище меню. ttl <= 0 заменяется на DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{ttl: ttl, now: time.Now, items: map[string]*session{}}
}

// Open регистрирует меню и возвращает его ID.
func (s *Sessions) Open(ctrl *Controller) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &session{ctrl: ctrl, expires: s.now().Add(s.ttl)}
	return id
}

// Get возвращает меню и продлевает его жизнь.
// Неизвестный или устаревший ID — common.ErrSessionExpired.
func (s *Sessions) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	now := s.now()
	if !ok || !now.Before(sess.expires) {
		delete(s.items, id)
		return nil, common.ErrSessionExpired
	}
	sess.expires = now.Add(s.ttl)
	return sess.ctrl, nil
}

// Sweep удаляет устаревшие меню и возвращает, сколько удалено.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.items {
		if !now.Before(sess.expires) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Len — сколько меню открыто.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TTL — время жизни меню без нажатий.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
