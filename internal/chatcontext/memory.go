package chatcontext

import (
	"context"
	"sync"
	"time"
)

type userLog struct {
	mu         sync.Mutex
	turns      []string
	lastActive time.Time
	evicted    bool
}

// MemoryStore — история в памяти процесса.
// Карта защищена RWMutex, каждая история — своим мьютексом.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*userLog
	window int
	now    func() time.Time
}

func NewMemoryStore(window int) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryStore{
		users:  make(map[string]*userLog),
		window: window,
		now:    time.Now,
	}
}

func (s *MemoryStore) Window() int {
	return s.window
}

func (s *MemoryStore) get(userID string) *userLog {
	s.mu.RLock()
	ul, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return ul
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ul, ok = s.users[userID]; ok {
		return ul
	}
	ul = &userLog{}
	s.users[userID] = ul
	return ul
}

func (s *MemoryStore) Append(_ context.Context, userID, entry string) error {
	ul := s.get(userID)
	ul.mu.Lock()
	// janitor мог удалить историю между get и Lock
	for ul.evicted {
		ul.mu.Unlock()
		ul = s.get(userID)
		ul.mu.Lock()
	}
	defer ul.mu.Unlock()

	ul.turns = append(ul.turns, entry)
	if over := len(ul.turns) - s.window; over > 0 {
		// копируем, чтобы не держать хвост старого массива
		trimmed := make([]string, s.window)
		copy(trimmed, ul.turns[over:])
		ul.turns = trimmed
	}
	ul.lastActive = s.now()
	return nil
}

func (s *MemoryStore) Read(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	ul, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return []string{}, nil
	}

	ul.mu.Lock()
	defer ul.mu.Unlock()

	// лог мог уйти в EvictIdle между поиском и локом
	if ul.evicted {
		return []string{}, nil
	}

	out := make([]string, len(ul.turns))
	copy(out, ul.turns)
	return out, nil
}

func (s *MemoryStore) EvictIdle(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ul := range s.users {
		ul.mu.Lock()
		if ul.lastActive.Before(before) {
			ul.evicted = true
			delete(s.users, id)
			removed++
		}
		ul.mu.Unlock()
	}
	return removed, nil
}

// Len — количество пользователей с историей
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Window: s.window,
		Users:  make(map[string]UserRecord, len(s.users)),
	}
	for id, ul := range s.users {
		ul.mu.Lock()
		turns := make([]string, len(ul.turns))
		copy(turns, ul.turns)
		snap.Users[id] = UserRecord{Turns: turns, LastActive: ul.lastActive}
		ul.mu.Unlock()
	}
	return snap
}

// Restore заменяет содержимое стора снапшотом.
// Если окно снапшота больше текущего, оставляем последние window реплик.
func (s *MemoryStore) Restore(snap Snapshot) {
	users := make(map[string]*userLog, len(snap.Users))
	for id, rec := range snap.Users {
		turns := rec.Turns
		if over := len(turns) - s.window; over > 0 {
			turns = turns[over:]
		}
		cp := make([]string, len(turns))
		copy(cp, turns)
		users[id] = &userLog{turns: cp, lastActive: rec.LastActive}
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
}
