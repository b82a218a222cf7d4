package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

// AdminStore enforces unique usernames and emails under its lock, the same
// guarantee the postgres unique constraints give.
type AdminStore struct {
	mu     sync.RWMutex
	lastID int64
	admins map[int64]models.Admin
}

func NewAdminStore() *AdminStore {
	return &AdminStore{admins: make(map[int64]models.Admin)}
}

func (s *AdminStore) Insert(_ context.Context, admin *models.Admin) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(admin.Username, admin.Email) {
		return nil, storage.ErrConflict
	}
	s.lastID++
	stored := copyAdmin(*admin)
	stored.ID = s.lastID
	s.admins[stored.ID] = *stored
	return copyAdmin(*stored), nil
}

func (s *AdminStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists(username, email), nil
}

func (s *AdminStore) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if admin.Username == username {
			return copyAdmin(admin), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *AdminStore) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyAdmin(admin), nil
}

func (s *AdminStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	admin, ok := s.admins[id]
	if !ok {
		return storage.ErrNotFound
	}
	admin.LastLogin = &at
	s.admins[id] = admin
	return nil
}

// Delete removes an account. Nothing in the HTTP surface calls it, but the
// token flow has to cope with an admin vanishing after login.
func (s *AdminStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.admins, id)
	return nil
}

func (s *AdminStore) exists(username, email string) bool {
	for _, admin := range s.admins {
		if admin.Username == username || admin.Email == email {
			return true
		}
	}
	return false
}

func copyAdmin(a models.Admin) *models.Admin {
	a.PasswordHash = slices.Clone(a.PasswordHash)
	if a.LastLogin != nil {
		lastLogin := *a.LastLogin
		a.LastLogin = &lastLogin
	}
	return &a
}
