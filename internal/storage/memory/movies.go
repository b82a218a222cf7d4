// Package memory keeps movies and admins in process memory. It backs the
// "memory" storage driver and matches the semantics of the postgres models.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type MovieStore struct {
	mu     sync.RWMutex
	lastID int64
	movies map[int64]models.Movie
}

func NewMovieStore() *MovieStore {
	return &MovieStore{movies: make(map[int64]models.Movie)}
}

func (s *MovieStore) Get(_ context.Context, id int64) (*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movie, ok := s.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyMovie(movie), nil
}

func (s *MovieStore) Insert(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	stored := *copyMovie(*movie)
	stored.ID = s.lastID
	s.movies[stored.ID] = stored
	return copyMovie(stored), nil
}

func (s *MovieStore) List(_ context.Context, filter filters.MovieFilter, pagination filters.Pagination) ([]models.Movie, error) {
	s.mu.RLock()
	matched := s.match(filter)
	s.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return window(matched, pagination.Offset(), pagination.Limit), nil
}

func (s *MovieStore) Count(_ context.Context, filter filters.MovieFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.match(filter)), nil
}

func (s *MovieStore) Latest(_ context.Context, limit int) ([]models.Movie, error) {
	s.mu.RLock()
	all := s.match(filters.MovieFilter{})
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return window(all, 0, limit), nil
}

func (s *MovieStore) Update(_ context.Context, movie *models.Movie) (*models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.movies[movie.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	updated := *copyMovie(*movie)
	updated.CreatedAt = existing.CreatedAt
	s.movies[updated.ID] = updated
	return copyMovie(updated), nil
}

func (s *MovieStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.movies, id)
	return nil
}

// match must be called with s.mu held.
func (s *MovieStore) match(filter filters.MovieFilter) []models.Movie {
	query := strings.ToLower(filter.Query)
	matched := make([]models.Movie, 0, len(s.movies))
	for _, movie := range s.movies {
		if query != "" && !containsFold(movie, query) {
			continue
		}
		if len(filter.Genres) > 0 && !overlaps(movie.Genres, filter.Genres) {
			continue
		}
		if filter.Status != "" && movie.Status != filter.Status {
			continue
		}
		if filter.Featured != nil && movie.Featured != *filter.Featured {
			continue
		}
		if filter.Pinned != nil && movie.Pinned != *filter.Pinned {
			continue
		}
		matched = append(matched, *copyMovie(movie))
	}
	return matched
}

func containsFold(movie models.Movie, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(movie.Title), lowerQuery) {
		return true
	}
	for _, genre := range movie.Genres {
		if strings.Contains(strings.ToLower(genre), lowerQuery) {
			return true
		}
	}
	return false
}

func overlaps(genres, wanted []string) bool {
	for _, genre := range genres {
		if slices.Contains(wanted, genre) {
			return true
		}
	}
	return false
}

func window(movies []models.Movie, offset, limit int) []models.Movie {
	if offset >= len(movies) {
		return []models.Movie{}
	}
	end := min(offset+limit, len(movies))
	return movies[offset:end]
}

func copyMovie(m models.Movie) *models.Movie {
	if m.Genres == nil {
		m.Genres = []string{}
	} else {
		m.Genres = slices.Clone(m.Genres)
	}
	return &m
}
