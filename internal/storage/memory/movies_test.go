package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMovieStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		_, err := store.Insert(ctx, &models.Movie{
			Title:     fmt.Sprintf("movie %d", i),
			Pinned:    i%3 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	movies, err := store.List(ctx, filters.MovieFilter{}, filters.NewPagination(1, 10))
	require.NoError(t, err)
	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"movie 3", "movie 0", "movie 5", "movie 4", "movie 2", "movie 1"}, titles)
}

func TestMovieStoreListWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMovieStore()
	for i := 0; i < 5; i++ {
		_, err := store.Insert(ctx, &models.Movie{Title: "m", CreatedAt: time.Now()})
		require.NoError(t, err)
	}
	page, err := store.List(ctx, filters.MovieFilter{}, filters.NewPagination(2, 3))
	require.NoError(t, err)
	assert.Len(t, page, 2)
	page, err = store.List(ctx, filters.MovieFilter{}, filters.NewPagination(3, 3))
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMovieStoreFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMovieStore()
	seed := []models.Movie{
		{Title: "Fighter", Genres: []string{"Action"}, Status: "active", Featured: true},
		{Title: "Calm waters", Genres: []string{"Street Fighter Saga"}, Status: "active"},
		{Title: "Romance", Genres: []string{"Drama", "Romance"}, Status: "hidden", Pinned: true},
	}
	for i := range seed {
		_, err := store.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}
	testCases := []struct {
		name     string
		filter   filters.MovieFilter
		expected int
	}{
		{"all", filters.MovieFilter{}, 3},
		{"query title or genre", filters.MovieFilter{Query: "fIgHtEr"}, 2},
		{"query no match", filters.MovieFilter{Query: "zzz"}, 0},
		{"genres any", filters.MovieFilter{Genres: []string{"Drama", "Action"}}, 2},
		{"genres exact label", filters.MovieFilter{Genres: []string{"drama"}}, 0},
		{"status", filters.MovieFilter{Status: "active"}, 2},
		{"featured", filters.MovieFilter{Featured: filters.Bool(true)}, 1},
		{"pinned", filters.MovieFilter{Pinned: filters.Bool(true)}, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			count, err := store.Count(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, count)
		})
	}
}

func TestMovieStoreUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMovieStore()
	movie, err := store.Insert(ctx, &models.Movie{Title: "old"})
	require.NoError(t, err)

	movie.Title = "new"
	updated, err := store.Update(ctx, movie)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)

	_, err = store.Update(ctx, &models.Movie{ID: 999})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Delete(ctx, movie.ID))
	assert.ErrorIs(t, store.Delete(ctx, movie.ID), storage.ErrNotFound)
	_, err = store.Get(ctx, movie.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdminStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore()
	_, err := store.Insert(ctx, &models.Admin{Username: "root", Email: "root@example.com"})
	require.NoError(t, err)

	_, err = store.Insert(ctx, &models.Admin{Username: "root", Email: "other@example.com"})
	assert.ErrorIs(t, err, storage.ErrConflict)
	_, err = store.Insert(ctx, &models.Admin{Username: "other", Email: "root@example.com"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}
