package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/storage/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieCacheKey(t *testing.T) {
	page1 := listKeyParts{filters.MovieFilter{Query: "x"}, filters.NewPagination(1, 24)}
	page2 := listKeyParts{filters.MovieFilter{Query: "x"}, filters.NewPagination(2, 24)}

	assert.Equal(t, movieCacheKey(3, "list", page1), movieCacheKey(3, "list", page1))
	assert.NotEqual(t, movieCacheKey(3, "list", page1), movieCacheKey(3, "list", page2))
	assert.NotEqual(t, movieCacheKey(3, "list", page1), movieCacheKey(4, "list", page1))
	assert.NotEqual(t, movieCacheKey(3, "list", page1), movieCacheKey(3, "count", page1))
	assert.Regexp(t, `^movies:3:list:[0-9a-f]{40}$`, movieCacheKey(3, "list", page1))
}

// countingStore counts the reads that reach the underlying store.
type countingStore struct {
	*memory.MovieStore
	lists  atomic.Int32
	counts atomic.Int32
}

func (s *countingStore) List(ctx context.Context, filter filters.MovieFilter, pagination filters.Pagination) ([]models.Movie, error) {
	s.lists.Add(1)
	return s.MovieStore.List(ctx, filter, pagination)
}

func (s *countingStore) Count(ctx context.Context, filter filters.MovieFilter) (int, error) {
	s.counts.Add(1)
	return s.MovieStore.Count(ctx, filter)
}

func newTestCache(t *testing.T) (*CachedMovies, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	store := &countingStore{MovieStore: memory.NewMovieStore()}
	return NewCachedMovies(logger.Discard(), store, rdb, time.Minute), store, mr
}

func insertMovie(t *testing.T, c *CachedMovies, title string) *models.Movie {
	t.Helper()
	movie, err := c.Insert(context.Background(), &models.Movie{
		Title:     title,
		Status:    models.MovieStatusActive,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return movie
}

func titles(movies []models.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestReadThroughMissThenHit(t *testing.T) {
	c, store, _ := newTestCache(t)
	ctx := context.Background()
	insertMovie(t, c, "Alien")
	page := filters.NewPagination(1, 24)

	first, err := c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	second, err := c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien"}, titles(first))
	assert.Equal(t, titles(first), titles(second))
	assert.Equal(t, int32(1), store.lists.Load())

	for i := 0; i < 2; i++ {
		count, err := c.Count(ctx, filters.MovieFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}
	assert.Equal(t, int32(1), store.counts.Load())
}

func TestWritesInvalidateCachedReads(t *testing.T) {
	c, store, _ := newTestCache(t)
	ctx := context.Background()
	page := filters.NewPagination(1, 24)
	alien := insertMovie(t, c, "Alien")

	_, err := c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)

	insertMovie(t, c, "Heat")
	movies, err := c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alien", "Heat"}, titles(movies))

	alien.Title = "Aliens"
	_, err = c.Update(ctx, alien)
	require.NoError(t, err)
	movies, err = c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Aliens", "Heat"}, titles(movies))

	require.NoError(t, c.Delete(ctx, alien.ID))
	movies, err = c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(movies))
	assert.Equal(t, int32(4), store.lists.Load())
}

func TestRedisDownFallsThroughToStore(t *testing.T) {
	c, store, mr := newTestCache(t)
	ctx := context.Background()
	insertMovie(t, c, "Alien")
	mr.Close()

	for i := 0; i < 6; i++ {
		movies, err := c.List(ctx, filters.MovieFilter{}, filters.NewPagination(1, 24))
		require.NoError(t, err)
		assert.Equal(t, []string{"Alien"}, titles(movies))
	}
	assert.Equal(t, int32(6), store.lists.Load())
	assert.Equal(t, gobreaker.StateOpen, c.cb.State())

	movies, err := c.Latest(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien"}, titles(movies))
}

func TestFailedInvalidationIsRetried(t *testing.T) {
	c, _, mr := newTestCache(t)
	ctx := context.Background()
	page := filters.NewPagination(1, 24)
	insertMovie(t, c, "Alien")
	_, err := c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)

	mr.Close()
	insertMovie(t, c, "Heat")
	assert.True(t, c.pendingInvalidation.Load())
	require.NoError(t, mr.Restart())

	movies, err := c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alien", "Heat"}, titles(movies))

	// the stale page of the old generation is never served again
	movies, err = c.List(ctx, filters.MovieFilter{}, page)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alien", "Heat"}, titles(movies))
}
